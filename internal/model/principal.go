package model

import (
	"strings"
	"time"
)

// Role is the privilege class attached to a principal.  It is decided by
// which table produced the principal, never by any field of the record.
type Role string

const (
	RoleAdmin   Role = "admin"   // rows of the admin table
	RoleStudent Role = "student" // rows of the student table
)

// ParseRole maps the registration discriminator onto a Role.  Only the
// exact values "admin" and "student" are accepted.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.TrimSpace(s)) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleStudent:
		return RoleStudent, true
	}
	return "", false
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return r == RoleAdmin || r == RoleStudent }

// Principal is an authenticated actor.  Administrators and students live in
// two disjoint tables; Role is the variant tag and is set by the repository
// bound to that table.
//
// Fields:
//
//	ID           – primary key within the principal's own table.
//	Name         – display name.
//	Email        – unique within the variant's table.
//	PasswordHash – bcrypt hash; never serialized.
//	Role         – variant tag (admin | student).
//	CreatedAt    – creation timestamp.
type Principal struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"-"`
}

// IsAdmin reports whether the principal came from the admin table.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// NormalizeEmail trims and lower-cases an email address so that lookups and
// registrations agree on the stored form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
