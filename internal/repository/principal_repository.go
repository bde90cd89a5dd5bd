package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/abac-connect/van-booking/internal/model"
)

// PrincipalRepo reads and writes one principal table.  Administrators and
// students are stored in two disjoint tables; each repo is bound to exactly
// one of them and stamps its role on every principal it returns.  The role
// of a principal is therefore a fact about where it was found.
type PrincipalRepo struct {
	db   *sql.DB
	role model.Role

	qInsert  string
	qByEmail string
	qByID    string
}

// NewAdminRepo returns a repo over the admin table.
func NewAdminRepo(db *sql.DB) *PrincipalRepo { return newPrincipalRepo(db, "admin", model.RoleAdmin) }

// NewStudentRepo returns a repo over the student table.
func NewStudentRepo(db *sql.DB) *PrincipalRepo {
	return newPrincipalRepo(db, "student", model.RoleStudent)
}

func newPrincipalRepo(db *sql.DB, table string, role model.Role) *PrincipalRepo {
	const cols = "id, name, email, password_hash, created_at"
	return &PrincipalRepo{
		db:       db,
		role:     role,
		qInsert:  "INSERT INTO " + table + " (name, email, password_hash) VALUES (?, ?, ?)",
		qByEmail: "SELECT " + cols + " FROM " + table + " WHERE email = ? LIMIT 1",
		qByID:    "SELECT " + cols + " FROM " + table + " WHERE id = ? LIMIT 1",
	}
}

// Role is the role of every principal stored in this repo's table.
func (r *PrincipalRepo) Role() model.Role { return r.role }

// Create inserts a principal and returns the stored row.  The email must
// already be normalized.  A duplicate email yields ErrEmailExists.
func (r *PrincipalRepo) Create(ctx context.Context, name, email, passwordHash string) (model.Principal, error) {
	res, err := r.db.ExecContext(ctx, r.qInsert, name, email, passwordHash)
	if err != nil {
		err = classify(err)
		if errors.Is(err, ErrDuplicate) {
			return model.Principal{}, ErrEmailExists
		}
		return model.Principal{}, fmt.Errorf("insert %s: %w", r.role, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Principal{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches a principal by normalized email.  It returns
// ErrNotFound when the table holds no such email.
func (r *PrincipalRepo) GetByEmail(ctx context.Context, email string) (model.Principal, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, r.qByEmail, email))
}

// GetByID fetches a principal by id.
func (r *PrincipalRepo) GetByID(ctx context.Context, id uint64) (model.Principal, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, r.qByID, id))
}

func (r *PrincipalRepo) scanOne(row *sql.Row) (model.Principal, error) {
	p := model.Principal{Role: r.role}
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.PasswordHash, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Principal{}, ErrNotFound
	}
	if err != nil {
		return model.Principal{}, err
	}
	return p, nil
}
