package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/abac-connect/van-booking/internal/model"
	"github.com/abac-connect/van-booking/internal/repository"
)

var (
	ErrPrincipalNotFound  = errors.New("principal not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// PrincipalLookup finds a principal by normalized email in one table and
// returns repository.ErrNotFound when absent.
type PrincipalLookup interface {
	GetByEmail(ctx context.Context, email string) (model.Principal, error)
}

// Resolver maps an email and password to a principal.  The admin table is
// consulted first; the student table only when the email is not an admin.
type Resolver struct {
	admins   PrincipalLookup
	students PrincipalLookup
}

func NewResolver(admins, students PrincipalLookup) *Resolver {
	return &Resolver{admins: admins, students: students}
}

// Resolve returns the principal whose email and password match.  The role
// of the result is that of the table it was found in.
func (r *Resolver) Resolve(ctx context.Context, email, password string) (model.Principal, error) {
	email = model.NormalizeEmail(email)
	p, err := r.find(ctx, email)
	if err != nil {
		return model.Principal{}, err
	}
	if !VerifyPassword(p.PasswordHash, password) {
		return model.Principal{}, ErrInvalidCredentials
	}
	return p, nil
}

func (r *Resolver) find(ctx context.Context, email string) (model.Principal, error) {
	for _, tbl := range []PrincipalLookup{r.admins, r.students} {
		p, err := tbl.GetByEmail(ctx, email)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return model.Principal{}, fmt.Errorf("lookup principal: %w", err)
		}
	}
	return model.Principal{}, ErrPrincipalNotFound
}
