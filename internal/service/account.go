package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/abac-connect/van-booking/internal/auth"
	"github.com/abac-connect/van-booking/internal/model"
	"github.com/abac-connect/van-booking/internal/repository"
)

// PrincipalStore is one principal table.
type PrincipalStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (model.Principal, error)
	GetByEmail(ctx context.Context, email string) (model.Principal, error)
}

// Issuer signs session tokens.
type Issuer interface {
	Issue(principalID uint64, role model.Role) (auth.Token, error)
}

// RegisterInput is the registration request.  Role must be exactly "admin"
// or "student".
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// AccountService registers principals and logs them in.
type AccountService struct {
	admins     PrincipalStore
	students   PrincipalStore
	resolver   *auth.Resolver
	issuer     Issuer
	bcryptCost int
	log        *slog.Logger
}

func NewAccountService(admins, students PrincipalStore, issuer Issuer, bcryptCost int, log *slog.Logger) *AccountService {
	return &AccountService{
		admins:     admins,
		students:   students,
		resolver:   auth.NewResolver(admins, students),
		issuer:     issuer,
		bcryptCost: bcryptCost,
		log:        log,
	}
}

// Register creates a principal in the table selected by in.Role.  An email
// already registered in either table is rejected so that login never has
// to choose between two accounts.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (model.Principal, error) {
	role, ok := model.ParseRole(in.Role)
	if !ok {
		return model.Principal{}, invalid("role", "invalid role %q: want admin or student", in.Role)
	}
	name := strings.TrimSpace(in.Name)
	email := model.NormalizeEmail(in.Email)
	switch {
	case name == "":
		return model.Principal{}, invalid("name", "is required")
	case email == "":
		return model.Principal{}, invalid("email", "is required")
	case !strings.Contains(email, "@"):
		return model.Principal{}, invalid("email", "is not an email address")
	case in.Password == "":
		return model.Principal{}, invalid("password", "is required")
	}

	target, other := s.students, s.admins
	if role == model.RoleAdmin {
		target, other = s.admins, s.students
	}
	if _, err := other.GetByEmail(ctx, email); err == nil {
		return model.Principal{}, invalid("email", "is already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.Principal{}, storeErr("check email", err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.Principal{}, invalid("password", "cannot be hashed: %v", err)
	}
	p, err := target.Create(ctx, name, email, hash)
	if errors.Is(err, repository.ErrEmailExists) {
		return model.Principal{}, invalid("email", "is already registered")
	}
	if err != nil {
		return model.Principal{}, storeErr("create "+string(role), err)
	}
	s.log.Info("principal registered", "role", p.Role, "id", p.ID)
	return p, nil
}

// Login resolves the credentials and issues a token carrying the role of
// the table the principal was found in.
func (s *AccountService) Login(ctx context.Context, email, password string) (auth.Token, model.Principal, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return auth.Token{}, model.Principal{}, invalid("", "email and password are required")
	}
	p, err := s.resolver.Resolve(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrPrincipalNotFound) || errors.Is(err, auth.ErrInvalidCredentials) {
			return auth.Token{}, model.Principal{}, err
		}
		return auth.Token{}, model.Principal{}, storeErr("resolve principal", err)
	}
	tok, err := s.issuer.Issue(p.ID, p.Role)
	if err != nil {
		return auth.Token{}, model.Principal{}, err
	}
	return tok, p, nil
}
