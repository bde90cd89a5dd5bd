// Package auth resolves credentials to principals, issues and verifies
// session tokens, and gates operations by role.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/abac-connect/van-booking/internal/model"
)

// SessionTTL is the fixed lifetime of a session token.
const SessionTTL = time.Hour

var (
	ErrMissingToken   = errors.New("missing token")
	ErrMalformedToken = errors.New("malformed token")
	ErrExpiredToken   = errors.New("token expired")
	ErrEmptySecret    = errors.New("session secret is empty")
)

// Token is a signed session token and the instant it stops being accepted.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Session is the verified content of a token.
type Session struct {
	ID          string
	PrincipalID uint64
	Role        model.Role
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SessionManager signs and verifies HS256 session tokens with a secret fixed
// at construction.  It holds no per-session state.
type SessionManager struct {
	secret []byte
	now    func() time.Time
}

// NewSessionManager returns a manager keyed by secret.  An empty secret is
// rejected.
func NewSessionManager(secret string) (*SessionManager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &SessionManager{secret: []byte(secret), now: time.Now}, nil
}

// WithClock replaces the time source.  It is used by tests.
func (m *SessionManager) WithClock(now func() time.Time) *SessionManager {
	m.now = now
	return m
}

// Issue signs a token for the principal.  The token expires SessionTTL after
// issuance.
func (m *SessionManager) Issue(principalID uint64, role model.Role) (Token, error) {
	if !role.Valid() {
		return Token{}, fmt.Errorf("issue token: unknown role %q", role)
	}
	iat := m.now().UTC().Truncate(time.Second)
	exp := iat.Add(SessionTTL)
	c := claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(principalID, 10),
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Value: signed, ExpiresAt: exp}, nil
}

// Verify checks the signature and structure of raw and returns its session.
// A token is accepted up to and including its expiry second and rejected
// strictly after it.
func (m *SessionManager) Verify(raw string) (Session, error) {
	if raw == "" {
		return Session{}, ErrMissingToken
	}
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if c.ExpiresAt == nil || c.IssuedAt == nil {
		return Session{}, fmt.Errorf("%w: missing iat or exp", ErrMalformedToken)
	}
	role, ok := model.ParseRole(c.Role)
	if !ok {
		return Session{}, fmt.Errorf("%w: unknown role %q", ErrMalformedToken, c.Role)
	}
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return Session{}, fmt.Errorf("%w: bad subject %q", ErrMalformedToken, c.Subject)
	}
	if m.now().After(c.ExpiresAt.Time) {
		return Session{}, ErrExpiredToken
	}
	return Session{
		ID:          c.ID,
		PrincipalID: id,
		Role:        role,
		IssuedAt:    c.IssuedAt.Time,
		ExpiresAt:   c.ExpiresAt.Time,
	}, nil
}

// BearerToken extracts the token from an Authorization header value.  It
// returns "" when the header is absent or uses another scheme.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
