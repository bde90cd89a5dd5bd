package auth

import (
	"errors"

	"github.com/abac-connect/van-booking/internal/model"
)

var ErrForbidden = errors.New("forbidden")

// Authorize allows s only when its role equals required.
func Authorize(required model.Role, s Session) error {
	if s.Role != required {
		return ErrForbidden
	}
	return nil
}
