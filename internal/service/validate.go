package service

import (
	"fmt"
	"regexp"

	"github.com/peoplehub/authservice/internal/transport"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@.+$`)

func validateRegisterRequest(req transport.RegisterRequest) error {
	if req.Username == "" || req.Password == "" || req.Email == "" ||
		req.Name == "" || req.Surname == "" {
		return fmt.Errorf("%w: all required fields must be provided and not empty", ErrValidation)
	}

	if !emailPattern.MatchString(req.Email) {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}

	if !validPassword(req.Password) {
		return fmt.Errorf("%w: password must be at least 8 characters long and include both letters and numbers", ErrValidation)
	}

	return nil
}

// validPassword requires at least 8 characters with one ASCII letter and one
// digit. Unicode letter classes are intentionally not considered.
func validPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
