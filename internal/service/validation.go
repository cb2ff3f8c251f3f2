package service

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/dealership/internal/domain"
)

const (
	minPasswordLength = 6
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
	maxNameLength    = 120
)

func validateEmail(email string) (string, error) {
	normalized := domain.NormalizeEmail(email)
	if normalized == "" {
		return "", invalid("email", "required")
	}
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		return "", invalid("email", "must be a valid address")
	}
	return normalized, nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return invalid("password", "must be at least 6 characters")
	}
	if len(password) > maxPasswordBytes {
		return invalid("password", "must be at most 72 bytes")
	}
	return nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", invalid("name", "too long")
	}
	return name, nil
}
