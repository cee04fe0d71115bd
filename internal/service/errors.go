package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmailRequired     = errors.New("email is required")
	ErrInvalidRole       = errors.New("invalid role")
	ErrUserNotFound      = errors.New("user not found")
	ErrProfileNotUpdated = errors.New("failed to update profile")
	ErrStorage           = errors.New("storage failure")
)

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
