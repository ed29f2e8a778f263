package domain

import (
	"context"
	"errors"
)

type Service interface {
	// Authenticate checks credentials of an active staff user.
	Authenticate(ctx context.Context, username, password string) (*StaffUser, error)
	// Create adds a staff user. An existing username yields ErrUsernameTaken.
	Create(ctx context.Context, username, password, role string) (*StaffUser, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidUsername    = errors.New("invalid_username")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrUsernameTaken      = errors.New("username_taken")
)
