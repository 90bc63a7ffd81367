package domain

import "errors"

var (
	// ErrInvalidCredential covers both "no such user" and "wrong password".
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrUnauthenticated   = errors.New("could not validate credentials")
	ErrForbidden         = errors.New("access forbidden")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTooManyAttempts   = errors.New("too many login attempts")

	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidRole  = errors.New("invalid role")
	ErrInvalidInput = errors.New("invalid input")

	ErrTaskNotFound = errors.New("task not found")
)
