package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrInvalidAmount     = errors.New("xp amount must be positive")
	ErrSessionActive     = errors.New("a session is already active")
	ErrSessionCompleted  = errors.New("session is already completed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidInput      = errors.New("invalid input")
)
