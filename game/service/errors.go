package service

import "errors"

// Errors shared by the session and config managers, so the service and the
// transports can match them without importing the implementations.
var (
	ErrConfigNotFound       = errors.New("configuration not found")
	ErrInvalidConfig        = errors.New("invalid configuration")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
)
