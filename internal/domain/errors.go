package domain

import "errors"

var (
	// Authentication errors
	ErrUnknownUser       = errors.New("unknown user")
	ErrAccountNotActive  = errors.New("account not active")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrSessionNotFound   = errors.New("session not found")
	ErrStorageFailure    = errors.New("storage failure")

	// User management errors
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already in use")
	ErrEmailTaken    = errors.New("email already in use")
	ErrUnknownRole   = errors.New("unknown role")
	ErrUnknownStatus = errors.New("unknown status")

	// Permission errors
	ErrUnknownResource = errors.New("unknown resource")
	ErrUnknownLevel    = errors.New("unknown permission level")
	ErrUnknownScope    = errors.New("unknown permission scope")
)
