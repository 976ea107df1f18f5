package service

import "errors"

// Every orchestrator operation either completes or surfaces exactly one of
// these kinds; store and crypto failures are wrapped into the nearest fit
// before crossing the service boundary.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("email or password does not match")
	ErrConflict           = errors.New("email already exists")
	ErrNotFound           = errors.New("not found")
	ErrConfiguration      = errors.New("service misconfigured")
)
