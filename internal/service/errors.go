package service

import "errors"

var (
	ErrEmptyUsername      = errors.New("username is required")
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAlreadyPassed      = errors.New("exam already passed")
	ErrNoCertificate      = errors.New("no passing result")
	// ErrStoreUnavailable wraps every record store failure so that a failed
	// fetch is never mistaken for an empty collection.
	ErrStoreUnavailable = errors.New("record store unavailable")
)
