package client

import "errors"

// Error kinds returned by Client. Every error from a remote call wraps
// exactly one of them, so callers can branch with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("invalid request")
	ErrNetwork      = errors.New("network unavailable")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnknown      = errors.New("remote error")
)
