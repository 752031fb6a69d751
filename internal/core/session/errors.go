// Package session defines domain-specific errors
package session

import "errors"

var (
	ErrInvalidSessionID = errors.New("invalid session ID")
	ErrInvalidFlowID    = errors.New("invalid flow ID")
	ErrInvalidContactID = errors.New("invalid contact ID")
	ErrNilVars          = errors.New("session variable store cannot be nil")
	ErrSessionNotFound  = errors.New("session not found")
)
