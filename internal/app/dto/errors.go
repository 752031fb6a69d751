package dto

import "errors"

// Engine-boundary errors
var (
	ErrSessionBusy      = errors.New("session is already being resumed")
	ErrNotSuspended     = errors.New("session is not suspended")
	ErrHandoffActive    = errors.New("session is handed off to a human agent")
	ErrUnexpectedEvent  = errors.New("event does not match the session's suspend reason")
	ErrFlowDeactivated  = errors.New("flow is deactivated")
	ErrMaxStepsExceeded = errors.New("exceeded max steps")
	ErrNoInterpreter    = errors.New("no interpreter registered for node type")
	ErrFlowInvalid      = errors.New("flow failed validation")
)
