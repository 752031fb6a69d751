package dto

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/chatflow/chatflow/internal/core/session"
)

var validate = validator.New()

// EventType enumerates the inbound events that resume a suspended
// session. Each event is one engine invocation.
type EventType string

const (
	// EventMessage is a new inbound message from the contact.
	EventMessage EventType = "message"
	// EventTimer fires when a delay suspension elapses.
	EventTimer EventType = "timer"
)

// StartRequest asks the engine to begin a flow run for a contact.
type StartRequest struct {
	FlowID    string         `json:"flow_id" validate:"required"`
	ContactID string         `json:"contact_id" validate:"required"`
	Vars      map[string]any `json:"vars,omitempty"`
}

// Validate checks the request with the shared struct validator.
func (r *StartRequest) Validate() error {
	return validate.Struct(r)
}

// InboundEvent resumes exactly one suspended session.
type InboundEvent struct {
	SessionID string    `json:"session_id" validate:"required"`
	Type      EventType `json:"type" validate:"required,oneof=message timer"`
	// Text is the inbound message body for message events.
	Text string `json:"text,omitempty"`
}

// Validate checks the event with the shared struct validator.
func (e *InboundEvent) Validate() error {
	return validate.Struct(e)
}

// RunResult reports one engine invocation: the ordered side effects
// produced and where the session ended up.
type RunResult struct {
	SessionID string                `json:"session_id"`
	FlowID    string                `json:"flow_id"`
	ContactID string                `json:"contact_id"`
	Status    session.Status        `json:"status"`
	Reason    session.SuspendReason `json:"reason,omitempty"`
	ResumeAt  *time.Time            `json:"resume_at,omitempty"`
	Effects   []Effect              `json:"effects"`
	Steps     int                   `json:"steps"`
	Vars      map[string]any        `json:"vars"`
	StartTime time.Time             `json:"start_time"`
	EndTime   time.Time             `json:"end_time"`
	Error     string                `json:"error,omitempty"`
}
