package session

import "time"

// Status represents the lifecycle state of a flow run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSuspended Status = "suspended"
	StatusCompleted Status = "completed"
	StatusHalted    Status = "halted"
)

// SuspendReason records what a suspended session is waiting on.
type SuspendReason string

const (
	// ReasonReply waits for the contact's next inbound message.
	ReasonReply SuspendReason = "reply"
	// ReasonTimer waits for a scheduled delay to elapse.
	ReasonTimer SuspendReason = "timer"
	// ReasonHandoff waits indefinitely: a human agent owns the
	// conversation and the flow never resumes on its own.
	ReasonHandoff SuspendReason = "handoff"
)

// Session is one contact's run of a flow. Sessions never share
// mutable state with each other.
type Session struct {
	ID            string        `json:"id"`
	FlowID        string        `json:"flow_id"`
	ContactID     string        `json:"contact_id"`
	Status        Status        `json:"status"`
	Reason        SuspendReason `json:"reason,omitempty"`
	CurrentNodeID string        `json:"current_node_id"`
	// PendingVariable names the variable the next inbound message is
	// written into while suspended on a question.
	PendingVariable string     `json:"pending_variable,omitempty"`
	Vars            Vars       `json:"vars"`
	ResumeAt        *time.Time `json:"resume_at,omitempty"`
	Error           string     `json:"error,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Validate ensures session integrity.
func (s *Session) Validate() error {
	if s.ID == "" {
		return ErrInvalidSessionID
	}
	if s.FlowID == "" {
		return ErrInvalidFlowID
	}
	if s.ContactID == "" {
		return ErrInvalidContactID
	}
	if s.Vars == nil {
		return ErrNilVars
	}
	return nil
}

// Clone returns an independent deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	c.Vars = s.Vars.Clone()
	if s.ResumeAt != nil {
		at := *s.ResumeAt
		c.ResumeAt = &at
	}
	return &c
}
