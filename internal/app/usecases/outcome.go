package usecases

import (
	"time"

	"github.com/chatflow/chatflow/internal/app/dto"
	"github.com/chatflow/chatflow/internal/core/session"
)

// Suspension instructs the engine to pause the session until an
// external event arrives.
type Suspension struct {
	Reason session.SuspendReason
	// ResumeAt is set for timer suspensions; the scheduler fires a
	// timer event when it elapses.
	ResumeAt *time.Time
	// Variable names where the next inbound message is written when
	// suspended on a question.
	Variable string
}

// Outcome is what evaluating one node produces: zero or more side
// effects, then either a suspension or a continuation along the edge
// selected by Handle.
type Outcome struct {
	Effects []dto.Effect
	// Handle selects the outgoing edge to follow: empty for the
	// single unlabeled output, "true"/"false" for condition branches.
	Handle  string
	Suspend *Suspension
}

// continueOn is shorthand for a plain continuation.
func continueOn(handle string, effects ...dto.Effect) (*Outcome, error) {
	return &Outcome{Handle: handle, Effects: effects}, nil
}

// suspendOn is shorthand for a suspension outcome.
func suspendOn(s Suspension, effects ...dto.Effect) (*Outcome, error) {
	return &Outcome{Effects: effects, Suspend: &s}, nil
}
