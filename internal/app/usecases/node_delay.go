package usecases

import (
	"context"
	"time"

	"github.com/chatflow/chatflow/internal/core/flow"
	"github.com/chatflow/chatflow/internal/core/session"
)

// DelayInterpreter suspends the session until the configured
// duration has elapsed. The engine hands the resume time to the
// scheduler; no goroutine sleeps for the duration.
type DelayInterpreter struct {
	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func (d *DelayInterpreter) Evaluate(_ context.Context, node *flow.Node, _ *session.Session) (*Outcome, error) {
	data, ok := node.Data.(*flow.DelayData)
	if !ok {
		return nil, flow.ErrNodeDataMismatch
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	resumeAt := now().Add(durationOf(data))
	return suspendOn(Suspension{
		Reason:   session.ReasonTimer,
		ResumeAt: &resumeAt,
	})
}

// durationOf converts the delay payload to a time.Duration. An
// unknown unit falls back to minutes, the authoring default.
func durationOf(data *flow.DelayData) time.Duration {
	unit := time.Minute
	switch data.Unit {
	case flow.UnitSeconds:
		unit = time.Second
	case flow.UnitMinutes:
		unit = time.Minute
	case flow.UnitHours:
		unit = time.Hour
	case flow.UnitDays:
		unit = 24 * time.Hour
	}
	return time.Duration(data.Duration * float64(unit))
}
