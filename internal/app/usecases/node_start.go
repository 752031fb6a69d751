package usecases

import (
	"context"

	"github.com/chatflow/chatflow/internal/core/flow"
	"github.com/chatflow/chatflow/internal/core/session"
)

// StartInterpreter handles the flow entry node: a no-op that follows
// the single outgoing edge.
type StartInterpreter struct{}

func (*StartInterpreter) Evaluate(_ context.Context, _ *flow.Node, _ *session.Session) (*Outcome, error) {
	return continueOn("")
}
