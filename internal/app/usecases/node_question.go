package usecases

import (
	"context"

	"github.com/chatflow/chatflow/internal/app/dto"
	"github.com/chatflow/chatflow/internal/core/flow"
	"github.com/chatflow/chatflow/internal/core/session"
)

// QuestionInterpreter sends the interpolated question and suspends
// until the contact's next inbound message, which the engine writes
// into the configured variable before continuing.
type QuestionInterpreter struct{}

func (*QuestionInterpreter) Evaluate(_ context.Context, node *flow.Node, sess *session.Session) (*Outcome, error) {
	data, ok := node.Data.(*flow.QuestionData)
	if !ok {
		return nil, flow.ErrNodeDataMismatch
	}
	effect := newEffect(dto.EffectSendText, node, sess)
	effect.Content = session.Interpolate(data.Question, sess.Vars)
	return suspendOn(Suspension{
		Reason:   session.ReasonReply,
		Variable: data.Variable,
	}, effect)
}
