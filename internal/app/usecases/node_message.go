package usecases

import (
	"context"

	"github.com/chatflow/chatflow/internal/app/dto"
	"github.com/chatflow/chatflow/internal/core/flow"
	"github.com/chatflow/chatflow/internal/core/session"
)

// MessageInterpreter sends an interpolated text message and continues.
type MessageInterpreter struct{}

func (*MessageInterpreter) Evaluate(_ context.Context, node *flow.Node, sess *session.Session) (*Outcome, error) {
	data, ok := node.Data.(*flow.MessageData)
	if !ok {
		return nil, flow.ErrNodeDataMismatch
	}
	effect := newEffect(dto.EffectSendText, node, sess)
	effect.Content = session.Interpolate(data.Content, sess.Vars)
	return continueOn("", effect)
}
