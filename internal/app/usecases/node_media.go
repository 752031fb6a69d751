package usecases

import (
	"context"

	"github.com/chatflow/chatflow/internal/app/dto"
	"github.com/chatflow/chatflow/internal/core/flow"
	"github.com/chatflow/chatflow/internal/core/session"
)

// MediaInterpreter sends a media message with an interpolated
// caption and continues.
type MediaInterpreter struct{}

func (*MediaInterpreter) Evaluate(_ context.Context, node *flow.Node, sess *session.Session) (*Outcome, error) {
	data, ok := node.Data.(*flow.MediaData)
	if !ok {
		return nil, flow.ErrNodeDataMismatch
	}
	effect := newEffect(dto.EffectSendMedia, node, sess)
	effect.MediaType = data.MediaType
	effect.MediaURL = data.URL
	effect.Caption = session.Interpolate(data.Caption, sess.Vars)
	return continueOn("", effect)
}
