package usecases

import (
	"context"

	"github.com/chatflow/chatflow/internal/app/dto"
	"github.com/chatflow/chatflow/internal/core/flow"
	"github.com/chatflow/chatflow/internal/core/session"
)

// TemplateInterpreter sends a pre-approved message template with
// interpolated parameters and continues.
type TemplateInterpreter struct{}

func (*TemplateInterpreter) Evaluate(_ context.Context, node *flow.Node, sess *session.Session) (*Outcome, error) {
	data, ok := node.Data.(*flow.TemplateData)
	if !ok {
		return nil, flow.ErrNodeDataMismatch
	}
	effect := newEffect(dto.EffectSendTemplate, node, sess)
	effect.TemplateName = data.TemplateName
	if len(data.Params) > 0 {
		effect.Params = make(map[string]string, len(data.Params))
		for k, v := range data.Params {
			effect.Params[k] = session.Interpolate(v, sess.Vars)
		}
	}
	return continueOn("", effect)
}
