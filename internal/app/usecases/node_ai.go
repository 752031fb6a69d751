package usecases

import (
	"context"

	"github.com/chatflow/chatflow/internal/app/dto"
	"github.com/chatflow/chatflow/internal/core/flow"
	"github.com/chatflow/chatflow/internal/core/session"
)

// AIInterpreter sends the interpolated prompt to the text-generation
// collaborator. The engine writes the generated text into
// SaveToVariable, when set, before following the outgoing edge.
type AIInterpreter struct{}

func (*AIInterpreter) Evaluate(_ context.Context, node *flow.Node, sess *session.Session) (*Outcome, error) {
	data, ok := node.Data.(*flow.AIData)
	if !ok {
		return nil, flow.ErrNodeDataMismatch
	}
	effect := newEffect(dto.EffectAIGenerate, node, sess)
	effect.Prompt = session.Interpolate(data.Prompt, sess.Vars)
	effect.Model = data.Model
	effect.Provider = data.Provider
	effect.SaveToVariable = data.SaveToVariable
	return continueOn("", effect)
}
