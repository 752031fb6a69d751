package usecases

import (
	"context"
	"fmt"

	"github.com/chatflow/chatflow/internal/app/dto"
	"github.com/chatflow/chatflow/internal/core/flow"
	"github.com/chatflow/chatflow/internal/core/session"
)

// ActionInterpreter dispatches one CRM, variable, webhook or handoff
// action. Every action continues afterward except handoff, which
// suspends the flow indefinitely: a human has taken over.
type ActionInterpreter struct{}

func (*ActionInterpreter) Evaluate(_ context.Context, node *flow.Node, sess *session.Session) (*Outcome, error) {
	data, ok := node.Data.(*flow.ActionData)
	if !ok {
		return nil, flow.ErrNodeDataMismatch
	}

	switch data.Action {
	case flow.ActionSetVariable:
		// Pure store mutation, no collaborator involved.
		sess.Vars.Set(data.Variable, session.Interpolate(data.Value, sess.Vars))
		return continueOn("")

	case flow.ActionAddTag:
		effect := newEffect(dto.EffectAddTag, node, sess)
		effect.Tag = data.Tag
		return continueOn("", effect)

	case flow.ActionRemoveTag:
		effect := newEffect(dto.EffectRemoveTag, node, sess)
		effect.Tag = data.Tag
		return continueOn("", effect)

	case flow.ActionSetStage:
		effect := newEffect(dto.EffectSetStage, node, sess)
		effect.Stage = data.Stage
		return continueOn("", effect)

	case flow.ActionCreateDeal:
		effect := newEffect(dto.EffectCreateDeal, node, sess)
		effect.DealName = session.Interpolate(data.DealName, sess.Vars)
		effect.DealValue = data.DealValue
		return continueOn("", effect)

	case flow.ActionAssignAgent:
		effect := newEffect(dto.EffectAssignAgent, node, sess)
		effect.AgentID = data.AgentID
		return continueOn("", effect)

	case flow.ActionWebhook:
		effect := newEffect(dto.EffectWebhook, node, sess)
		effect.URL = data.URL
		effect.Payload = map[string]any(sess.Vars.Clone())
		return continueOn("", effect)

	case flow.ActionHandoff:
		effect := newEffect(dto.EffectHandoff, node, sess)
		return suspendOn(Suspension{Reason: session.ReasonHandoff}, effect)

	default:
		return nil, fmt.Errorf("action node %s: unknown action %q", node.ID, data.Action)
	}
}
