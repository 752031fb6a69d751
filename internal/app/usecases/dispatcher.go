package usecases

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chatflow/chatflow/internal/app/dto"
)

// DefaultEffectTimeout bounds each I/O-bound collaborator call. A
// timed-out effect is treated as failed, never left pending.
const DefaultEffectTimeout = 10 * time.Second

// Collaborators bundles the external services effects are performed
// against. Any nil field turns the corresponding effects into logged
// no-ops, which keeps the engine usable in tests and dry runs.
type Collaborators struct {
	Messenger Messenger
	CRM       CRM
	Webhook   WebhookCaller
	AI        TextGenerator
	Handoff   HandoffNotifier
}

// CollabDispatcher routes each effect kind to its collaborator.
type CollabDispatcher struct {
	collab  Collaborators
	timeout time.Duration
	log     *zap.Logger
}

// NewCollabDispatcher creates a dispatcher. A zero timeout falls
// back to DefaultEffectTimeout; a nil logger to zap.NewNop.
func NewCollabDispatcher(collab Collaborators, timeout time.Duration, log *zap.Logger) *CollabDispatcher {
	if timeout <= 0 {
		timeout = DefaultEffectTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CollabDispatcher{collab: collab, timeout: timeout, log: log}
}

// Dispatch performs one effect with an explicit timeout.
func (d *CollabDispatcher) Dispatch(ctx context.Context, effect *dto.Effect) (*dto.EffectResult, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	switch effect.Kind {
	case dto.EffectSendText:
		if d.collab.Messenger == nil {
			return d.skip(effect)
		}
		return nil, d.collab.Messenger.SendText(ctx, effect.ContactID, effect.Content)

	case dto.EffectSendMedia:
		if d.collab.Messenger == nil {
			return d.skip(effect)
		}
		return nil, d.collab.Messenger.SendMedia(ctx, effect.ContactID, effect.MediaType, effect.MediaURL, effect.Caption)

	case dto.EffectSendTemplate:
		if d.collab.Messenger == nil {
			return d.skip(effect)
		}
		return nil, d.collab.Messenger.SendTemplate(ctx, effect.ContactID, effect.TemplateName, effect.Params)

	case dto.EffectAddTag:
		if d.collab.CRM == nil {
			return d.skip(effect)
		}
		return nil, d.collab.CRM.AddTag(ctx, effect.ContactID, effect.Tag)

	case dto.EffectRemoveTag:
		if d.collab.CRM == nil {
			return d.skip(effect)
		}
		return nil, d.collab.CRM.RemoveTag(ctx, effect.ContactID, effect.Tag)

	case dto.EffectSetStage:
		if d.collab.CRM == nil {
			return d.skip(effect)
		}
		return nil, d.collab.CRM.SetStage(ctx, effect.ContactID, effect.Stage)

	case dto.EffectCreateDeal:
		if d.collab.CRM == nil {
			return d.skip(effect)
		}
		return nil, d.collab.CRM.CreateDeal(ctx, effect.ContactID, effect.DealName, effect.DealValue)

	case dto.EffectAssignAgent:
		if d.collab.CRM == nil {
			return d.skip(effect)
		}
		return nil, d.collab.CRM.AssignAgent(ctx, effect.ContactID, effect.AgentID)

	case dto.EffectWebhook:
		if d.collab.Webhook == nil {
			return d.skip(effect)
		}
		vars, err := d.collab.Webhook.Call(ctx, effect.URL, effect.Payload)
		if err != nil {
			return nil, err
		}
		return &dto.EffectResult{Vars: vars}, nil

	case dto.EffectAIGenerate:
		if d.collab.AI == nil {
			return d.skip(effect)
		}
		text, err := d.collab.AI.Generate(ctx, effect.Prompt, effect.Model, effect.Provider)
		if err != nil {
			return nil, err
		}
		return &dto.EffectResult{Output: text}, nil

	case dto.EffectHandoff:
		if d.collab.Handoff == nil {
			return d.skip(effect)
		}
		return nil, d.collab.Handoff.Handoff(ctx, effect.SessionID, effect.ContactID)

	default:
		return nil, fmt.Errorf("unknown effect kind %q", effect.Kind)
	}
}

func (d *CollabDispatcher) skip(effect *dto.Effect) (*dto.EffectResult, error) {
	d.log.Debug("no collaborator configured, effect skipped",
		zap.String("kind", string(effect.Kind)),
		zap.String("node_id", effect.NodeID))
	return nil, nil
}
