package usecases

import (
	"context"
	"time"

	"github.com/chatflow/chatflow/internal/app/dto"
	"github.com/chatflow/chatflow/internal/core/flow"
	"github.com/chatflow/chatflow/internal/core/session"
)

// FlowRepository defines the interface for flow document storage.
// The document is replaced atomically on every save.
type FlowRepository interface {
	Save(ctx context.Context, f *flow.Flow) error
	Get(ctx context.Context, id string) (*flow.Flow, error)
	List(ctx context.Context) ([]*flow.Flow, error)
	Delete(ctx context.Context, id string) error
}

// SessionStore defines the interface for session persistence.
type SessionStore interface {
	Save(ctx context.Context, s *session.Session) error
	Get(ctx context.Context, id string) (*session.Session, error)
	ListByFlow(ctx context.Context, flowID string) ([]*session.Session, error)
	// ListDue returns timer-suspended sessions whose resume time is
	// at or before the given instant. Used to re-arm the scheduler
	// after a restart.
	ListDue(ctx context.Context, before time.Time) ([]*session.Session, error)
	Delete(ctx context.Context, id string) error
}

// EffectDispatcher performs one side effect against an external
// collaborator. The returned result carries outputs that feed back
// into the session (AI text, webhook response fields).
type EffectDispatcher interface {
	Dispatch(ctx context.Context, effect *dto.Effect) (*dto.EffectResult, error)
}

// Scheduler arranges future resumes for timer-suspended sessions
// without blocking a goroutine per delay.
type Scheduler interface {
	Schedule(sessionID, flowID string, at time.Time)
	Cancel(sessionID string)
	CancelFlow(flowID string)
}

// Messenger is the messaging collaborator boundary.
type Messenger interface {
	SendText(ctx context.Context, contactID, text string) error
	SendMedia(ctx context.Context, contactID, mediaType, url, caption string) error
	SendTemplate(ctx context.Context, contactID, name string, params map[string]string) error
}

// CRM is the contact-management collaborator boundary.
type CRM interface {
	AddTag(ctx context.Context, contactID, tag string) error
	RemoveTag(ctx context.Context, contactID, tag string) error
	SetStage(ctx context.Context, contactID, stage string) error
	CreateDeal(ctx context.Context, contactID, name string, value float64) error
	AssignAgent(ctx context.Context, contactID, agentID string) error
}

// WebhookCaller invokes an operator-supplied URL with the current
// variables and returns response fields, if the body was a JSON object.
type WebhookCaller interface {
	Call(ctx context.Context, url string, payload map[string]any) (map[string]any, error)
}

// TextGenerator is the AI completion collaborator boundary,
// opaque beyond this contract.
type TextGenerator interface {
	Generate(ctx context.Context, prompt, model, provider string) (string, error)
}

// HandoffNotifier flips session ownership to a human agent queue.
type HandoffNotifier interface {
	Handoff(ctx context.Context, sessionID, contactID string) error
}
