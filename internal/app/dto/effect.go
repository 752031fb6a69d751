// Package dto holds the data transfer objects crossing the engine
// boundary: inbound events, emitted side effects and run results.
package dto

// EffectKind enumerates every side effect the engine can emit
// against an external collaborator.
type EffectKind string

const (
	EffectSendText     EffectKind = "send_text"
	EffectSendMedia    EffectKind = "send_media"
	EffectSendTemplate EffectKind = "send_template"
	EffectAddTag       EffectKind = "add_tag"
	EffectRemoveTag    EffectKind = "remove_tag"
	EffectSetStage     EffectKind = "set_stage"
	EffectCreateDeal   EffectKind = "create_deal"
	EffectAssignAgent  EffectKind = "assign_agent"
	EffectWebhook      EffectKind = "webhook"
	EffectAIGenerate   EffectKind = "ai_generate"
	EffectHandoff      EffectKind = "handoff"
)

// Effect describes one side effect to perform against an external
// collaborator. Only the fields relevant to Kind are populated.
type Effect struct {
	ID        string     `json:"id"`
	Kind      EffectKind `json:"kind"`
	SessionID string     `json:"session_id"`
	ContactID string     `json:"contact_id"`
	NodeID    string     `json:"node_id"`

	// Messaging
	Content      string            `json:"content,omitempty"`
	MediaType    string            `json:"media_type,omitempty"`
	MediaURL     string            `json:"media_url,omitempty"`
	Caption      string            `json:"caption,omitempty"`
	TemplateName string            `json:"template_name,omitempty"`
	Params       map[string]string `json:"params,omitempty"`

	// CRM
	Tag       string  `json:"tag,omitempty"`
	Stage     string  `json:"stage,omitempty"`
	AgentID   string  `json:"agent_id,omitempty"`
	DealName  string  `json:"deal_name,omitempty"`
	DealValue float64 `json:"deal_value,omitempty"`

	// Webhook
	URL     string         `json:"url,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`

	// AI generation
	Prompt         string `json:"prompt,omitempty"`
	Model          string `json:"model,omitempty"`
	Provider       string `json:"provider,omitempty"`
	SaveToVariable string `json:"save_to_variable,omitempty"`
}

// EffectResult carries the outputs a dispatched effect may feed back
// into the session: generated text for AI effects and response fields
// for webhook effects.
type EffectResult struct {
	Output string         `json:"output,omitempty"`
	Vars   map[string]any `json:"vars,omitempty"`
}
