// Package flow provides node definitions
package flow

import "encoding/json"

// NodeType represents the type of node. The set is closed: decoding
// an unknown type is an error.
type NodeType string

const (
	// NodeStart is the single entry point of a flow.
	NodeStart NodeType = "start"
	// NodeMessage sends an interpolated text message.
	NodeMessage NodeType = "message"
	// NodeQuestion sends a prompt and waits for the contact's reply.
	NodeQuestion NodeType = "question"
	// NodeCondition branches on a variable comparison.
	NodeCondition NodeType = "condition"
	// NodeAction performs a CRM, webhook or handoff side effect.
	NodeAction NodeType = "action"
	// NodeDelay pauses the flow for a configured duration.
	NodeDelay NodeType = "delay"
	// NodeAI generates text through the AI collaborator.
	NodeAI NodeType = "ai"
	// NodeMedia sends an image, video, audio or document.
	NodeMedia NodeType = "media"
	// NodeTemplate sends a pre-approved message template.
	NodeTemplate NodeType = "template"
)

// Position is the node's placement on the authoring canvas.
// Execution ignores it entirely.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node represents a typed unit of behavior in the graph.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// NodeData is the per-type configuration payload. Each node type has
// exactly one variant so interpreters consume strongly-typed fields.
type NodeData interface {
	// Kind reports which node type the payload belongs to.
	Kind() NodeType
	// Clone returns an independent deep copy of the payload.
	Clone() NodeData
}

// StartData carries no configuration.
type StartData struct{}

func (*StartData) Kind() NodeType    { return NodeStart }
func (d *StartData) Clone() NodeData { c := *d; return &c }

// MessageData configures a message node.
type MessageData struct {
	Content string `json:"content"`
}

func (*MessageData) Kind() NodeType    { return NodeMessage }
func (d *MessageData) Clone() NodeData { c := *d; return &c }

// QuestionData configures a question node. The contact's reply is
// stored under Variable.
type QuestionData struct {
	Question string `json:"question"`
	Variable string `json:"variable"`
}

func (*QuestionData) Kind() NodeType    { return NodeQuestion }
func (d *QuestionData) Clone() NodeData { c := *d; return &c }

// ConditionOperator enumerates the supported comparison operators.
type ConditionOperator string

const (
	OpEquals      ConditionOperator = "equals"
	OpNotEquals   ConditionOperator = "not_equals"
	OpContains    ConditionOperator = "contains"
	OpStartsWith  ConditionOperator = "starts_with"
	OpEndsWith    ConditionOperator = "ends_with"
	OpGreaterThan ConditionOperator = "greater_than"
	OpLessThan    ConditionOperator = "less_than"
)

// ConditionData configures a condition node: store[Variable] is
// compared against the literal Value using Operator.
type ConditionData struct {
	Variable string            `json:"variable"`
	Operator ConditionOperator `json:"operator"`
	Value    string            `json:"value"`
}

func (*ConditionData) Kind() NodeType    { return NodeCondition }
func (d *ConditionData) Clone() NodeData { c := *d; return &c }

// ActionKind enumerates the side effects an action node can perform.
type ActionKind string

const (
	ActionAddTag      ActionKind = "add_tag"
	ActionRemoveTag   ActionKind = "remove_tag"
	ActionSetVariable ActionKind = "set_variable"
	ActionAssignAgent ActionKind = "assign_agent"
	ActionSetStage    ActionKind = "set_stage"
	ActionCreateDeal  ActionKind = "create_deal"
	ActionWebhook     ActionKind = "webhook"
	ActionHandoff     ActionKind = "handoff"
)

// ActionData configures an action node. Only the fields relevant to
// the selected Action kind are consulted.
type ActionData struct {
	Action    ActionKind `json:"action"`
	Tag       string     `json:"tag,omitempty"`
	Variable  string     `json:"variable,omitempty"`
	Value     string     `json:"value,omitempty"`
	AgentID   string     `json:"agent_id,omitempty"`
	Stage     string     `json:"stage,omitempty"`
	DealName  string     `json:"deal_name,omitempty"`
	DealValue float64    `json:"deal_value,omitempty"`
	URL       string     `json:"url,omitempty"`
}

func (*ActionData) Kind() NodeType    { return NodeAction }
func (d *ActionData) Clone() NodeData { c := *d; return &c }

// DelayUnit enumerates the supported delay time units.
type DelayUnit string

const (
	UnitSeconds DelayUnit = "seconds"
	UnitMinutes DelayUnit = "minutes"
	UnitHours   DelayUnit = "hours"
	UnitDays    DelayUnit = "days"
)

// DelayData configures a delay node.
type DelayData struct {
	Duration float64   `json:"duration"`
	Unit     DelayUnit `json:"unit"`
}

func (*DelayData) Kind() NodeType    { return NodeDelay }
func (d *DelayData) Clone() NodeData { c := *d; return &c }

// AIData configures an AI node. When SaveToVariable is set the
// generated text is written into the variable store.
type AIData struct {
	Prompt         string `json:"prompt"`
	Model          string `json:"model,omitempty"`
	Provider       string `json:"provider,omitempty"`
	SaveToVariable string `json:"save_to_variable,omitempty"`
}

func (*AIData) Kind() NodeType    { return NodeAI }
func (d *AIData) Clone() NodeData { c := *d; return &c }

// MediaData configures a media node.
type MediaData struct {
	MediaType string `json:"media_type"`
	URL       string `json:"url"`
	Caption   string `json:"caption,omitempty"`
}

func (*MediaData) Kind() NodeType    { return NodeMedia }
func (d *MediaData) Clone() NodeData { c := *d; return &c }

// TemplateData configures a template node.
type TemplateData struct {
	TemplateName string            `json:"template_name"`
	Params       map[string]string `json:"params,omitempty"`
}

func (*TemplateData) Kind() NodeType { return NodeTemplate }
func (d *TemplateData) Clone() NodeData {
	c := *d
	if d.Params != nil {
		c.Params = make(map[string]string, len(d.Params))
		for k, v := range d.Params {
			c.Params[k] = v
		}
	}
	return &c
}

// newNodeData returns the zero payload for a node type.
func newNodeData(t NodeType) (NodeData, error) {
	switch t {
	case NodeStart:
		return &StartData{}, nil
	case NodeMessage:
		return &MessageData{}, nil
	case NodeQuestion:
		return &QuestionData{}, nil
	case NodeCondition:
		return &ConditionData{}, nil
	case NodeAction:
		return &ActionData{}, nil
	case NodeDelay:
		return &DelayData{}, nil
	case NodeAI:
		return &AIData{}, nil
	case NodeMedia:
		return &MediaData{}, nil
	case NodeTemplate:
		return &TemplateData{}, nil
	default:
		return nil, ErrUnknownNodeType
	}
}

// Validate ensures node integrity.
func (n *Node) Validate() error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if n.Data == nil {
		return ErrNilNodeData
	}
	if n.Data.Kind() != n.Type {
		return ErrNodeDataMismatch
	}
	return nil
}

// Clone returns an independent deep copy of the node.
func (n *Node) Clone() *Node {
	c := *n
	if n.Data != nil {
		c.Data = n.Data.Clone()
	}
	return &c
}

// nodeEnvelope is the wire form of a node; Data is decoded into the
// variant selected by Type.
type nodeEnvelope struct {
	ID       string          `json:"id"`
	Type     NodeType        `json:"type"`
	Position Position        `json:"position"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// UnmarshalJSON decodes the tagged union keyed by the node type.
func (n *Node) UnmarshalJSON(b []byte) error {
	var env nodeEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	data, err := newNodeData(env.Type)
	if err != nil {
		return err
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			return err
		}
	}
	n.ID = env.ID
	n.Type = env.Type
	n.Position = env.Position
	n.Data = data
	return nil
}

// MarshalJSON encodes the node with its payload inline under "data".
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID       string   `json:"id"`
		Type     NodeType `json:"type"`
		Position Position `json:"position"`
		Data     NodeData `json:"data,omitempty"`
	}{n.ID, n.Type, n.Position, n.Data})
}
