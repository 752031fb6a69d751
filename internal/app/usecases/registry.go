package usecases

import (
	"context"

	"github.com/chatflow/chatflow/internal/core/flow"
	"github.com/chatflow/chatflow/internal/core/session"
)

// Interpreter evaluates one node against the session's variable
// store and returns the outcome. Interpreters never perform side
// effects themselves; they describe them for the engine to dispatch.
type Interpreter interface {
	Evaluate(ctx context.Context, node *flow.Node, sess *session.Session) (*Outcome, error)
}

// Registry maps each node type to its interpreter.
type Registry struct {
	interpreters map[flow.NodeType]Interpreter
}

// NewRegistry creates a registry with every built-in node type
// registered.
func NewRegistry() *Registry {
	r := &Registry{interpreters: make(map[flow.NodeType]Interpreter)}
	r.Register(flow.NodeStart, &StartInterpreter{})
	r.Register(flow.NodeMessage, &MessageInterpreter{})
	r.Register(flow.NodeQuestion, &QuestionInterpreter{})
	r.Register(flow.NodeCondition, &ConditionInterpreter{})
	r.Register(flow.NodeAction, &ActionInterpreter{})
	r.Register(flow.NodeDelay, &DelayInterpreter{})
	r.Register(flow.NodeAI, &AIInterpreter{})
	r.Register(flow.NodeMedia, &MediaInterpreter{})
	r.Register(flow.NodeTemplate, &TemplateInterpreter{})
	return r
}

// Register installs an interpreter for a node type, replacing any
// existing registration.
func (r *Registry) Register(t flow.NodeType, i Interpreter) {
	r.interpreters[t] = i
}

// Get returns the interpreter for a node type.
func (r *Registry) Get(t flow.NodeType) (Interpreter, bool) {
	i, ok := r.interpreters[t]
	return i, ok
}
