// Package flow provides edge definitions
package flow

// Source handles on condition nodes. All other node types have a
// single unlabeled output (empty handle).
const (
	HandleTrue  = "true"
	HandleFalse = "false"
)

// Edge represents a directed connection between two nodes.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
}

// Validate ensures edge integrity. Self-loops are permitted: a
// question node may route back to itself for retry-on-invalid-input.
func (e *Edge) Validate() error {
	if e.Source == "" {
		return ErrInvalidSource
	}
	if e.Target == "" {
		return ErrInvalidTarget
	}
	switch e.SourceHandle {
	case "", HandleTrue, HandleFalse:
		return nil
	default:
		return ErrInvalidSourceHandle
	}
}
