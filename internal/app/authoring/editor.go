// Package authoring provides the graph-editing API the visual
// canvas calls, together with the bounded undo/redo history that
// wraps it. Authoring is single-session and synchronous; the only
// timer involved is the history debounce.
package authoring

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/chatflow/chatflow/internal/core/flow"
)

// Editor mutates one live flow document and records each mutation in
// its history. The canvas calls these methods; it never touches the
// flow directly.
type Editor struct {
	flow    *flow.Flow
	history *History
}

// NewEditor wraps a flow. A nil flow starts an empty document with a
// fresh start node, matching what the canvas shows for a new bot.
func NewEditor(f *flow.Flow, history *History) *Editor {
	if f == nil {
		f = &flow.Flow{
			ID: uuid.New().String(),
			Nodes: []*flow.Node{
				{ID: "start", Type: flow.NodeStart, Data: &flow.StartData{}},
			},
		}
	}
	e := &Editor{flow: f, history: history}
	if history != nil {
		history.init(f)
	}
	return e
}

// Flow returns the live document.
func (e *Editor) Flow() *flow.Flow {
	return e.flow
}

// AddNode adds a node and records the edit.
func (e *Editor) AddNode(n *flow.Node) error {
	if n != nil && n.Type == flow.NodeStart {
		if _, err := e.flow.StartNode(); err == nil {
			return flow.ErrDuplicateStartNode
		}
	}
	if err := e.flow.AddNode(n); err != nil {
		return err
	}
	e.record()
	return nil
}

// AddEdge adds an edge and records the edit.
func (e *Editor) AddEdge(edge *flow.Edge) error {
	if err := e.flow.AddEdge(edge); err != nil {
		return err
	}
	e.record()
	return nil
}

// UpdateNodeData replaces a node's configuration payload.
func (e *Editor) UpdateNodeData(nodeID string, data flow.NodeData) error {
	n := e.flow.NodeByID(nodeID)
	if n == nil {
		return flow.ErrNodeNotFound
	}
	if data == nil {
		return flow.ErrNilNodeData
	}
	if data.Kind() != n.Type {
		return flow.ErrNodeDataMismatch
	}
	n.Data = data
	e.record()
	return nil
}

// MoveNode updates a node's canvas position. Position changes are
// recorded like any other edit so undo restores layout too.
func (e *Editor) MoveNode(nodeID string, pos flow.Position) error {
	n := e.flow.NodeByID(nodeID)
	if n == nil {
		return flow.ErrNodeNotFound
	}
	n.Position = pos
	e.record()
	return nil
}

// DeleteNode removes a node and every edge touching it. The start
// node is not user-deletable.
func (e *Editor) DeleteNode(nodeID string) error {
	n := e.flow.NodeByID(nodeID)
	if n == nil {
		return flow.ErrNodeNotFound
	}
	if n.Type == flow.NodeStart {
		return fmt.Errorf("start node cannot be deleted")
	}
	nodes := e.flow.Nodes[:0]
	for _, existing := range e.flow.Nodes {
		if existing.ID != nodeID {
			nodes = append(nodes, existing)
		}
	}
	e.flow.Nodes = nodes
	edges := e.flow.Edges[:0]
	for _, edge := range e.flow.Edges {
		if edge.Source != nodeID && edge.Target != nodeID {
			edges = append(edges, edge)
		}
	}
	e.flow.Edges = edges
	e.record()
	return nil
}

// DeleteEdge removes an edge by ID.
func (e *Editor) DeleteEdge(edgeID string) error {
	for i, edge := range e.flow.Edges {
		if edge.ID == edgeID {
			e.flow.Edges = append(e.flow.Edges[:i], e.flow.Edges[i+1:]...)
			e.record()
			return nil
		}
	}
	return fmt.Errorf("edge %s not found", edgeID)
}

// Undo replaces the live graph with the previous snapshot. It is a
// no-op at the history boundary.
func (e *Editor) Undo() bool {
	if e.history == nil {
		return false
	}
	snap, ok := e.history.Undo()
	if !ok {
		return false
	}
	e.apply(snap)
	return true
}

// Redo replaces the live graph with the next snapshot. It is a no-op
// at the history boundary.
func (e *Editor) Redo() bool {
	if e.history == nil {
		return false
	}
	snap, ok := e.history.Redo()
	if !ok {
		return false
	}
	e.apply(snap)
	return true
}

// apply installs a snapshot while the history's guard flag is set,
// so restoring state is never itself recorded as an edit.
func (e *Editor) apply(snap *Snapshot) {
	e.history.setApplying(true)
	defer e.history.setApplying(false)
	e.flow.Nodes = snap.Nodes
	e.flow.Edges = snap.Edges
}

func (e *Editor) record() {
	if e.history != nil {
		e.history.Record(e.flow)
	}
}
