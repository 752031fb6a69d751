// Package flow provides the core conversation flow entities:
// the flow document, its typed nodes and the edges connecting them.
// It has zero external dependencies.
package flow

// Flow is the persisted graph document defining one chatbot's behavior.
// It is saved and replaced as a whole; there is no node-level patching.
type Flow struct {
	ID    string  `json:"id"`
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// Validate ensures basic flow integrity. Structural checks beyond
// this (reachability, branch ambiguity) live in pkg/validation.
func (f *Flow) Validate() error {
	if f.ID == "" {
		return ErrInvalidFlowID
	}
	if _, err := f.StartNode(); err != nil {
		return err
	}
	return nil
}

// AddNode appends a node after checking for duplicate IDs.
func (f *Flow) AddNode(n *Node) error {
	if n == nil {
		return ErrNilNode
	}
	if err := n.Validate(); err != nil {
		return err
	}
	if f.NodeByID(n.ID) != nil {
		return ErrDuplicateNode
	}
	f.Nodes = append(f.Nodes, n)
	return nil
}

// AddEdge appends an edge after checking both endpoints exist.
func (f *Flow) AddEdge(e *Edge) error {
	if e == nil {
		return ErrNilEdge
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if f.NodeByID(e.Source) == nil {
		return ErrSourceNodeNotFound
	}
	if f.NodeByID(e.Target) == nil {
		return ErrTargetNodeNotFound
	}
	for _, existing := range f.Edges {
		if existing.Source == e.Source && existing.Target == e.Target && existing.SourceHandle == e.SourceHandle {
			return ErrDuplicateEdge
		}
	}
	f.Edges = append(f.Edges, e)
	return nil
}

// NodeByID returns the node with the given ID, or nil.
func (f *Flow) NodeByID(id string) *Node {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Index builds a node lookup map. Duplicate IDs keep the first
// occurrence; the validator reports duplicates as errors.
func (f *Flow) Index() map[string]*Node {
	idx := make(map[string]*Node, len(f.Nodes))
	for _, n := range f.Nodes {
		if _, seen := idx[n.ID]; !seen {
			idx[n.ID] = n
		}
	}
	return idx
}

// StartNode returns the single entry node of the flow.
func (f *Flow) StartNode() (*Node, error) {
	var start *Node
	for _, n := range f.Nodes {
		if n.Type == NodeStart {
			if start != nil {
				return nil, ErrDuplicateStartNode
			}
			start = n
		}
	}
	if start == nil {
		return nil, ErrMissingStartNode
	}
	return start, nil
}

// OutgoingEdges returns all edges whose source is the given node.
func (f *Flow) OutgoingEdges(nodeID string) []*Edge {
	var out []*Edge
	for _, e := range f.Edges {
		if e.Source == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// EdgeFrom returns the outgoing edge of a node matching the given
// source handle, or nil if no such edge exists. An empty handle
// matches the node's single unlabeled output.
func (f *Flow) EdgeFrom(nodeID, handle string) *Edge {
	for _, e := range f.Edges {
		if e.Source == nodeID && e.SourceHandle == handle {
			return e
		}
	}
	return nil
}

// Clone returns a deep copy of the flow, safe to mutate independently.
func (f *Flow) Clone() *Flow {
	c := &Flow{ID: f.ID}
	if f.Nodes != nil {
		c.Nodes = make([]*Node, len(f.Nodes))
		for i, n := range f.Nodes {
			c.Nodes[i] = n.Clone()
		}
	}
	if f.Edges != nil {
		c.Edges = make([]*Edge, len(f.Edges))
		for i, e := range f.Edges {
			cp := *e
			c.Edges[i] = &cp
		}
	}
	return c
}
