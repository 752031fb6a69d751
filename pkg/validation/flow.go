// Package validation provides structural validation for flow
// documents before save and before execution. Errors block both;
// warnings are surfaced to the authoring UI but never block.
package validation

import (
	"fmt"

	"github.com/chatflow/chatflow/internal/core/flow"
)

// Issue codes attached to validation results so the authoring
// surface can highlight specific nodes and edges.
const (
	CodeMissingStart    = "missing_start"
	CodeDuplicateStart  = "duplicate_start"
	CodeDuplicateNodeID = "duplicate_node_id"
	CodeDanglingEdge    = "dangling_edge"
	CodeAmbiguousBranch = "ambiguous_branch"
	CodeInvalidNode     = "invalid_node"
	CodeInvalidEdge     = "invalid_edge"
	CodeUnreachable     = "unreachable"
	CodeEmptyField      = "empty_field"
)

// Issue is a single validation finding tied to a node or edge.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	NodeID  string `json:"node_id,omitempty"`
	EdgeID  string `json:"edge_id,omitempty"`
}

func (i Issue) String() string {
	switch {
	case i.NodeID != "":
		return fmt.Sprintf("%s: %s (node %s)", i.Code, i.Message, i.NodeID)
	case i.EdgeID != "":
		return fmt.Sprintf("%s: %s (edge %s)", i.Code, i.Message, i.EdgeID)
	default:
		return fmt.Sprintf("%s: %s", i.Code, i.Message)
	}
}

// Result holds all findings for one flow. Errors block save and
// execution; warnings do not.
type Result struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// Valid reports whether the flow may be saved and executed.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(code, nodeID, edgeID, format string, args ...any) {
	r.Errors = append(r.Errors, Issue{Code: code, Message: fmt.Sprintf(format, args...), NodeID: nodeID, EdgeID: edgeID})
}

func (r *Result) warnf(code, nodeID, edgeID, format string, args ...any) {
	r.Warnings = append(r.Warnings, Issue{Code: code, Message: fmt.Sprintf(format, args...), NodeID: nodeID, EdgeID: edgeID})
}

// ValidateFlow runs every structural check against the flow.
func ValidateFlow(f *flow.Flow) *Result {
	res := &Result{}
	if f == nil {
		res.errorf(CodeInvalidNode, "", "", "flow is nil")
		return res
	}

	checkNodes(f, res)
	checkStart(f, res)
	checkEdges(f, res)
	checkBranches(f, res)
	checkReachability(f, res)
	checkRequiredFields(f, res)
	return res
}

func checkNodes(f *flow.Flow, res *Result) {
	seen := make(map[string]bool, len(f.Nodes))
	for _, n := range f.Nodes {
		if err := n.Validate(); err != nil {
			res.errorf(CodeInvalidNode, n.ID, "", "%v", err)
			continue
		}
		if seen[n.ID] {
			res.errorf(CodeDuplicateNodeID, n.ID, "", "node ID %q used more than once", n.ID)
		}
		seen[n.ID] = true
	}
}

func checkStart(f *flow.Flow, res *Result) {
	count := 0
	for _, n := range f.Nodes {
		if n.Type == flow.NodeStart {
			count++
		}
	}
	switch {
	case count == 0:
		res.errorf(CodeMissingStart, "", "", "flow has no start node")
	case count > 1:
		res.errorf(CodeDuplicateStart, "", "", "flow has %d start nodes, expected exactly one", count)
	}
}

func checkEdges(f *flow.Flow, res *Result) {
	idx := f.Index()
	for _, e := range f.Edges {
		if err := e.Validate(); err != nil {
			res.errorf(CodeInvalidEdge, "", e.ID, "%v", err)
			continue
		}
		if _, ok := idx[e.Source]; !ok {
			res.errorf(CodeDanglingEdge, "", e.ID, "edge source %q does not exist", e.Source)
		}
		if _, ok := idx[e.Target]; !ok {
			res.errorf(CodeDanglingEdge, "", e.ID, "edge target %q does not exist", e.Target)
		}
	}
}

// checkBranches rejects condition nodes with two outgoing edges
// sharing a source handle: the branch to take would be ambiguous.
func checkBranches(f *flow.Flow, res *Result) {
	type branchKey struct{ node, handle string }
	seen := make(map[branchKey]bool)
	for _, e := range f.Edges {
		src := f.NodeByID(e.Source)
		if src == nil || src.Type != flow.NodeCondition {
			continue
		}
		k := branchKey{e.Source, e.SourceHandle}
		if seen[k] {
			res.errorf(CodeAmbiguousBranch, e.Source, e.ID,
				"condition node has multiple edges for handle %q", e.SourceHandle)
		}
		seen[k] = true
	}
}

// checkReachability warns about nodes a BFS from the start node never
// visits. Unreachable nodes may exist but never execute.
func checkReachability(f *flow.Flow, res *Result) {
	start, err := f.StartNode()
	if err != nil {
		return // already reported by checkStart
	}
	adj := make(map[string][]string)
	for _, e := range f.Edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}
	visited := map[string]bool{start.ID: true}
	queue := []string{start.ID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range adj[id] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	for _, n := range f.Nodes {
		if !visited[n.ID] {
			res.warnf(CodeUnreachable, n.ID, "", "node is not reachable from the start node")
		}
	}
}

// checkRequiredFields warns about node payloads with fields the
// interpreter needs left empty.
func checkRequiredFields(f *flow.Flow, res *Result) {
	for _, n := range f.Nodes {
		switch data := n.Data.(type) {
		case *flow.MessageData:
			if data.Content == "" {
				res.warnf(CodeEmptyField, n.ID, "", "message node has empty content")
			}
		case *flow.QuestionData:
			if data.Question == "" {
				res.warnf(CodeEmptyField, n.ID, "", "question node has empty question text")
			}
			if data.Variable == "" {
				res.warnf(CodeEmptyField, n.ID, "", "question node has no variable to store the reply")
			}
		case *flow.ConditionData:
			if data.Variable == "" {
				res.warnf(CodeEmptyField, n.ID, "", "condition node has no variable to compare")
			}
		case *flow.DelayData:
			if data.Duration <= 0 {
				res.warnf(CodeEmptyField, n.ID, "", "delay node has a non-positive duration")
			}
		case *flow.AIData:
			if data.Prompt == "" {
				res.warnf(CodeEmptyField, n.ID, "", "ai node has empty prompt")
			}
		case *flow.MediaData:
			if data.URL == "" {
				res.warnf(CodeEmptyField, n.ID, "", "media node has no media URL")
			}
		case *flow.TemplateData:
			if data.TemplateName == "" {
				res.warnf(CodeEmptyField, n.ID, "", "template node has no template name")
			}
		}
	}
}
