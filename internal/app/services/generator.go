package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chatflow/chatflow/internal/app/usecases"
	"github.com/chatflow/chatflow/internal/core/flow"
	"github.com/chatflow/chatflow/pkg/validation"
)

const generatorPrompt = `You are a chatbot flow designer. Produce a JSON document with this shape:
{"nodes":[{"id":"...","type":"start|message|question|condition|action|delay|ai|media|template","position":{"x":0,"y":0},"data":{...}}],"edges":[{"id":"...","source":"...","target":"...","sourceHandle":"true|false"}]}
Include exactly one start node. Respond with JSON only, no prose.

Description: %s`

// FlowGenerator turns a natural-language description into a
// candidate flow document through the text-generation collaborator.
// The candidate must still pass validation before use.
type FlowGenerator struct {
	gen   usecases.TextGenerator
	model string
	log   *zap.Logger
}

// NewFlowGenerator creates a generator using the given model.
func NewFlowGenerator(gen usecases.TextGenerator, model string, log *zap.Logger) *FlowGenerator {
	if log == nil {
		log = zap.NewNop()
	}
	return &FlowGenerator{gen: gen, model: model, log: log}
}

// Generate produces a validated flow from a description. A candidate
// missing its start node gets one injected and wired to the first
// entry node rather than being rejected outright.
func (g *FlowGenerator) Generate(ctx context.Context, description string) (*flow.Flow, error) {
	raw, err := g.gen.Generate(ctx, fmt.Sprintf(generatorPrompt, description), g.model, "")
	if err != nil {
		return nil, fmt.Errorf("flow generation failed: %w", err)
	}

	var f flow.Flow
	if err := json.Unmarshal([]byte(stripFences(raw)), &f); err != nil {
		return nil, fmt.Errorf("generated flow is not valid JSON: %w", err)
	}
	if f.ID == "" {
		f.ID = uuid.New().String()
	}

	ensureStart(&f)

	if res := validation.ValidateFlow(&f); !res.Valid() {
		return nil, fmt.Errorf("generated flow failed validation: %v", res.Errors)
	}
	g.log.Info("flow generated",
		zap.String("flow_id", f.ID),
		zap.Int("nodes", len(f.Nodes)),
		zap.Int("edges", len(f.Edges)))
	return &f, nil
}

// ensureStart enforces the start-node invariant on generator output:
// if the candidate has no start node, one is injected and wired to a
// node without incoming edges (or the first node).
func ensureStart(f *flow.Flow) {
	for _, n := range f.Nodes {
		if n.Type == flow.NodeStart {
			return
		}
	}
	if len(f.Nodes) == 0 {
		f.Nodes = append(f.Nodes, &flow.Node{ID: "start", Type: flow.NodeStart, Data: &flow.StartData{}})
		return
	}

	hasIncoming := make(map[string]bool)
	for _, e := range f.Edges {
		hasIncoming[e.Target] = true
	}
	entry := f.Nodes[0]
	for _, n := range f.Nodes {
		if !hasIncoming[n.ID] {
			entry = n
			break
		}
	}

	start := &flow.Node{ID: "start", Type: flow.NodeStart, Data: &flow.StartData{}}
	if f.NodeByID(start.ID) != nil {
		start.ID = "start-" + uuid.New().String()[:8]
	}
	f.Nodes = append([]*flow.Node{start}, f.Nodes...)
	f.Edges = append(f.Edges, &flow.Edge{
		ID:     "edge-" + uuid.New().String()[:8],
		Source: start.ID,
		Target: entry.ID,
	})
}

// stripFences removes a markdown code fence around the model's JSON,
// a common completion artifact.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
