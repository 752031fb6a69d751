package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatflow/chatflow/internal/core/flow"
)

type cannedGenerator struct {
	output string
	err    error
	prompt string
}

func (g *cannedGenerator) Generate(_ context.Context, prompt, _, _ string) (string, error) {
	g.prompt = prompt
	return g.output, g.err
}

func TestFlowGenerator_Generate(t *testing.T) {
	gen := &cannedGenerator{output: `{
		"id": "welcome-bot",
		"nodes": [
			{"id": "start", "type": "start", "data": {}},
			{"id": "hello", "type": "message", "data": {"content": "Welcome!"}}
		],
		"edges": [
			{"id": "e1", "source": "start", "target": "hello"}
		]
	}`}
	g := NewFlowGenerator(gen, "test-model", nil)

	f, err := g.Generate(context.Background(), "a bot that welcomes people")
	require.NoError(t, err)

	assert.Equal(t, "welcome-bot", f.ID)
	assert.Len(t, f.Nodes, 2)
	assert.Contains(t, gen.prompt, "a bot that welcomes people")
}

func TestFlowGenerator_StripsCodeFences(t *testing.T) {
	gen := &cannedGenerator{output: "```json\n" + `{
		"nodes": [{"id": "start", "type": "start", "data": {}}],
		"edges": []
	}` + "\n```"}
	g := NewFlowGenerator(gen, "test-model", nil)

	f, err := g.Generate(context.Background(), "anything")
	require.NoError(t, err)
	assert.NotEmpty(t, f.ID, "missing flow ID is filled in")
}

func TestFlowGenerator_InjectsMissingStart(t *testing.T) {
	gen := &cannedGenerator{output: `{
		"nodes": [
			{"id": "hello", "type": "message", "data": {"content": "Hi"}},
			{"id": "bye", "type": "message", "data": {"content": "Bye"}}
		],
		"edges": [
			{"id": "e1", "source": "hello", "target": "bye"}
		]
	}`}
	g := NewFlowGenerator(gen, "test-model", nil)

	f, err := g.Generate(context.Background(), "greeting bot")
	require.NoError(t, err)

	start, err := f.StartNode()
	require.NoError(t, err)
	edge := f.EdgeFrom(start.ID, "")
	require.NotNil(t, edge, "injected start must be wired in")
	assert.Equal(t, "hello", edge.Target, "wired to the node without incoming edges")
}

func TestFlowGenerator_Errors(t *testing.T) {
	t.Run("collaborator failure", func(t *testing.T) {
		g := NewFlowGenerator(&cannedGenerator{err: errors.New("rate limited")}, "m", nil)
		_, err := g.Generate(context.Background(), "x")
		assert.ErrorContains(t, err, "flow generation failed")
	})

	t.Run("non-JSON output", func(t *testing.T) {
		g := NewFlowGenerator(&cannedGenerator{output: "Sure! Here is your flow:"}, "m", nil)
		_, err := g.Generate(context.Background(), "x")
		assert.ErrorContains(t, err, "not valid JSON")
	})

	t.Run("invalid candidate", func(t *testing.T) {
		// Unknown node types fail JSON decoding in the tagged union.
		g := NewFlowGenerator(&cannedGenerator{output: `{"nodes":[{"id":"x","type":"teleport","data":{}}],"edges":[]}`}, "m", nil)
		_, err := g.Generate(context.Background(), "x")
		assert.ErrorIs(t, err, flow.ErrUnknownNodeType)
	})
}
