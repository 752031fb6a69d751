package flow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basicFlow() *Flow {
	return &Flow{
		ID: "flow-1",
		Nodes: []*Node{
			{ID: "start", Type: NodeStart, Data: &StartData{}},
			{ID: "greet", Type: NodeMessage, Data: &MessageData{Content: "Hi {{name}}"}},
		},
		Edges: []*Edge{
			{ID: "e1", Source: "start", Target: "greet"},
		},
	}
}

func TestFlow_Validate(t *testing.T) {
	tests := []struct {
		name    string
		flow    *Flow
		wantErr error
	}{
		{
			name:    "valid flow",
			flow:    basicFlow(),
			wantErr: nil,
		},
		{
			name:    "missing id",
			flow:    &Flow{Nodes: []*Node{{ID: "start", Type: NodeStart, Data: &StartData{}}}},
			wantErr: ErrInvalidFlowID,
		},
		{
			name:    "no start node",
			flow:    &Flow{ID: "f", Nodes: []*Node{{ID: "m", Type: NodeMessage, Data: &MessageData{}}}},
			wantErr: ErrMissingStartNode,
		},
		{
			name: "two start nodes",
			flow: &Flow{ID: "f", Nodes: []*Node{
				{ID: "s1", Type: NodeStart, Data: &StartData{}},
				{ID: "s2", Type: NodeStart, Data: &StartData{}},
			}},
			wantErr: ErrDuplicateStartNode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.flow.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFlow_AddNode(t *testing.T) {
	f := basicFlow()

	err := f.AddNode(&Node{ID: "ask", Type: NodeQuestion, Data: &QuestionData{Question: "?", Variable: "v"}})
	require.NoError(t, err)
	assert.NotNil(t, f.NodeByID("ask"))

	t.Run("nil node", func(t *testing.T) {
		assert.ErrorIs(t, f.AddNode(nil), ErrNilNode)
	})
	t.Run("duplicate id", func(t *testing.T) {
		err := f.AddNode(&Node{ID: "greet", Type: NodeMessage, Data: &MessageData{}})
		assert.ErrorIs(t, err, ErrDuplicateNode)
	})
	t.Run("data kind mismatch", func(t *testing.T) {
		err := f.AddNode(&Node{ID: "x", Type: NodeMessage, Data: &QuestionData{}})
		assert.ErrorIs(t, err, ErrNodeDataMismatch)
	})
}

func TestFlow_AddEdge(t *testing.T) {
	f := basicFlow()

	t.Run("dangling source", func(t *testing.T) {
		err := f.AddEdge(&Edge{ID: "e2", Source: "missing", Target: "greet"})
		assert.ErrorIs(t, err, ErrSourceNodeNotFound)
	})
	t.Run("dangling target", func(t *testing.T) {
		err := f.AddEdge(&Edge{ID: "e2", Source: "greet", Target: "missing"})
		assert.ErrorIs(t, err, ErrTargetNodeNotFound)
	})
	t.Run("duplicate edge", func(t *testing.T) {
		err := f.AddEdge(&Edge{ID: "e2", Source: "start", Target: "greet"})
		assert.ErrorIs(t, err, ErrDuplicateEdge)
	})
	t.Run("self loop allowed", func(t *testing.T) {
		err := f.AddEdge(&Edge{ID: "loop", Source: "greet", Target: "greet"})
		assert.NoError(t, err)
	})
	t.Run("invalid handle", func(t *testing.T) {
		err := f.AddEdge(&Edge{ID: "e3", Source: "start", Target: "greet", SourceHandle: "maybe"})
		assert.ErrorIs(t, err, ErrInvalidSourceHandle)
	})
}

func TestFlow_EdgeFrom(t *testing.T) {
	f := &Flow{
		ID: "f",
		Nodes: []*Node{
			{ID: "start", Type: NodeStart, Data: &StartData{}},
			{ID: "cond", Type: NodeCondition, Data: &ConditionData{Variable: "v", Operator: OpEquals, Value: "x"}},
			{ID: "yes", Type: NodeMessage, Data: &MessageData{Content: "yes"}},
			{ID: "no", Type: NodeMessage, Data: &MessageData{Content: "no"}},
		},
		Edges: []*Edge{
			{ID: "e1", Source: "start", Target: "cond"},
			{ID: "e2", Source: "cond", Target: "yes", SourceHandle: HandleTrue},
			{ID: "e3", Source: "cond", Target: "no", SourceHandle: HandleFalse},
		},
	}

	assert.Equal(t, "cond", f.EdgeFrom("start", "").Target)
	assert.Equal(t, "yes", f.EdgeFrom("cond", HandleTrue).Target)
	assert.Equal(t, "no", f.EdgeFrom("cond", HandleFalse).Target)
	assert.Nil(t, f.EdgeFrom("cond", ""))
	assert.Nil(t, f.EdgeFrom("yes", ""))
	assert.Len(t, f.OutgoingEdges("cond"), 2)
}

func TestFlow_Clone(t *testing.T) {
	f := basicFlow()
	c := f.Clone()

	require.Equal(t, f, c)

	c.Nodes[1].Data.(*MessageData).Content = "changed"
	c.Edges[0].Target = "elsewhere"

	assert.Equal(t, "Hi {{name}}", f.Nodes[1].Data.(*MessageData).Content)
	assert.Equal(t, "greet", f.Edges[0].Target)
}

func TestNode_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		node *Node
	}{
		{"start", &Node{ID: "n", Type: NodeStart, Position: Position{X: 10, Y: 20}, Data: &StartData{}}},
		{"message", &Node{ID: "n", Type: NodeMessage, Data: &MessageData{Content: "hello"}}},
		{"question", &Node{ID: "n", Type: NodeQuestion, Data: &QuestionData{Question: "?", Variable: "color"}}},
		{"condition", &Node{ID: "n", Type: NodeCondition, Data: &ConditionData{Variable: "color", Operator: OpEquals, Value: "red"}}},
		{"action", &Node{ID: "n", Type: NodeAction, Data: &ActionData{Action: ActionAddTag, Tag: "vip"}}},
		{"delay", &Node{ID: "n", Type: NodeDelay, Data: &DelayData{Duration: 1.5, Unit: UnitHours}}},
		{"ai", &Node{ID: "n", Type: NodeAI, Data: &AIData{Prompt: "p", Model: "m", SaveToVariable: "out"}}},
		{"media", &Node{ID: "n", Type: NodeMedia, Data: &MediaData{MediaType: "image", URL: "https://x/y.png"}}},
		{"template", &Node{ID: "n", Type: NodeTemplate, Data: &TemplateData{TemplateName: "welcome", Params: map[string]string{"1": "Ana"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.node)
			require.NoError(t, err)

			var got Node
			require.NoError(t, json.Unmarshal(raw, &got))
			assert.Equal(t, tt.node, &got)
		})
	}
}

func TestNode_UnmarshalUnknownType(t *testing.T) {
	var n Node
	err := json.Unmarshal([]byte(`{"id":"n","type":"teleport","data":{}}`), &n)
	assert.ErrorIs(t, err, ErrUnknownNodeType)
}
