package authoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatflow/chatflow/internal/core/flow"
)

func TestNewEditor_EmptyDocument(t *testing.T) {
	e := NewEditor(nil, nil)

	f := e.Flow()
	assert.NotEmpty(t, f.ID)
	start, err := f.StartNode()
	require.NoError(t, err)
	assert.Equal(t, flow.NodeStart, start.Type)
}

func TestEditor_SecondStartRejected(t *testing.T) {
	e := NewEditor(nil, testHistory())

	err := e.AddNode(&flow.Node{ID: "start2", Type: flow.NodeStart, Data: &flow.StartData{}})
	assert.ErrorIs(t, err, flow.ErrDuplicateStartNode)
}

func TestEditor_StartNotDeletable(t *testing.T) {
	e := NewEditor(nil, testHistory())

	start, err := e.Flow().StartNode()
	require.NoError(t, err)
	assert.Error(t, e.DeleteNode(start.ID))
}

func TestEditor_DeleteNodeCascadesEdges(t *testing.T) {
	e := NewEditor(nil, testHistory())

	require.NoError(t, e.AddNode(messageNode("m1", "one")))
	require.NoError(t, e.AddNode(messageNode("m2", "two")))
	require.NoError(t, e.AddEdge(&flow.Edge{ID: "e1", Source: "start", Target: "m1"}))
	require.NoError(t, e.AddEdge(&flow.Edge{ID: "e2", Source: "m1", Target: "m2"}))

	require.NoError(t, e.DeleteNode("m1"))

	assert.Nil(t, e.Flow().NodeByID("m1"))
	assert.Empty(t, e.Flow().Edges, "edges touching the node go with it")
	assert.NotNil(t, e.Flow().NodeByID("m2"))
}

func TestEditor_UpdateNodeData(t *testing.T) {
	e := NewEditor(nil, testHistory())
	require.NoError(t, e.AddNode(messageNode("m1", "old")))

	t.Run("replaces payload", func(t *testing.T) {
		require.NoError(t, e.UpdateNodeData("m1", &flow.MessageData{Content: "new"}))
		assert.Equal(t, "new", e.Flow().NodeByID("m1").Data.(*flow.MessageData).Content)
	})
	t.Run("kind mismatch", func(t *testing.T) {
		err := e.UpdateNodeData("m1", &flow.QuestionData{Question: "?"})
		assert.ErrorIs(t, err, flow.ErrNodeDataMismatch)
	})
	t.Run("unknown node", func(t *testing.T) {
		err := e.UpdateNodeData("ghost", &flow.MessageData{Content: "x"})
		assert.ErrorIs(t, err, flow.ErrNodeNotFound)
	})
}

func TestEditor_MoveNode(t *testing.T) {
	e := NewEditor(nil, testHistory())
	require.NoError(t, e.AddNode(messageNode("m1", "x")))

	require.NoError(t, e.MoveNode("m1", flow.Position{X: 100, Y: 50}))
	assert.Equal(t, flow.Position{X: 100, Y: 50}, e.Flow().NodeByID("m1").Position)
}

func TestEditor_DeleteEdge(t *testing.T) {
	e := NewEditor(nil, testHistory())
	require.NoError(t, e.AddNode(messageNode("m1", "x")))
	require.NoError(t, e.AddEdge(&flow.Edge{ID: "e1", Source: "start", Target: "m1"}))

	require.NoError(t, e.DeleteEdge("e1"))
	assert.Empty(t, e.Flow().Edges)
	assert.Error(t, e.DeleteEdge("e1"))
}
