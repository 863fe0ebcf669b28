package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowboard/domain/catalog"
	pkgerrors "flowboard/pkg/errors"
)

func TestGraph_AddNode_AssignsUniqueIDs(t *testing.T) {
	g := NewGraph(catalog.NewCatalog())

	a := g.AddNode(catalog.TypeCSVUpload, Position{X: 10, Y: 20})
	b := g.AddNode(catalog.TypeLLMProcessor, Position{X: 30, Y: 40})

	assert.Equal(t, "1", a.ID)
	assert.Equal(t, "2", b.ID)
	assert.Equal(t, "CSV Upload", a.Label)
	assert.Equal(t, StatusIdle, a.Status)
	assert.False(t, a.Configured)
}

func TestGraph_AddNode_NeverReusesIDsAfterRemoval(t *testing.T) {
	g := NewGraph(catalog.NewCatalog())

	a := g.AddNode(catalog.TypeCSVUpload, Position{})
	require.NoError(t, g.RemoveNode(a.ID))

	b := g.AddNode(catalog.TypeCSVUpload, Position{})
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "2", b.ID)
}

func TestGraph_AddNode_UnknownTypeGetsGenericLabel(t *testing.T) {
	g := NewGraph(catalog.NewCatalog())

	n := g.AddNode("mystery_agent", Position{})

	assert.Equal(t, "mystery_agent", n.Type)
	assert.Equal(t, "Agent", n.Label)
}

func TestGraph_Connect_RejectsMissingEndpoints(t *testing.T) {
	g := NewGraph(catalog.NewCatalog())
	a := g.AddNode(catalog.TypeCSVUpload, Position{})

	_, err := g.Connect(a.ID, "99")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsReferential(err))

	_, err = g.Connect("99", a.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsReferential(err))

	assert.Empty(t, g.Edges())
}

func TestGraph_Connect_AllowsDuplicatesAndCycles(t *testing.T) {
	g := NewGraph(catalog.NewCatalog())
	a := g.AddNode(catalog.TypeCSVUpload, Position{})
	b := g.AddNode(catalog.TypeLLMProcessor, Position{})

	_, err := g.Connect(a.ID, b.ID)
	require.NoError(t, err)
	_, err = g.Connect(a.ID, b.ID)
	require.NoError(t, err)
	_, err = g.Connect(b.ID, a.ID)
	require.NoError(t, err)

	assert.Len(t, g.Edges(), 3)
}

func TestGraph_SetNodeConfig_ReplacesWholesale(t *testing.T) {
	g := NewGraph(catalog.NewCatalog())
	n := g.AddNode(catalog.TypeLLMProcessor, Position{})

	g.SetNodeConfig(n.ID, Config{
		"task":       "attribute_extraction",
		"batch_size": 5,
		"start_row":  0,
		"end_row":    2,
	})

	cfg, ok := g.NodeConfig(n.ID)
	require.True(t, ok)
	assert.Equal(t, "attribute_extraction", cfg["task"])
	assert.Equal(t, 5, cfg["batch_size"])

	// A second save does not merge with the first
	g.SetNodeConfig(n.ID, Config{"task": "sales_faq"})

	cfg, ok = g.NodeConfig(n.ID)
	require.True(t, ok)
	assert.Equal(t, "sales_faq", cfg["task"])
	assert.NotContains(t, cfg, "batch_size")

	view, _ := g.Node(n.ID)
	assert.True(t, view.Configured)
}

func TestGraph_SetNodeConfig_UnknownNodeIsNoOp(t *testing.T) {
	g := NewGraph(catalog.NewCatalog())

	g.SetNodeConfig("42", Config{"task": "data_qa"})

	_, ok := g.NodeConfig("42")
	assert.False(t, ok)
}

func TestGraph_NodeConfig_ReturnsIndependentCopy(t *testing.T) {
	g := NewGraph(catalog.NewCatalog())
	n := g.AddNode(catalog.TypeLLMProcessor, Position{})
	g.SetNodeConfig(n.ID, Config{"task": "data_qa"})

	cfg, _ := g.NodeConfig(n.ID)
	cfg["task"] = "mutated"

	again, _ := g.NodeConfig(n.ID)
	assert.Equal(t, "data_qa", again["task"])
}

func TestGraph_SetNodeStatus_UpdatesAnyNode(t *testing.T) {
	g := NewGraph(catalog.NewCatalog())
	n := g.AddNode(catalog.TypeLLMProcessor, Position{})

	g.SetNodeStatus(n.ID, StatusRunning)
	view, _ := g.Node(n.ID)
	assert.Equal(t, StatusRunning, view.Status)

	// Unknown id never panics
	g.SetNodeStatus("99", StatusCompleted)
}

func TestGraph_RemoveNode_CascadesEdges(t *testing.T) {
	g := NewDefaultGraph(catalog.NewCatalog())
	require.Len(t, g.Nodes(), 3)
	require.Len(t, g.Edges(), 2)

	// The processor sits in the middle, so both edges go with it
	err := g.RemoveNode("2")
	require.NoError(t, err)

	assert.Len(t, g.Nodes(), 2)
	assert.Empty(t, g.Edges())
}

func TestGraph_RemoveNode_UnknownNodeFails(t *testing.T) {
	g := NewGraph(catalog.NewCatalog())

	err := g.RemoveNode("1")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestGraph_RemoveEdge_RemovesOnlyThatEdge(t *testing.T) {
	g := NewDefaultGraph(catalog.NewCatalog())
	edges := g.Edges()
	require.Len(t, edges, 2)

	require.NoError(t, g.RemoveEdge(edges[0].ID))

	remaining := g.Edges()
	require.Len(t, remaining, 1)
	assert.Equal(t, edges[1].ID, remaining[0].ID)

	err := g.RemoveEdge(edges[0].ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestGraph_DefaultGraph_SeedsReferencePipeline(t *testing.T) {
	g := NewDefaultGraph(catalog.NewCatalog())

	nodes := g.Nodes()
	require.Len(t, nodes, 3)
	assert.Equal(t, catalog.TypeCSVUpload, nodes[0].Type)
	assert.Equal(t, catalog.TypeLLMProcessor, nodes[1].Type)
	assert.Equal(t, catalog.TypeOutputDownload, nodes[2].Type)
	assert.Equal(t, Position{X: 100, Y: 100}, nodes[0].Position)

	edges := g.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, nodes[0].ID, edges[0].SourceID)
	assert.Equal(t, nodes[1].ID, edges[0].TargetID)
	assert.Equal(t, nodes[1].ID, edges[1].SourceID)
	assert.Equal(t, nodes[2].ID, edges[1].TargetID)
}

func TestGraph_FindFirstByType_InsertionOrder(t *testing.T) {
	g := NewGraph(catalog.NewCatalog())
	first := g.AddNode(catalog.TypeLLMProcessor, Position{})
	g.AddNode(catalog.TypeLLMProcessor, Position{})

	found, ok := g.FindFirstByType(catalog.TypeLLMProcessor)
	require.True(t, ok)
	assert.Equal(t, first.ID, found.ID)

	_, ok = g.FindFirstByType(catalog.TypeDataAnalyzer)
	assert.False(t, ok)
}

func TestGraph_Downstream_FollowsFirstOutgoingEdge(t *testing.T) {
	g := NewDefaultGraph(catalog.NewCatalog())

	target, ok := g.Downstream("2")
	require.True(t, ok)
	assert.Equal(t, "3", target)

	_, ok = g.Downstream("3")
	assert.False(t, ok)
}
