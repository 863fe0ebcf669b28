package workflow

import (
	"strconv"
	"sync"

	"github.com/google/uuid"

	"flowboard/domain/catalog"
	pkgerrors "flowboard/pkg/errors"
)

// Graph is the aggregate owning the node and edge collections.
// It ensures id uniqueness and edge referential integrity; it does not
// validate acyclicity or role compatibility, both are advisory only.
//
// All operations are safe for concurrent use: user-driven mutations and
// asynchronous status propagation may touch the same node in the same
// tick, and each read-modify-write is applied atomically under the lock.
type Graph struct {
	mu      sync.RWMutex
	catalog *catalog.Catalog

	nodes     map[string]*Node
	nodeOrder []string
	edges     map[string]*Edge
	edgeOrder []string

	// next numeric id, strictly increasing, never reused
	nextID int
}

// NewGraph creates an empty graph
func NewGraph(cat *catalog.Catalog) *Graph {
	return &Graph{
		catalog: cat,
		nodes:   make(map[string]*Node),
		edges:   make(map[string]*Edge),
		nextID:  1,
	}
}

// NewDefaultGraph creates a graph seeded with the reference pipeline:
// an upload source, an LLM processor and a download sink, wired in a row.
func NewDefaultGraph(cat *catalog.Catalog) *Graph {
	g := NewGraph(cat)

	src := g.AddNode(catalog.TypeCSVUpload, Position{X: 100, Y: 100})
	proc := g.AddNode(catalog.TypeLLMProcessor, Position{X: 400, Y: 100})
	sink := g.AddNode(catalog.TypeOutputDownload, Position{X: 700, Y: 100})

	// Seed edges cannot fail referentially
	g.Connect(src.ID, proc.ID)
	g.Connect(proc.ID, sink.ID)

	return g
}

// AddNode creates a node of the given type at the given position.
// The id is allocated from a strictly increasing counter and never
// reused, so every id issued over the graph's lifetime is unique.
func (g *Graph) AddNode(typeID string, pos Position) NodeView {
	g.mu.Lock()
	defer g.mu.Unlock()

	desc := g.catalog.Default(typeID)

	node := &Node{
		id:       strconv.Itoa(g.nextID),
		typeID:   typeID,
		label:    desc.Label,
		position: pos,
		config:   Config{},
		status:   StatusIdle,
	}
	g.nextID++

	g.nodes[node.id] = node
	g.nodeOrder = append(g.nodeOrder, node.id)

	return node.view()
}

// Connect creates a directed edge between two existing nodes.
// It fails with a referential error when either endpoint is absent;
// it does not reject duplicate edges, cycles or role mismatches.
func (g *Graph) Connect(sourceID, targetID string) (Edge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[sourceID]; !ok {
		return Edge{}, pkgerrors.NewReferentialError(sourceID)
	}
	if _, ok := g.nodes[targetID]; !ok {
		return Edge{}, pkgerrors.NewReferentialError(targetID)
	}

	edge := &Edge{
		ID:       uuid.New().String(),
		SourceID: sourceID,
		TargetID: targetID,
	}
	g.edges[edge.ID] = edge
	g.edgeOrder = append(g.edgeOrder, edge.ID)

	return *edge, nil
}

// SetNodeConfig replaces the node's configuration wholesale and marks
// the node configured. Unknown ids are a silent no-op to tolerate stale
// UI state.
func (g *Graph) SetNodeConfig(nodeID string, cfg Config) {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, ok := g.nodes[nodeID]
	if !ok {
		return
	}

	node.config = cfg.Copy()
	node.configured = true
}

// NodeConfig returns a copy of the node's configuration
func (g *Graph) NodeConfig(nodeID string) (Config, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, ok := g.nodes[nodeID]
	if !ok {
		return nil, false
	}
	return node.config.Copy(), true
}

// SetNodeStatus updates the node's status field. Any node may be set to
// any status at any time; unknown ids are a silent no-op.
func (g *Graph) SetNodeStatus(nodeID string, status NodeStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if node, ok := g.nodes[nodeID]; ok {
		node.status = status
	}
}

// Node returns a snapshot of a single node
func (g *Graph) Node(nodeID string) (NodeView, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, ok := g.nodes[nodeID]
	if !ok {
		return NodeView{}, false
	}
	return node.view(), true
}

// FindFirstByType returns the first node of the given type, in insertion
// order
func (g *Graph) FindFirstByType(typeID string) (NodeView, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, id := range g.nodeOrder {
		if node := g.nodes[id]; node != nil && node.typeID == typeID {
			return node.view(), true
		}
	}
	return NodeView{}, false
}

// Downstream returns the target of the first outgoing edge of a node,
// in edge insertion order
func (g *Graph) Downstream(nodeID string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, id := range g.edgeOrder {
		if edge := g.edges[id]; edge != nil && edge.SourceID == nodeID {
			return edge.TargetID, true
		}
	}
	return "", false
}

// RemoveNode removes a node and cascades removal of every edge touching
// it
func (g *Graph) RemoveNode(nodeID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[nodeID]; !ok {
		return pkgerrors.NewNotFoundError("node")
	}

	delete(g.nodes, nodeID)
	g.nodeOrder = removeString(g.nodeOrder, nodeID)

	for _, id := range append([]string(nil), g.edgeOrder...) {
		edge := g.edges[id]
		if edge != nil && (edge.SourceID == nodeID || edge.TargetID == nodeID) {
			delete(g.edges, id)
			g.edgeOrder = removeString(g.edgeOrder, id)
		}
	}

	return nil
}

// RemoveEdge removes a single edge
func (g *Graph) RemoveEdge(edgeID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.edges[edgeID]; !ok {
		return pkgerrors.NewNotFoundError("edge")
	}

	delete(g.edges, edgeID)
	g.edgeOrder = removeString(g.edgeOrder, edgeID)
	return nil
}

// Nodes returns snapshots of all nodes in insertion order
func (g *Graph) Nodes() []NodeView {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]NodeView, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		if node := g.nodes[id]; node != nil {
			out = append(out, node.view())
		}
	}
	return out
}

// Edges returns all edges in insertion order
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		if edge := g.edges[id]; edge != nil {
			out = append(out, *edge)
		}
	}
	return out
}

func removeString(s []string, v string) []string {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
