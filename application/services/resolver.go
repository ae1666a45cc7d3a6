package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vaultgraph/application/ports"
	"vaultgraph/domain/core/entities"
	pkgerrors "vaultgraph/pkg/errors"
)

// connectionRadius bounds neighborhood traversal. Two hops keeps
// grandparent-level structural context (vault → directory → file) in a
// single resolver call without pulling in the whole graph.
const connectionRadius = 2

// NodeConnection pairs a neighborhood node with an edge that directly
// connects it to the focal node. Edge is nil for nodes only reachable at
// distance two.
type NodeConnection struct {
	Node *entities.DataNode
	Edge *entities.Edge
}

// ConnectionSet is the resolver result: the focal node (nil when it is not
// in the graph), its paired neighbors, and every edge the bounded searches
// touched.
type ConnectionSet struct {
	Focal       *entities.DataNode
	Connections []NodeConnection
	Edges       []*entities.Edge
}

// Empty reports whether the resolver found nothing.
func (c *ConnectionSet) Empty() bool {
	return c.Focal == nil
}

// ConnectionResolver answers bounded-radius neighborhood queries against
// the graph store.
type ConnectionResolver struct {
	store  ports.GraphStore
	logger *zap.Logger
}

// NewConnectionResolver creates a resolver over the given store.
func NewConnectionResolver(store ports.GraphStore, logger *zap.Logger) *ConnectionResolver {
	return &ConnectionResolver{store: store, logger: logger}
}

// OpenNodeConnections resolves the focal node by path or uuid and returns
// everything within the traversal radius. A focal node missing from the
// graph yields an empty set, not an error: neighborhoods of nodes not yet
// persisted are legitimately empty.
func (r *ConnectionResolver) OpenNodeConnections(ctx context.Context, handle ports.NodeHandle) (*ConnectionSet, error) {
	focal, err := r.store.GetNode(ctx, handle)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return &ConnectionSet{Connections: []NodeConnection{}, Edges: []*entities.Edge{}}, nil
		}
		return nil, err
	}

	// Union of both bounded searches: nodes reachable in either direction
	// must not be double-counted.
	idSet := make(map[int64]struct{})
	for _, dir := range []ports.TraverseDirection{ports.TraverseOutgoing, ports.TraverseIncoming} {
		ids, err := r.store.SearchFrom(ctx, focal.UUID, dir, connectionRadius)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			idSet[id] = struct{}{}
		}
	}

	ids := make([]int64, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	nodes, edges, err := r.store.GetRecordsByDBID(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Index the edges incident to the focal node by their far endpoint so
	// each neighbor can be paired with a direct connection. Either
	// direction qualifies; the first edge encountered wins.
	direct := make(map[uuid.UUID]*entities.Edge)
	for _, edge := range edges {
		if !edge.Touches(focal.UUID) {
			continue
		}
		other := edge.Other(focal.UUID)
		if _, ok := direct[other]; !ok {
			direct[other] = edge
		}
	}

	connections := make([]NodeConnection, 0, len(nodes))
	for _, node := range nodes {
		if node.UUID == focal.UUID {
			continue
		}
		connections = append(connections, NodeConnection{
			Node: node,
			Edge: direct[node.UUID],
		})
	}

	r.logger.Debug("resolved node connections",
		zap.String("focal", focal.UUID.String()),
		zap.Int("nodes", len(connections)),
		zap.Int("edges", len(edges)),
	)

	return &ConnectionSet{Focal: focal, Connections: connections, Edges: edges}, nil
}
