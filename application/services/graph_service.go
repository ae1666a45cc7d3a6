package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vaultgraph/application/ports"
	"vaultgraph/domain/core/entities"
	"vaultgraph/domain/core/validators"
	"vaultgraph/domain/core/valueobjects"
	pkgerrors "vaultgraph/pkg/errors"
)

// GraphService provides idempotent node insertion with automatic
// ancestor-chain maintenance, plus user link creation.
type GraphService struct {
	store         ports.GraphStore
	nodeValidator *validators.NodeValidator
	edgeValidator *validators.EdgeValidator
	logger        *zap.Logger
}

// NewGraphService creates a new graph mutation service.
func NewGraphService(store ports.GraphStore, logger *zap.Logger) *GraphService {
	return &GraphService{
		store:         store,
		nodeValidator: validators.NewNodeValidator(),
		edgeValidator: validators.NewEdgeValidator(),
		logger:        logger,
	}
}

// InsertNodes upserts each node and, for nodes that did not previously
// exist, wires the structural ancestry: every missing ancestor directory is
// created and linked with a contains edge, bottoming out at an archetype
// that bootstrap guarantees to pre-exist. Re-inserting an existing uuid
// updates its record (last write wins) and never duplicates ancestry.
func (s *GraphService) InsertNodes(ctx context.Context, nodes []*entities.DataNode) ([]*entities.DataNode, error) {
	inserted := make([]*entities.DataNode, 0, len(nodes))

	for _, node := range nodes {
		if node == nil {
			continue
		}
		if err := s.nodeValidator.ValidateNode(node); err != nil {
			return nil, err
		}

		// Existence check must precede the upsert: ancestry is only
		// created for genuinely new nodes.
		existed := true
		if _, err := s.store.GetNode(ctx, ports.UUIDHandle(node.UUID)); err != nil {
			if !pkgerrors.IsNotFound(err) {
				return nil, err
			}
			existed = false
		}

		if err := s.store.UpsertNode(ctx, node); err != nil {
			return nil, err
		}
		inserted = append(inserted, node)

		if existed || !node.HasPath() {
			continue
		}

		parentPath, ok := node.Path.Parent()
		if !ok || parentPath.IsRoot() {
			// Root→archetype edges belong to bootstrap, not to insertion.
			continue
		}

		parent, err := s.ensureAncestorChain(ctx, parentPath)
		if err != nil {
			return nil, err
		}
		if err := s.insertContainsEdge(ctx, parent.UUID, node.UUID); err != nil {
			return nil, err
		}

		s.logger.Debug("inserted node with ancestry",
			zap.String("uuid", node.UUID.String()),
			zap.String("path", node.Path.String()),
			zap.String("parent", parent.UUID.String()),
		)
	}

	return inserted, nil
}

// InsertLink creates an arbitrary user edge between two existing nodes.
// Links are additive: multiple links between the same endpoints are
// allowed, and reconciliation never deletes them.
func (s *GraphService) InsertLink(ctx context.Context, source, target uuid.UUID, attrs valueobjects.Attributes) (*entities.Edge, error) {
	if err := s.edgeValidator.ValidateLink(source, target); err != nil {
		return nil, err
	}
	for _, id := range []uuid.UUID{source, target} {
		if _, err := s.store.GetNode(ctx, ports.UUIDHandle(id)); err != nil {
			return nil, err
		}
	}

	edge := entities.NewLinkEdge(source, target, attrs)
	if err := s.store.InsertEdge(ctx, edge); err != nil {
		return nil, err
	}

	s.logger.Debug("inserted link edge",
		zap.String("source", source.String()),
		zap.String("target", target.String()),
	)
	return edge, nil
}

// ensureAncestorChain resolves the node at the given path, creating it and
// any missing ancestors (directory-typed) with contains edges. Implemented
// as an explicit worklist over ancestor paths: the loop invariant is that
// every path above the current one is already collected or resolved, and
// termination is guaranteed because ancestor chains are finite and bottom
// out at an archetype that bootstrap created.
func (s *GraphService) ensureAncestorChain(ctx context.Context, p valueobjects.NodePath) (*entities.DataNode, error) {
	var missing []valueobjects.NodePath
	var anchor *entities.DataNode

	cur := p
	for {
		node, err := s.store.GetNode(ctx, ports.PathHandle(cur))
		if err == nil {
			anchor = node
			break
		}
		if !pkgerrors.IsNotFound(err) {
			return nil, err
		}
		if cur.IsArchetype() {
			// Bootstrap must have persisted every archetype; a miss here
			// means the store is broken, not that the path is new.
			return nil, pkgerrors.NewInconsistentGraphError(
				"archetype missing from graph: " + cur.String())
		}

		missing = append(missing, cur)
		parent, ok := cur.Parent()
		if !ok {
			return nil, pkgerrors.NewInconsistentGraphError(
				"ancestor chain escaped the root: " + p.String())
		}
		cur = parent
	}

	// Create the missing ancestors top-down so each contains edge points
	// from an already-persisted parent.
	for i := len(missing) - 1; i >= 0; i-- {
		dir := entities.NewNodeFromPath(missing[i], entities.NodeTypeDirectory)
		if err := s.store.UpsertNode(ctx, dir); err != nil {
			return nil, err
		}
		if err := s.insertContainsEdge(ctx, anchor.UUID, dir.UUID); err != nil {
			return nil, err
		}
		anchor = dir
	}

	return anchor, nil
}

// insertContainsEdge creates one structural edge, treating a uniqueness
// conflict as success: a concurrent writer creating the same ancestry is
// not an error.
func (s *GraphService) insertContainsEdge(ctx context.Context, parent, child uuid.UUID) error {
	err := s.store.InsertEdge(ctx, entities.NewContainsEdge(parent, child))
	if err != nil && !pkgerrors.IsConflict(err) {
		return err
	}
	return nil
}
