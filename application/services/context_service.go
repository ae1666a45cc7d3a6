package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vaultgraph/application/ports"
	"vaultgraph/domain/core/entities"
	"vaultgraph/domain/core/valueobjects"
	pkgerrors "vaultgraph/pkg/errors"
)

// ContextResult is the reconciled neighborhood around a focal node: the
// final node and edge sets plus the context (focal, parent, layout).
type ContextResult struct {
	Nodes   []*entities.DataNode
	Edges   []*entities.Edge
	Context *entities.Context
}

// focalCase tags the reconciliation branch chosen for a requested path.
type focalCase int

const (
	caseRoot focalCase = iota
	caseVirtual
	casePhysical
)

// ContextService is the reconciler: it merges persisted graph state, live
// filesystem state and any previously saved layout into one coherent
// context. The filesystem is the ephemeral structural truth, the graph the
// durable one; neither may silently hide data the other uniquely holds.
type ContextService struct {
	store    ports.GraphStore
	views    ports.ViewStore
	fsys     ports.FilesystemReader
	resolver *ConnectionResolver
	vaultDir string
	logger   *zap.Logger
}

// NewContextService creates the reconciler.
func NewContextService(
	store ports.GraphStore,
	views ports.ViewStore,
	fsys ports.FilesystemReader,
	resolver *ConnectionResolver,
	vaultDir string,
	logger *zap.Logger,
) *ContextService {
	return &ContextService{
		store:    store,
		views:    views,
		fsys:     fsys,
		resolver: resolver,
		vaultDir: vaultDir,
		logger:   logger,
	}
}

// OpenContextFromPath produces the reconciled context for a logical path.
// The branch (root / virtual / physical) is resolved once, each arm builds
// the working set independently, and a shared final merge applies the
// saved view, edge dedup and root exclusion.
func (s *ContextService) OpenContextFromPath(ctx context.Context, path valueobjects.NodePath) (*ContextResult, error) {
	ws := newWorkingSet()

	var focal *entities.DataNode
	var err error

	switch s.dispatch(path) {
	case caseRoot:
		focal, err = s.rootCase(ctx, ws)
	case casePhysical:
		focal, err = s.physicalCase(ctx, ws, path)
	default:
		focal, err = s.virtualCase(ctx, ws, path)
	}
	if err != nil {
		return nil, err
	}

	return s.finalMerge(ctx, ws, focal, path)
}

// SaveView persists the layout for a context so later opens can resurrect
// its references.
func (s *ContextService) SaveView(ctx context.Context, view *entities.Context) error {
	if view == nil || view.FocalUUID == uuid.Nil {
		return pkgerrors.NewValidationError("view must have a focal uuid")
	}
	return s.views.SaveView(ctx, view)
}

// dispatch picks the reconciliation branch. Physical means the path maps
// to something that exists on disk right now, whether or not the graph has
// seen it yet.
func (s *ContextService) dispatch(path valueobjects.NodePath) focalCase {
	if path.IsRoot() {
		return caseRoot
	}
	if abs, ok := path.AbsoluteIn(s.vaultDir); ok && s.fsys.Exists(abs) {
		return casePhysical
	}
	return caseVirtual
}

// rootCase gathers the fixed root node's direct neighborhood via the
// resolver. The root has no physical backing, so the filesystem is not
// consulted.
func (s *ContextService) rootCase(ctx context.Context, ws *workingSet) (*entities.DataNode, error) {
	conn, err := s.resolver.OpenNodeConnections(ctx, ports.UUIDHandle(valueobjects.RootUUID))
	if err != nil {
		return nil, err
	}
	if conn.Empty() {
		// Bootstrap guarantees the root record; its absence is corruption.
		return nil, pkgerrors.NewInconsistentGraphError("root archetype missing from graph")
	}

	ws.addNode(conn.Focal)
	for _, pair := range conn.Connections {
		ws.addNode(pair.Node)
	}
	for _, edge := range conn.Edges {
		ws.addEdge(edge)
	}
	return conn.Focal, nil
}

// virtualCase handles paths that resolve to a graph node with no live
// filesystem entry: ghost files and purely virtual nodes. The node's own
// outgoing edges are trusted; the filesystem has nothing to contribute.
func (s *ContextService) virtualCase(ctx context.Context, ws *workingSet, path valueobjects.NodePath) (*entities.DataNode, error) {
	focal, err := s.store.GetNode(ctx, ports.PathHandle(path))
	if err != nil {
		return nil, err
	}
	ws.addNode(focal)

	// Persisted outgoing edges first: durable truth wins the
	// (source,target) dedup against anything synthesized below.
	if err := s.mergeOutgoingEdges(ctx, ws, focal); err != nil {
		return nil, err
	}

	if parentPath, ok := path.Parent(); ok {
		parent, err := s.store.GetNode(ctx, ports.PathHandle(parentPath))
		if err == nil {
			ws.addNode(parent)
			if err := s.mergeParentEdge(ctx, ws, parent, focal); err != nil {
				return nil, err
			}
		} else if !pkgerrors.IsNotFound(err) {
			return nil, err
		}
	}

	return focal, nil
}

// physicalCase handles paths that exist on disk. The graph node is used
// when present; otherwise a transient node stands in for the file until
// something persists it. Directory listings contribute synthesized
// structural edges, then the focal node's persisted outgoing edges are
// merged so user links survive alongside the live listing.
func (s *ContextService) physicalCase(ctx context.Context, ws *workingSet, path valueobjects.NodePath) (*entities.DataNode, error) {
	abs, ok := path.AbsoluteIn(s.vaultDir)
	if !ok {
		return nil, pkgerrors.NewValidationError("path has no physical backing: " + path.String())
	}

	focal, err := s.store.GetNode(ctx, ports.PathHandle(path))
	if err != nil {
		if !pkgerrors.IsNotFound(err) {
			return nil, err
		}
		ntype := entities.NodeTypeFile
		if s.fsys.IsDir(abs) {
			ntype = entities.NodeTypeDirectory
		}
		focal = entities.NewNodeFromPath(path, ntype)
	}
	ws.addNode(focal)

	// Durable truth first (see virtualCase): the focal node's persisted
	// outgoing edges win the dedup against synthesized listing edges.
	if err := s.mergeOutgoingEdges(ctx, ws, focal); err != nil {
		return nil, err
	}

	if parentPath, ok := path.Parent(); ok {
		parent, err := s.store.GetNode(ctx, ports.PathHandle(parentPath))
		if err != nil {
			if !pkgerrors.IsNotFound(err) {
				return nil, err
			}
			parent = entities.NewNodeFromPath(parentPath, entities.NodeTypeDirectory)
		}
		ws.addNode(parent)
		if err := s.mergeParentEdge(ctx, ws, parent, focal); err != nil {
			return nil, err
		}
	}

	if s.fsys.IsDir(abs) {
		children, err := s.fsys.ListImmediateChildren(abs)
		if err != nil {
			return nil, err
		}
		childIDs := make([]uuid.UUID, 0, len(children))
		for _, child := range children {
			childIDs = append(childIDs, child.UUID)
		}

		// Persisted records take precedence over the freshly synthesized
		// transients with the same identity.
		persisted, err := s.store.GetNodesByUUID(ctx, childIDs)
		if err != nil {
			return nil, err
		}
		for _, node := range persisted {
			ws.addNode(node)
		}
		for _, child := range children {
			ws.addNode(child)
			ws.addEdge(entities.NewContainsEdge(focal.UUID, child.UUID))
		}
	}

	return focal, nil
}

// mergeParentEdge adds the structural parent→focal edge, preferring the
// persisted contains record for that pair over a synthesized transient.
func (s *ContextService) mergeParentEdge(ctx context.Context, ws *workingSet, parent, focal *entities.DataNode) error {
	if focal.IsPersisted() {
		incoming, err := s.store.IncomingEdges(ctx, focal.UUID)
		if err != nil {
			return err
		}
		for _, edge := range incoming {
			if edge.Contains && edge.Source == parent.UUID {
				ws.addEdge(edge)
				return nil
			}
		}
	}
	ws.addEdge(entities.NewContainsEdge(parent.UUID, focal.UUID))
	return nil
}

// mergeOutgoingEdges adds the focal node's persisted outgoing edges and
// their target nodes to the working set. Transient foci have nothing
// persisted and are skipped.
func (s *ContextService) mergeOutgoingEdges(ctx context.Context, ws *workingSet, focal *entities.DataNode) error {
	if !focal.IsPersisted() {
		return nil
	}
	edges, err := s.store.OutgoingEdges(ctx, focal.UUID)
	if err != nil {
		return err
	}
	targetIDs := make([]uuid.UUID, 0, len(edges))
	for _, edge := range edges {
		ws.addEdge(edge)
		targetIDs = append(targetIDs, edge.Target)
	}
	targets, err := s.store.GetNodesByUUID(ctx, targetIDs)
	if err != nil {
		return err
	}
	for _, node := range targets {
		ws.addNode(node)
	}
	return nil
}

// finalMerge applies the steps shared by all three cases: resurrect nodes
// the saved view references, drop the root unless it belongs in view, and
// assemble the returned context with parent resolution by path.
func (s *ContextService) finalMerge(ctx context.Context, ws *workingSet, focal *entities.DataNode, path valueobjects.NodePath) (*ContextResult, error) {
	var saved *entities.Context
	savedView, err := s.views.GetSavedView(ctx, focal.UUID)
	if err == nil {
		saved = savedView
	} else if !pkgerrors.IsNotFound(err) {
		return nil, err
	}

	// A saved view's off-filesystem references stay visible even when the
	// live scan would not surface them.
	if saved != nil {
		var missing []uuid.UUID
		for _, id := range saved.ReferencedUUIDs() {
			if !ws.hasNode(id) {
				missing = append(missing, id)
			}
		}
		resurrected, err := s.store.GetNodesByUUID(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, node := range resurrected {
			ws.addNode(node)
		}
	}

	// The root would visually clutter every unrelated context; it stays
	// only when the focal point is root or vault.
	if !path.IsRoot() && !path.IsVault() {
		ws.dropNode(valueobjects.RootUUID)
	}

	result := &ContextResult{
		Nodes:   ws.nodeSlice(),
		Edges:   ws.edgeSlice(),
		Context: entities.NewContext(focal.UUID),
	}

	// Carry saved placement through for nodes that still exist; new nodes
	// get zero-valued layout entries for the caller to place.
	savedLayout := map[uuid.UUID]entities.ViewNode{}
	if saved != nil {
		for _, vn := range saved.ViewNodes {
			savedLayout[vn.NodeUUID] = vn
		}
	}
	for _, node := range result.Nodes {
		if vn, ok := savedLayout[node.UUID]; ok {
			result.Context.AddViewNode(vn)
		} else {
			result.Context.AddViewNode(entities.ViewNode{NodeUUID: node.UUID})
		}
	}

	if parentPath, ok := path.Parent(); ok {
		for _, node := range result.Nodes {
			if node.HasPath() && node.Path.Equals(parentPath) {
				result.Context.SetParent(node.UUID)
				break
			}
		}
	}

	s.logger.Debug("opened context",
		zap.String("path", path.String()),
		zap.String("focal", focal.UUID.String()),
		zap.Int("nodes", len(result.Nodes)),
		zap.Int("edges", len(result.Edges)),
	)

	return result, nil
}

// workingSet accumulates the reconciler's node and edge sets with the
// documented precedence rules: persisted nodes replace transients with the
// same uuid, and edges dedupe by ordered (source,target) keeping the
// first-seen record.
type workingSet struct {
	nodes    map[uuid.UUID]*entities.DataNode
	order    []uuid.UUID
	edges    []*entities.Edge
	edgeSeen map[entities.EndpointKey]struct{}
}

func newWorkingSet() *workingSet {
	return &workingSet{
		nodes:    map[uuid.UUID]*entities.DataNode{},
		edgeSeen: map[entities.EndpointKey]struct{}{},
	}
}

func (w *workingSet) hasNode(id uuid.UUID) bool {
	_, ok := w.nodes[id]
	return ok
}

// addNode inserts a node, keeping the first-seen record unless the
// existing one is transient and the newcomer is persisted.
func (w *workingSet) addNode(node *entities.DataNode) {
	if node == nil {
		return
	}
	existing, ok := w.nodes[node.UUID]
	if !ok {
		w.nodes[node.UUID] = node
		w.order = append(w.order, node.UUID)
		return
	}
	if !existing.IsPersisted() && node.IsPersisted() {
		w.nodes[node.UUID] = node
	}
}

// addEdge inserts an edge unless one with the same ordered endpoints is
// already present.
func (w *workingSet) addEdge(edge *entities.Edge) {
	if edge == nil {
		return
	}
	key := edge.Endpoints()
	if _, ok := w.edgeSeen[key]; ok {
		return
	}
	w.edgeSeen[key] = struct{}{}
	w.edges = append(w.edges, edge)
}

// dropNode removes a node and every edge touching it.
func (w *workingSet) dropNode(id uuid.UUID) {
	if _, ok := w.nodes[id]; !ok {
		return
	}
	delete(w.nodes, id)
	for i, ordered := range w.order {
		if ordered == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	kept := w.edges[:0]
	for _, edge := range w.edges {
		if edge.Touches(id) {
			delete(w.edgeSeen, edge.Endpoints())
			continue
		}
		kept = append(kept, edge)
	}
	w.edges = kept
}

func (w *workingSet) nodeSlice() []*entities.DataNode {
	out := make([]*entities.DataNode, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.nodes[id])
	}
	return out
}

func (w *workingSet) edgeSlice() []*entities.Edge {
	out := make([]*entities.Edge, len(w.edges))
	copy(out, w.edges)
	return out
}
