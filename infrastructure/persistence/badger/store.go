// Package badger implements the graph store over BadgerDB, an embedded
// transactional key/value engine. Nodes and edges are JSON records behind
// uuid aliases, with secondary index entries for path, type tag, adjacency
// and engine id. Engine ids follow a signed convention: node ids are
// positive, edge ids are negative, so a mixed id set partitions by sign.
package badger

import (
	"context"
	"errors"
	"sync"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"vaultgraph/application/ports"
	"vaultgraph/domain/core/entities"
	"vaultgraph/domain/core/valueobjects"
	pkgerrors "vaultgraph/pkg/errors"
)

// Config holds configuration for the graph store.
type Config struct {
	// Path is the directory for the database files. Required unless
	// InMemory is set.
	Path string

	// InMemory runs the engine without disk persistence. Test use only.
	InMemory bool

	// SyncWrites forces fsync on every commit.
	SyncWrites bool
}

// sequenceBandwidth is how many engine ids a sequence leases per fetch.
const sequenceBandwidth = 128

// Store implements ports.GraphStore on BadgerDB.
type Store struct {
	db      *badgerdb.DB
	logger  *zap.Logger
	nodeSeq *badgerdb.Sequence
	edgeSeq *badgerdb.Sequence

	// writeMu serializes read-write transactions. Badger would detect
	// conflicts on its own, but the write surface here is small and
	// callers expect upserts to be last-write-wins, not retried.
	writeMu sync.Mutex
}

var _ ports.GraphStore = (*Store)(nil)

// badgerLogger adapts zap to badger's internal logger interface.
type badgerLogger struct {
	logger *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{})   { l.logger.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.logger.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{})    { l.logger.Debugf(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{})   { l.logger.Debugf(format, args...) }

// Open opens (or creates) the backing database and guarantees the archetype
// graph exists: on a fresh database one bootstrap transaction creates the
// root, vault and virtual archetypes plus the root's contains edges.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, pkgerrors.NewValidationError("store path is required for a persistent database")
	}

	var opts badgerdb.Options
	if cfg.InMemory {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badgerdb.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithLogger(&badgerLogger{logger: logger.Named("badger").Sugar()})

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, pkgerrors.NewStoreError("open", err)
	}

	nodeSeq, err := db.GetSequence([]byte("seq:node"), sequenceBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, pkgerrors.NewStoreError("open_node_sequence", err)
	}
	edgeSeq, err := db.GetSequence([]byte("seq:edge"), sequenceBandwidth)
	if err != nil {
		_ = nodeSeq.Release()
		_ = db.Close()
		return nil, pkgerrors.NewStoreError("open_edge_sequence", err)
	}

	store := &Store{
		db:      db,
		logger:  logger,
		nodeSeq: nodeSeq,
		edgeSeq: edgeSeq,
	}

	if err := store.bootstrap(); err != nil {
		_ = store.Close()
		return nil, err
	}

	return store, nil
}

// Close releases the id sequences and the database.
func (s *Store) Close() error {
	if s.nodeSeq != nil {
		_ = s.nodeSeq.Release()
	}
	if s.edgeSeq != nil {
		_ = s.edgeSeq.Release()
	}
	if err := s.db.Close(); err != nil {
		return pkgerrors.NewStoreError("close", err)
	}
	return nil
}

// bootstrap creates the archetype nodes and their structural edges exactly
// once. Gating is the persisted root record (the reserved uuid), not an
// in-process flag, so it holds across restarts. The whole bootstrap runs in
// a single read-write transaction: either all archetypes exist or none do.
func (s *Store) bootstrap() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	bootstrapped := false
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(nodeKey(valueobjects.RootUUID))
		if err == nil {
			bootstrapped = true
			return nil
		}
		if !errors.Is(err, badgerdb.ErrKeyNotFound) {
			return pkgerrors.NewStoreError("bootstrap_probe", err)
		}

		root := entities.RootNode()
		vault := entities.NewNodeFromPath(valueobjects.VaultPath(), entities.NodeTypeDirectory)
		virtual := entities.NewNodeFromPath(
			mustPath(valueobjects.PathVirtual), entities.NodeTypeArchetype)

		for _, node := range []*entities.DataNode{root, vault, virtual} {
			if err := s.writeNode(txn, node); err != nil {
				return err
			}
		}
		for _, target := range []uuid.UUID{vault.UUID, virtual.UUID} {
			if err := s.writeEdge(txn, entities.NewContainsEdge(root.UUID, target)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return wrapStore("bootstrap", err)
	}

	if bootstrapped {
		s.logger.Debug("graph store already bootstrapped")
	} else {
		s.logger.Info("graph store bootstrapped",
			zap.String("root_uuid", valueobjects.RootUUID.String()))
	}
	return nil
}

func mustPath(raw string) valueobjects.NodePath {
	p, err := valueobjects.NewNodePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// GetNode retrieves a node by path or uuid.
func (s *Store) GetNode(ctx context.Context, handle ports.NodeHandle) (*entities.DataNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.NewStoreError("get_node", err)
	}

	var node *entities.DataNode
	err := s.db.View(func(txn *badgerdb.Txn) error {
		var err error
		if handle.ByUUID() {
			node, err = s.readNode(txn, handle.UUID())
		} else {
			node, err = s.readNodeByPath(txn, handle.Path())
		}
		return err
	})
	if err != nil {
		return nil, wrapStore("get_node", err)
	}
	return node, nil
}

// GetNodesByUUID batch-fetches nodes in one read transaction. Unknown
// uuids are skipped.
func (s *Store) GetNodesByUUID(ctx context.Context, ids []uuid.UUID) ([]*entities.DataNode, error) {
	if len(ids) == 0 {
		return []*entities.DataNode{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.NewStoreError("get_nodes_by_uuid", err)
	}

	nodes := make([]*entities.DataNode, 0, len(ids))
	err := s.db.View(func(txn *badgerdb.Txn) error {
		for _, id := range ids {
			node, err := s.readNode(txn, id)
			if err != nil {
				if pkgerrors.IsNotFound(err) {
					continue
				}
				return err
			}
			nodes = append(nodes, node)
		}
		return nil
	})
	if err != nil {
		return nil, wrapStore("get_nodes_by_uuid", err)
	}
	return nodes, nil
}

// GetRecordsByDBID batch-fetches mixed engine ids and partitions the
// results by id-space sign: positive → nodes, negative → edges. Unknown
// ids are skipped.
func (s *Store) GetRecordsByDBID(ctx context.Context, ids []int64) ([]*entities.DataNode, []*entities.Edge, error) {
	if len(ids) == 0 {
		return []*entities.DataNode{}, []*entities.Edge{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, pkgerrors.NewStoreError("get_records_by_dbid", err)
	}

	nodes := []*entities.DataNode{}
	edges := []*entities.Edge{}
	err := s.db.View(func(txn *badgerdb.Txn) error {
		for _, id := range ids {
			switch {
			case id > 0:
				nodeUUID, err := s.readUUIDValue(txn, nodeIDKey(uint64(id)))
				if err != nil {
					if pkgerrors.IsNotFound(err) {
						continue
					}
					return err
				}
				node, err := s.readNode(txn, nodeUUID)
				if err != nil {
					if pkgerrors.IsNotFound(err) {
						continue
					}
					return err
				}
				nodes = append(nodes, node)
			case id < 0:
				edgeUUID, err := s.readUUIDValue(txn, edgeIDKey(uint64(-id)))
				if err != nil {
					if pkgerrors.IsNotFound(err) {
						continue
					}
					return err
				}
				edge, err := s.readEdge(txn, edgeUUID)
				if err != nil {
					if pkgerrors.IsNotFound(err) {
						continue
					}
					return err
				}
				edges = append(edges, edge)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, wrapStore("get_records_by_dbid", err)
	}
	return nodes, edges, nil
}

// UpsertNode inserts-or-replaces a node keyed by its uuid alias. An
// existing record keeps its engine id and creation time; everything else
// is replaced (last write wins). The node's DBID field is filled in.
func (s *Store) UpsertNode(ctx context.Context, node *entities.DataNode) error {
	if err := ctx.Err(); err != nil {
		return pkgerrors.NewStoreError("upsert_node", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return s.writeNode(txn, node)
	})
	return wrapStore("upsert_node", err)
}

// InsertEdge inserts one edge record with its adjacency index entries. A
// second contains edge for the same ordered (source,target) pair is a
// conflict. The edge's DBID field is filled in.
func (s *Store) InsertEdge(ctx context.Context, edge *entities.Edge) error {
	if err := ctx.Err(); err != nil {
		return pkgerrors.NewStoreError("insert_edge", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return s.writeEdge(txn, edge)
	})
	return wrapStore("insert_edge", err)
}

// SearchFrom walks adjacency indexes breadth-first from the start node,
// bounded by maxDepth hops, and returns the engine ids of every node and
// edge touched (start included). An unknown start yields an empty set.
func (s *Store) SearchFrom(ctx context.Context, start uuid.UUID, dir ports.TraverseDirection, maxDepth int) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.NewStoreError("search_from", err)
	}

	ids := []int64{}
	err := s.db.View(func(txn *badgerdb.Txn) error {
		startNode, err := s.readNode(txn, start)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				return nil
			}
			return err
		}

		visitedNodes := map[uuid.UUID]struct{}{start: {}}
		visitedEdges := map[uuid.UUID]struct{}{}
		ids = append(ids, startNode.DBID)

		frontier := []uuid.UUID{start}
		for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
			var next []uuid.UUID
			for _, cur := range frontier {
				edges, err := s.readAdjacentEdges(txn, cur, dir)
				if err != nil {
					return err
				}
				for _, edge := range edges {
					if _, seen := visitedEdges[edge.UUID]; !seen {
						visitedEdges[edge.UUID] = struct{}{}
						ids = append(ids, edge.DBID)
					}

					far := edge.Target
					if dir == ports.TraverseIncoming {
						far = edge.Source
					}
					if _, seen := visitedNodes[far]; seen {
						continue
					}
					visitedNodes[far] = struct{}{}

					farNode, err := s.readNode(txn, far)
					if err != nil {
						if pkgerrors.IsNotFound(err) {
							// Dangling adjacency entry; skip rather than fail
							// the whole traversal.
							continue
						}
						return err
					}
					ids = append(ids, farNode.DBID)
					next = append(next, far)
				}
			}
			frontier = next
		}
		return nil
	})
	if err != nil {
		return nil, wrapStore("search_from", err)
	}
	return ids, nil
}

// OutgoingEdges returns the edges whose source is the given node.
func (s *Store) OutgoingEdges(ctx context.Context, id uuid.UUID) ([]*entities.Edge, error) {
	return s.adjacentEdges(ctx, id, ports.TraverseOutgoing)
}

// IncomingEdges returns the edges whose target is the given node.
func (s *Store) IncomingEdges(ctx context.Context, id uuid.UUID) ([]*entities.Edge, error) {
	return s.adjacentEdges(ctx, id, ports.TraverseIncoming)
}

func (s *Store) adjacentEdges(ctx context.Context, id uuid.UUID, dir ports.TraverseDirection) ([]*entities.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.NewStoreError("adjacent_edges", err)
	}

	var edges []*entities.Edge
	err := s.db.View(func(txn *badgerdb.Txn) error {
		var err error
		edges, err = s.readAdjacentEdges(txn, id, dir)
		return err
	})
	if err != nil {
		return nil, wrapStore("adjacent_edges", err)
	}
	if edges == nil {
		edges = []*entities.Edge{}
	}
	return edges, nil
}

// --- transaction-level helpers ---

func (s *Store) readNode(txn *badgerdb.Txn, id uuid.UUID) (*entities.DataNode, error) {
	item, err := txn.Get(nodeKey(id))
	if err != nil {
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil, pkgerrors.NewUUIDNotFoundError(id.String())
		}
		return nil, pkgerrors.NewStoreError("read_node", err)
	}
	var node *entities.DataNode
	err = item.Value(func(val []byte) error {
		var derr error
		node, derr = decodeNode(val)
		return derr
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (s *Store) readNodeByPath(txn *badgerdb.Txn, p valueobjects.NodePath) (*entities.DataNode, error) {
	item, err := txn.Get(pathKey(p.String()))
	if err != nil {
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil, pkgerrors.NewPathNotFoundError(p.String())
		}
		return nil, pkgerrors.NewStoreError("read_path_alias", err)
	}
	var id uuid.UUID
	err = item.Value(func(val []byte) error {
		var perr error
		id, perr = uuid.ParseBytes(val)
		return perr
	})
	if err != nil {
		return nil, pkgerrors.NewStoreError("read_path_alias", err)
	}
	return s.readNode(txn, id)
}

func (s *Store) readEdge(txn *badgerdb.Txn, id uuid.UUID) (*entities.Edge, error) {
	item, err := txn.Get(edgeKey(id))
	if err != nil {
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil, pkgerrors.NewUUIDNotFoundError(id.String())
		}
		return nil, pkgerrors.NewStoreError("read_edge", err)
	}
	var edge *entities.Edge
	err = item.Value(func(val []byte) error {
		var derr error
		edge, derr = decodeEdge(val)
		return derr
	})
	if err != nil {
		return nil, err
	}
	return edge, nil
}

func (s *Store) readUUIDValue(txn *badgerdb.Txn, key []byte) (uuid.UUID, error) {
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return uuid.Nil, pkgerrors.NewUUIDNotFoundError(string(key))
		}
		return uuid.Nil, pkgerrors.NewStoreError("read_index", err)
	}
	var id uuid.UUID
	err = item.Value(func(val []byte) error {
		var perr error
		id, perr = uuid.ParseBytes(val)
		return perr
	})
	if err != nil {
		return uuid.Nil, pkgerrors.NewStoreError("read_index", err)
	}
	return id, nil
}

func (s *Store) readAdjacentEdges(txn *badgerdb.Txn, id uuid.UUID, dir ports.TraverseDirection) ([]*entities.Edge, error) {
	prefix := outgoingPrefix(id)
	if dir == ports.TraverseIncoming {
		prefix = incomingPrefix(id)
	}

	opts := badgerdb.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix

	var edgeIDs []uuid.UUID
	it := txn.NewIterator(opts)
	for it.Rewind(); it.Valid(); it.Next() {
		edgeID, err := edgeUUIDFromIndexKey(it.Item().KeyCopy(nil), prefix)
		if err != nil {
			it.Close()
			return nil, pkgerrors.NewStoreError("scan_adjacency", err)
		}
		edgeIDs = append(edgeIDs, edgeID)
	}
	it.Close()

	edges := make([]*entities.Edge, 0, len(edgeIDs))
	for _, edgeID := range edgeIDs {
		edge, err := s.readEdge(txn, edgeID)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

// writeNode performs the insert-or-replace inside txn, maintaining the
// path alias, type index and engine-id index. Existing records keep their
// engine id and creation time.
func (s *Store) writeNode(txn *badgerdb.Txn, node *entities.DataNode) error {
	existing, err := s.readNode(txn, node.UUID)
	if err != nil && !pkgerrors.IsNotFound(err) {
		return err
	}

	if existing != nil {
		node.DBID = existing.DBID
		node.CreatedTime = existing.CreatedTime

		// Clean up stale index entries before rewriting.
		if string(existing.NType) != string(node.NType) {
			if err := txn.Delete(typeKey(string(existing.NType), node.UUID)); err != nil {
				return pkgerrors.NewStoreError("delete_type_index", err)
			}
		}
		if existing.HasPath() && !existing.Path.Equals(node.Path) {
			if err := txn.Delete(pathKey(existing.Path.String())); err != nil {
				return pkgerrors.NewStoreError("delete_path_alias", err)
			}
		}
	} else {
		seq, err := s.nodeSeq.Next()
		if err != nil {
			return pkgerrors.NewStoreError("next_node_id", err)
		}
		node.DBID = int64(seq + 1) // node ids are positive, never zero
		if err := txn.Set(nodeIDKey(seq+1), []byte(node.UUID.String())); err != nil {
			return pkgerrors.NewStoreError("write_node_id_index", err)
		}
	}

	data, err := encodeNode(node)
	if err != nil {
		return err
	}
	if err := txn.Set(nodeKey(node.UUID), data); err != nil {
		return pkgerrors.NewStoreError("write_node", err)
	}
	if node.HasPath() {
		if err := txn.Set(pathKey(node.Path.String()), []byte(node.UUID.String())); err != nil {
			return pkgerrors.NewStoreError("write_path_alias", err)
		}
	}
	if err := txn.Set(typeKey(string(node.NType), node.UUID), nil); err != nil {
		return pkgerrors.NewStoreError("write_type_index", err)
	}
	return nil
}

// writeEdge inserts the edge record plus adjacency, engine-id and (for
// structural edges) uniqueness entries inside txn.
func (s *Store) writeEdge(txn *badgerdb.Txn, edge *entities.Edge) error {
	if edge.Contains {
		_, err := txn.Get(containsKey(edge.Source, edge.Target))
		if err == nil {
			return pkgerrors.NewConflictError("contains edge already exists for this (source,target) pair").
				WithDetails(map[string]interface{}{
					"source": edge.Source.String(),
					"target": edge.Target.String(),
				})
		}
		if !errors.Is(err, badgerdb.ErrKeyNotFound) {
			return pkgerrors.NewStoreError("probe_contains", err)
		}
	}

	seq, err := s.edgeSeq.Next()
	if err != nil {
		return pkgerrors.NewStoreError("next_edge_id", err)
	}
	edge.DBID = -int64(seq + 1) // edge ids are negative, never zero

	data, err := encodeEdge(edge)
	if err != nil {
		return err
	}
	if err := txn.Set(edgeKey(edge.UUID), data); err != nil {
		return pkgerrors.NewStoreError("write_edge", err)
	}
	if err := txn.Set(edgeIDKey(seq+1), []byte(edge.UUID.String())); err != nil {
		return pkgerrors.NewStoreError("write_edge_id_index", err)
	}
	if err := txn.Set(outgoingKey(edge.Source, edge.UUID), nil); err != nil {
		return pkgerrors.NewStoreError("write_outgoing_index", err)
	}
	if err := txn.Set(incomingKey(edge.Target, edge.UUID), nil); err != nil {
		return pkgerrors.NewStoreError("write_incoming_index", err)
	}
	if edge.Contains {
		if err := txn.Set(containsKey(edge.Source, edge.Target), []byte(edge.UUID.String())); err != nil {
			return pkgerrors.NewStoreError("write_contains_index", err)
		}
	}
	return nil
}

// wrapStore keeps typed errors intact and wraps anything else (badger
// internals included) as a store failure.
func wrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	if pkgerrors.GetAppError(err) != nil {
		return err
	}
	return pkgerrors.NewStoreError(op, err)
}
