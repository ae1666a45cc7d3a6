package ports

import (
	"context"

	"github.com/google/uuid"

	"vaultgraph/domain/core/entities"
	"vaultgraph/domain/core/valueobjects"
)

// NodeHandle addresses a node by either logical path or uuid.
type NodeHandle struct {
	path valueobjects.NodePath
	id   uuid.UUID
	byID bool
}

// PathHandle addresses a node by logical path.
func PathHandle(p valueobjects.NodePath) NodeHandle {
	return NodeHandle{path: p}
}

// UUIDHandle addresses a node by its uuid alias.
func UUIDHandle(id uuid.UUID) NodeHandle {
	return NodeHandle{id: id, byID: true}
}

// ByUUID reports whether the handle addresses by uuid rather than path.
func (h NodeHandle) ByUUID() bool { return h.byID }

// Path returns the path component; meaningful only when !ByUUID().
func (h NodeHandle) Path() valueobjects.NodePath { return h.path }

// UUID returns the uuid component; meaningful only when ByUUID().
func (h NodeHandle) UUID() uuid.UUID { return h.id }

// String renders the handle for logs and error details.
func (h NodeHandle) String() string {
	if h.byID {
		return h.id.String()
	}
	return h.path.String()
}

// TraverseDirection selects which way SearchFrom walks edges.
type TraverseDirection int

const (
	// TraverseOutgoing follows edges source → target.
	TraverseOutgoing TraverseDirection = iota
	// TraverseIncoming follows edges target → source.
	TraverseIncoming
)

// GraphStore is the transactional wrapper over the backing node/edge engine.
// It owns schema bootstrap (archetype nodes and indexes) and raw CRUD by
// identifier or indexed attribute. Store-level failures surface as
// StoreFailure errors and are never retried internally.
type GraphStore interface {
	// GetNode retrieves a node by path or uuid. Misses return a typed
	// NotFound that distinguishes path-miss from uuid-miss.
	GetNode(ctx context.Context, handle NodeHandle) (*entities.DataNode, error)

	// GetNodesByUUID batch-fetches nodes. Empty input yields empty output
	// without touching the engine. Unknown uuids are skipped, not errors.
	GetNodesByUUID(ctx context.Context, ids []uuid.UUID) ([]*entities.DataNode, error)

	// GetRecordsByDBID batch-fetches by engine id and partitions the
	// results by id-space: positive ids are nodes, negative ids are edges.
	GetRecordsByDBID(ctx context.Context, ids []int64) ([]*entities.DataNode, []*entities.Edge, error)

	// UpsertNode inserts-or-replaces a node keyed by its uuid alias.
	// It never creates edges.
	UpsertNode(ctx context.Context, node *entities.DataNode) error

	// InsertEdge inserts one edge record with source/target indexed.
	// Structural (contains) edges are unique per ordered (source,target);
	// violating that returns a Conflict error.
	InsertEdge(ctx context.Context, edge *entities.Edge) error

	// SearchFrom walks edges from the start node in one direction for at
	// most maxDepth hops and returns the engine ids of every node and
	// edge touched, the start node included. An unknown start yields an
	// empty result.
	SearchFrom(ctx context.Context, start uuid.UUID, dir TraverseDirection, maxDepth int) ([]int64, error)

	// OutgoingEdges returns the edges whose source is the given node.
	OutgoingEdges(ctx context.Context, id uuid.UUID) ([]*entities.Edge, error)

	// IncomingEdges returns the edges whose target is the given node.
	IncomingEdges(ctx context.Context, id uuid.UUID) ([]*entities.Edge, error)

	// Close releases the backing engine.
	Close() error
}

// ViewStore persists saved contexts (layouts) keyed by focal uuid. The core
// consumes it to discover off-filesystem uuids to re-include when a context
// is reopened.
type ViewStore interface {
	// SaveView persists the layout for the context's focal uuid.
	SaveView(ctx context.Context, view *entities.Context) error

	// GetSavedView returns the saved layout for a focal uuid, or a typed
	// NotFound when none was ever saved.
	GetSavedView(ctx context.Context, focal uuid.UUID) (*entities.Context, error)
}

// FilesystemReader is the collaborator contract for live filesystem state.
// The core calls it only for existence checks and immediate-child
// enumeration in the physical reconciliation case.
type FilesystemReader interface {
	// Exists reports whether the absolute path is present on disk.
	Exists(absPath string) bool

	// IsDir reports whether the absolute path is a directory.
	IsDir(absPath string) bool

	// ListImmediateChildren enumerates the direct entries of a directory
	// as DataNode-shaped transient records (uuid derived from logical
	// path, file/directory ntype, mod times from disk).
	ListImmediateChildren(absPath string) ([]*entities.DataNode, error)
}
