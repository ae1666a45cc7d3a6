package entities

import (
	"time"

	"github.com/google/uuid"

	"vaultgraph/domain/core/valueobjects"
)

// Edge kinds feed the edge uuid derivation. Structural ancestry and
// arbitrary user links are distinct identifier inputs.
const (
	EdgeKindContains = "contains"
	EdgeKindLink     = "link"
)

// Edge is a directed relationship between two node identities. Endpoints
// are uuids, never paths: a rename must not orphan the user's links.
type Edge struct {
	UUID        uuid.UUID
	DBID        int64
	Source      uuid.UUID
	Target      uuid.UUID
	Contains    bool
	Attributes  valueobjects.Attributes
	CreatedTime time.Time
}

// NewContainsEdge builds a structural parent→child edge. A contains edge is
// unique per ordered (source,target) pair; the store enforces that.
func NewContainsEdge(source, target uuid.UUID) *Edge {
	now := time.Now().UTC()
	return &Edge{
		UUID:        valueobjects.DeriveEdgeUUID(source, target, now, EdgeKindContains),
		Source:      source,
		Target:      target,
		Contains:    true,
		Attributes:  valueobjects.Attributes{},
		CreatedTime: now,
	}
}

// NewLinkEdge builds an arbitrary user link. Links are never auto-deleted
// by reconciliation.
func NewLinkEdge(source, target uuid.UUID, attrs valueobjects.Attributes) *Edge {
	now := time.Now().UTC()
	if attrs == nil {
		attrs = valueobjects.Attributes{}
	}
	return &Edge{
		UUID:        valueobjects.DeriveEdgeUUID(source, target, now, EdgeKindLink),
		Source:      source,
		Target:      target,
		Contains:    false,
		Attributes:  attrs,
		CreatedTime: now,
	}
}

// Kind returns the uuid-derivation kind for this edge.
func (e *Edge) Kind() string {
	if e.Contains {
		return EdgeKindContains
	}
	return EdgeKindLink
}

// Touches reports whether the edge has the given node as an endpoint.
func (e *Edge) Touches(id uuid.UUID) bool {
	return e.Source == id || e.Target == id
}

// Other returns the endpoint opposite to the given node. Falls back to the
// target when the node is not an endpoint at all.
func (e *Edge) Other(id uuid.UUID) uuid.UUID {
	if e.Source == id {
		return e.Target
	}
	if e.Target == id {
		return e.Source
	}
	return e.Target
}

// IsPersisted reports whether the storage engine has assigned a handle.
func (e *Edge) IsPersisted() bool {
	return e.DBID != 0
}

// Clone returns a deep copy.
func (e *Edge) Clone() *Edge {
	out := *e
	out.Attributes = e.Attributes.Clone()
	return &out
}

// EndpointKey identifies an edge by its ordered endpoints, the unit the
// reconciler dedupes on.
type EndpointKey struct {
	Source uuid.UUID
	Target uuid.UUID
}

// Endpoints returns the dedup key for this edge.
func (e *Edge) Endpoints() EndpointKey {
	return EndpointKey{Source: e.Source, Target: e.Target}
}
