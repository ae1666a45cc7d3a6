package entities

import (
	"time"

	"github.com/google/uuid"

	"vaultgraph/domain/core/valueobjects"
)

// NodeType is the typed tag describing what a node stands for.
type NodeType string

const (
	NodeTypeRoot      NodeType = "root"
	NodeTypeArchetype NodeType = "archetype"
	NodeTypeDirectory NodeType = "directory"
	NodeTypeFile      NodeType = "file"
	NodeTypeVirtual   NodeType = "virtual"
)

// Well-known attribute keys.
const (
	AttrName = "name"
)

// DataNode represents a file, directory, or purely virtual entity in the
// metadata graph. Identity lives in UUID, which is derived deterministically
// from the logical path; DBID is the storage engine's handle and is zero for
// transient nodes that have not been persisted yet.
type DataNode struct {
	UUID         uuid.UUID
	DBID         int64
	Path         valueobjects.NodePath
	NType        NodeType
	Attributes   valueobjects.Attributes
	CreatedTime  time.Time
	ModifiedTime time.Time
}

// NewNodeFromPath builds a node whose identity is derived from its logical
// path. Virtual user-defined types pass their own tag; filesystem nodes use
// NodeTypeFile/NodeTypeDirectory.
func NewNodeFromPath(p valueobjects.NodePath, ntype NodeType) *DataNode {
	now := time.Now().UTC()
	node := &DataNode{
		UUID:         valueobjects.DeriveNodeUUID(p),
		Path:         p,
		NType:        ntype,
		Attributes:   valueobjects.Attributes{},
		CreatedTime:  now,
		ModifiedTime: now,
	}
	node.Attributes[AttrName] = valueobjects.StringAttr(p.Name())
	return node
}

// NewVirtualNode builds a pathless node. Its identity cannot be re-derived
// from anything, so callers must hold on to the uuid.
func NewVirtualNode(ntype NodeType) *DataNode {
	now := time.Now().UTC()
	return &DataNode{
		UUID:         uuid.New(),
		NType:        ntype,
		Attributes:   valueobjects.Attributes{},
		CreatedTime:  now,
		ModifiedTime: now,
	}
}

// RootNode returns the synthetic root archetype with its reserved identity.
func RootNode() *DataNode {
	now := time.Now().UTC()
	return &DataNode{
		UUID:         valueobjects.RootUUID,
		Path:         valueobjects.RootPath(),
		NType:        NodeTypeRoot,
		Attributes:   valueobjects.Attributes{AttrName: valueobjects.StringAttr(valueobjects.PathRoot)},
		CreatedTime:  now,
		ModifiedTime: now,
	}
}

// IsPersisted reports whether the storage engine has assigned a handle.
func (n *DataNode) IsPersisted() bool {
	return n.DBID != 0
}

// HasPath reports whether the node is addressable by a logical path.
func (n *DataNode) HasPath() bool {
	return !n.Path.IsZero()
}

// IsDirectory reports whether the node stands for a physical directory
// (the vault archetype included).
func (n *DataNode) IsDirectory() bool {
	return n.NType == NodeTypeDirectory
}

// Name returns the display name: the name attribute if set, else the final
// path segment.
func (n *DataNode) Name() string {
	if v, ok := n.Attributes[AttrName]; ok {
		if s, ok := v.AsString(); ok {
			return s
		}
	}
	if n.HasPath() {
		return n.Path.Name()
	}
	return ""
}

// SetAttribute sets one attribute and bumps the modified time.
func (n *DataNode) SetAttribute(key string, value valueobjects.AttrValue) {
	if n.Attributes == nil {
		n.Attributes = valueobjects.Attributes{}
	}
	n.Attributes[key] = value
	n.ModifiedTime = time.Now().UTC()
}

// MergeAttributes overlays the given bag onto the node's attributes,
// keeping existing keys that the overlay does not mention.
func (n *DataNode) MergeAttributes(attrs valueobjects.Attributes) {
	if len(attrs) == 0 {
		return
	}
	if n.Attributes == nil {
		n.Attributes = valueobjects.Attributes{}
	}
	for k, v := range attrs {
		n.Attributes[k] = v
	}
	n.ModifiedTime = time.Now().UTC()
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (n *DataNode) Clone() *DataNode {
	out := *n
	out.Attributes = n.Attributes.Clone()
	return &out
}
