package entities

import (
	"github.com/google/uuid"
)

// ViewNode carries the saved layout for one node within a context: where
// the user placed it relative to the focal node and how large it is drawn.
// The positional data is opaque to the core; only NodeUUID is interpreted,
// to resurrect off-filesystem references during reconciliation.
type ViewNode struct {
	NodeUUID  uuid.UUID `json:"uuid"`
	RelativeX float64   `json:"rel_x"`
	RelativeY float64   `json:"rel_y"`
	Width     float64   `json:"width,omitempty"`
	Height    float64   `json:"height,omitempty"`
	Pinned    bool      `json:"pinned,omitempty"`
}

// Context is the in-memory, non-persisted result of reconciliation: a focal
// node, its parent if one could be located, and the layout entries for the
// nodes in view. Persisting a view re-uses this shape keyed by FocalUUID.
type Context struct {
	FocalUUID  uuid.UUID  `json:"focal_uuid"`
	ParentUUID *uuid.UUID `json:"parent_uuid,omitempty"`
	ViewNodes  []ViewNode `json:"view_nodes"`
}

// NewContext builds an empty context for a focal node.
func NewContext(focal uuid.UUID) *Context {
	return &Context{FocalUUID: focal, ViewNodes: []ViewNode{}}
}

// SetParent records the focal node's parent.
func (c *Context) SetParent(parent uuid.UUID) {
	p := parent
	c.ParentUUID = &p
}

// Has reports whether the context already references the given node.
func (c *Context) Has(id uuid.UUID) bool {
	for _, vn := range c.ViewNodes {
		if vn.NodeUUID == id {
			return true
		}
	}
	return false
}

// AddViewNode appends a layout entry, ignoring duplicates by node uuid.
func (c *Context) AddViewNode(vn ViewNode) {
	if c.Has(vn.NodeUUID) {
		return
	}
	c.ViewNodes = append(c.ViewNodes, vn)
}

// ReferencedUUIDs returns the node uuids the saved layout mentions.
func (c *Context) ReferencedUUIDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(c.ViewNodes))
	for _, vn := range c.ViewNodes {
		out = append(out, vn.NodeUUID)
	}
	return out
}
