package entities

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultgraph/domain/core/valueobjects"
)

func TestNewNodeFromPath(t *testing.T) {
	p, err := valueobjects.NewNodePath("vault/notes/a.txt")
	require.NoError(t, err)

	node := NewNodeFromPath(p, NodeTypeFile)
	assert.Equal(t, valueobjects.DeriveNodeUUID(p), node.UUID)
	assert.Equal(t, "a.txt", node.Name())
	assert.True(t, node.HasPath())
	assert.False(t, node.IsPersisted(), "fresh nodes have no engine id")
}

func TestNewVirtualNode(t *testing.T) {
	a := NewVirtualNode(NodeTypeVirtual)
	b := NewVirtualNode(NodeTypeVirtual)
	assert.NotEqual(t, a.UUID, b.UUID, "virtual nodes get random identity")
	assert.False(t, a.HasPath())
}

func TestRootNode(t *testing.T) {
	root := RootNode()
	assert.Equal(t, valueobjects.RootUUID, root.UUID)
	assert.Equal(t, NodeTypeRoot, root.NType)
	assert.True(t, root.Path.IsRoot())
}

func TestMergeAttributes(t *testing.T) {
	p, err := valueobjects.NewNodePath("vault/a")
	require.NoError(t, err)
	node := NewNodeFromPath(p, NodeTypeFile)

	node.MergeAttributes(valueobjects.Attributes{
		"size": valueobjects.NumberAttr(7),
	})
	size, ok := node.Attributes["size"].AsNumber()
	require.True(t, ok)
	assert.Equal(t, 7.0, size)
	// The derived name attribute survives the merge.
	assert.Equal(t, "a", node.Name())
}

func TestEdgeConstructors(t *testing.T) {
	source, target := uuid.New(), uuid.New()

	contains := NewContainsEdge(source, target)
	assert.True(t, contains.Contains)
	assert.Equal(t, EdgeKindContains, contains.Kind())

	link := NewLinkEdge(source, target, nil)
	assert.False(t, link.Contains)
	assert.Equal(t, EdgeKindLink, link.Kind())
	assert.NotEqual(t, contains.UUID, link.UUID)

	assert.True(t, link.Touches(source))
	assert.Equal(t, target, link.Other(source))
	assert.Equal(t, source, link.Other(target))
}

func TestContextViewNodes(t *testing.T) {
	focal := uuid.New()
	ctx := NewContext(focal)

	n1, n2 := uuid.New(), uuid.New()
	ctx.AddViewNode(ViewNode{NodeUUID: n1, RelativeX: 1})
	ctx.AddViewNode(ViewNode{NodeUUID: n2, RelativeY: 2})
	ctx.AddViewNode(ViewNode{NodeUUID: n1, RelativeX: 9})

	assert.Len(t, ctx.ViewNodes, 2, "duplicate view nodes are ignored")
	assert.True(t, ctx.Has(n1))
	assert.ElementsMatch(t, []uuid.UUID{n1, n2}, ctx.ReferencedUUIDs())
}
