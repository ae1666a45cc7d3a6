package validators

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultgraph/domain/core/entities"
	"vaultgraph/domain/core/valueobjects"
	apperrors "vaultgraph/pkg/errors"
)

func mustPath(t *testing.T, raw string) valueobjects.NodePath {
	t.Helper()
	p, err := valueobjects.NewNodePath(raw)
	require.NoError(t, err)
	return p
}

func TestValidateNode(t *testing.T) {
	v := NewNodeValidator()

	t.Run("valid file node", func(t *testing.T) {
		node := entities.NewNodeFromPath(mustPath(t, "vault/a.txt"), entities.NodeTypeFile)
		assert.NoError(t, v.ValidateNode(node))
	})

	t.Run("valid virtual node", func(t *testing.T) {
		node := entities.NewVirtualNode(entities.NodeTypeVirtual)
		assert.NoError(t, v.ValidateNode(node))
	})

	t.Run("user-defined virtual kind accepted", func(t *testing.T) {
		node := entities.NewVirtualNode("note")
		assert.NoError(t, v.ValidateNode(node))
	})

	t.Run("pathed user-defined kind rejected", func(t *testing.T) {
		node := entities.NewNodeFromPath(mustPath(t, "vault/a"), entities.NodeTypeFile)
		node.NType = "note"
		assert.True(t, apperrors.IsValidation(v.ValidateNode(node)))
	})

	t.Run("blank node type rejected", func(t *testing.T) {
		node := &entities.DataNode{UUID: uuid.New(), NType: "  "}
		assert.True(t, apperrors.IsValidation(v.ValidateNode(node)))
	})

	t.Run("nil node rejected", func(t *testing.T) {
		err := v.ValidateNode(nil)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("pathless file rejected", func(t *testing.T) {
		node := &entities.DataNode{UUID: uuid.New(), NType: entities.NodeTypeFile}
		assert.True(t, apperrors.IsValidation(v.ValidateNode(node)))
	})

	t.Run("pathed virtual rejected", func(t *testing.T) {
		node := entities.NewNodeFromPath(mustPath(t, "vault/a"), entities.NodeTypeFile)
		node.NType = entities.NodeTypeVirtual
		assert.True(t, apperrors.IsValidation(v.ValidateNode(node)))
	})

	t.Run("root node rejected", func(t *testing.T) {
		assert.True(t, apperrors.IsValidation(v.ValidateNode(entities.RootNode())))
	})

	t.Run("empty attribute key rejected", func(t *testing.T) {
		node := entities.NewNodeFromPath(mustPath(t, "vault/a"), entities.NodeTypeFile)
		node.Attributes[" "] = valueobjects.BoolAttr(true)
		assert.True(t, apperrors.IsValidation(v.ValidateNode(node)))
	})
}

func TestValidateLink(t *testing.T) {
	v := NewEdgeValidator()

	a, b := uuid.New(), uuid.New()
	assert.NoError(t, v.ValidateLink(a, b))
	assert.True(t, apperrors.IsValidation(v.ValidateLink(a, a)))
	assert.True(t, apperrors.IsValidation(v.ValidateLink(uuid.Nil, b)))
}
