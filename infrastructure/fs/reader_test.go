package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vaultgraph/domain/core/entities"
	"vaultgraph/domain/core/valueobjects"
	apperrors "vaultgraph/pkg/errors"
)

func makeVault(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "notes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes", "b.md"), []byte("# b"), 0o644))
	return dir
}

func TestReaderExistsAndIsDir(t *testing.T) {
	vault := makeVault(t)
	r := NewReader(vault, zap.NewNop())

	assert.True(t, r.Exists(filepath.Join(vault, "a.txt")))
	assert.False(t, r.Exists(filepath.Join(vault, "missing.txt")))
	assert.True(t, r.IsDir(filepath.Join(vault, "notes")))
	assert.False(t, r.IsDir(filepath.Join(vault, "a.txt")))
}

func TestListImmediateChildren(t *testing.T) {
	vault := makeVault(t)
	r := NewReader(vault, zap.NewNop())

	children, err := r.ListImmediateChildren(vault)
	require.NoError(t, err)
	require.Len(t, children, 2)

	byName := map[string]*entities.DataNode{}
	for _, c := range children {
		byName[c.Name()] = c
	}

	file := byName["a.txt"]
	require.NotNil(t, file)
	assert.Equal(t, entities.NodeTypeFile, file.NType)
	assert.Equal(t, "vault/a.txt", file.Path.String())
	assert.False(t, file.IsPersisted(), "filesystem nodes are transient")
	size, ok := file.Attributes["size"].AsNumber()
	require.True(t, ok)
	assert.Equal(t, 5.0, size)

	// Timestamps come from disk, not from attribute bookkeeping.
	info, err := os.Stat(filepath.Join(vault, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, info.ModTime().UTC(), file.ModifiedTime)
	assert.Equal(t, info.ModTime().UTC(), file.CreatedTime)

	dir := byName["notes"]
	require.NotNil(t, dir)
	assert.Equal(t, entities.NodeTypeDirectory, dir.NType)

	// Identity matches what the graph would derive for the same path.
	p, err := valueobjects.NewNodePath("vault/a.txt")
	require.NoError(t, err)
	assert.Equal(t, valueobjects.DeriveNodeUUID(p), file.UUID)
}

func TestListImmediateChildrenMissingDir(t *testing.T) {
	vault := makeVault(t)
	r := NewReader(vault, zap.NewNop())

	_, err := r.ListImmediateChildren(filepath.Join(vault, "absent"))
	assert.True(t, apperrors.IsNotFound(err))
}

func TestListImmediateChildrenOutsideVault(t *testing.T) {
	vault := makeVault(t)
	r := NewReader(vault, zap.NewNop())

	_, err := r.ListImmediateChildren(filepath.Dir(vault))
	assert.True(t, apperrors.IsValidation(err))
}
