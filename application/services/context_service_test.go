package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vaultgraph/application/ports"
	"vaultgraph/domain/core/entities"
	"vaultgraph/domain/core/valueobjects"
	"vaultgraph/infrastructure/fs"
	"vaultgraph/infrastructure/persistence/badger"
	apperrors "vaultgraph/pkg/errors"
)

type contextEnv struct {
	store    *badger.Store
	views    ports.ViewStore
	graph    *GraphService
	contexts *ContextService
	vaultDir string
}

// newContextEnv builds a reconciler over a real vault directory holding
// test_dir/A.txt, with test_dir persisted in the graph and A.txt only on
// disk.
func newContextEnv(t *testing.T) *contextEnv {
	t.Helper()

	vaultDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(vaultDir, "test_dir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(vaultDir, "test_dir", "A.txt"), []byte("a"), 0o644))

	store := newTestStore(t)
	views := badger.NewViewStore(store)
	logger := zap.NewNop()
	graph := NewGraphService(store, logger)
	resolver := NewConnectionResolver(store, logger)
	reader := fs.NewReader(vaultDir, logger)
	contexts := NewContextService(store, views, reader, resolver, vaultDir, logger)

	_, err := graph.InsertNodes(context.Background(), []*entities.DataNode{
		entities.NewNodeFromPath(testPath(t, "vault/test_dir"), entities.NodeTypeDirectory),
	})
	require.NoError(t, err)

	return &contextEnv{store: store, views: views, graph: graph, contexts: contexts, vaultDir: vaultDir}
}

func nodePaths(result *ContextResult) []string {
	out := make([]string, 0, len(result.Nodes))
	for _, node := range result.Nodes {
		if node.HasPath() {
			out = append(out, node.Path.String())
		}
	}
	return out
}

func edgePairs(t *testing.T, env *contextEnv, result *ContextResult) map[[2]string]bool {
	t.Helper()
	byUUID := map[uuid.UUID]string{}
	for _, node := range result.Nodes {
		if node.HasPath() {
			byUUID[node.UUID] = node.Path.String()
		}
	}
	pairs := map[[2]string]bool{}
	for _, edge := range result.Edges {
		pairs[[2]string{byUUID[edge.Source], byUUID[edge.Target]}] = true
	}
	return pairs
}

func TestOpenContextRoot(t *testing.T) {
	env := newContextEnv(t)

	result, err := env.contexts.OpenContextFromPath(context.Background(), valueobjects.RootPath())
	require.NoError(t, err)

	assert.Equal(t, valueobjects.RootUUID, result.Context.FocalUUID)
	assert.Nil(t, result.Context.ParentUUID, "root has no parent")
	paths := nodePaths(result)
	assert.Contains(t, paths, "root")
	assert.Contains(t, paths, "vault")
	assert.Contains(t, paths, "virtual")
}

func TestOpenContextVaultKeepsRoot(t *testing.T) {
	env := newContextEnv(t)

	result, err := env.contexts.OpenContextFromPath(context.Background(), valueobjects.VaultPath())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"root", "vault", "vault/test_dir"}, nodePaths(result))

	pairs := edgePairs(t, env, result)
	assert.True(t, pairs[[2]string{"root", "vault"}])
	assert.True(t, pairs[[2]string{"vault", "vault/test_dir"}])
	assert.Len(t, result.Edges, 2)
}

func TestOpenContextDirectoryMergesFilesystem(t *testing.T) {
	env := newContextEnv(t)

	result, err := env.contexts.OpenContextFromPath(context.Background(), testPath(t, "vault/test_dir"))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"vault", "vault/test_dir", "vault/test_dir/A.txt"}, nodePaths(result))

	pairs := edgePairs(t, env, result)
	assert.True(t, pairs[[2]string{"vault", "vault/test_dir"}])
	assert.True(t, pairs[[2]string{"vault/test_dir", "vault/test_dir/A.txt"}])
	assert.Len(t, result.Edges, 2)

	// A.txt was never persisted; it appears as a transient with the same
	// identity a later insertion would derive.
	var file *entities.DataNode
	for _, node := range result.Nodes {
		if node.HasPath() && node.Path.String() == "vault/test_dir/A.txt" {
			file = node
		}
	}
	require.NotNil(t, file)
	assert.False(t, file.IsPersisted())
	assert.Equal(t, valueobjects.DeriveNodeUUID(file.Path), file.UUID)

	// Parent resolution and root exclusion.
	vault, err := env.store.GetNode(context.Background(), ports.PathHandle(valueobjects.VaultPath()))
	require.NoError(t, err)
	require.NotNil(t, result.Context.ParentUUID)
	assert.Equal(t, vault.UUID, *result.Context.ParentUUID)
	assert.NotContains(t, nodePaths(result), "root")
}

func TestOpenContextPersistedChildWinsOverTransient(t *testing.T) {
	env := newContextEnv(t)
	ctx := context.Background()

	// Persist A.txt; the listing transient must not mask the record.
	inserted, err := env.graph.InsertNodes(ctx, []*entities.DataNode{
		entities.NewNodeFromPath(testPath(t, "vault/test_dir/A.txt"), entities.NodeTypeFile),
	})
	require.NoError(t, err)

	result, err := env.contexts.OpenContextFromPath(ctx, testPath(t, "vault/test_dir"))
	require.NoError(t, err)

	for _, node := range result.Nodes {
		if node.UUID == inserted[0].UUID {
			assert.True(t, node.IsPersisted(), "persisted record must replace the transient")
			return
		}
	}
	t.Fatal("persisted A.txt missing from context")
}

func TestOpenContextParentEdgeIsPersisted(t *testing.T) {
	env := newContextEnv(t)
	ctx := context.Background()

	findParentEdge := func(result *ContextResult) *entities.Edge {
		for _, edge := range result.Edges {
			if edge.Target == result.Context.FocalUUID && edge.Contains {
				return edge
			}
		}
		return nil
	}

	// test_dir was inserted through the graph, so its vault→test_dir edge
	// has a durable record; opening the context must surface that record,
	// not a fresh transient with a new uuid each time.
	first, err := env.contexts.OpenContextFromPath(ctx, testPath(t, "vault/test_dir"))
	require.NoError(t, err)
	second, err := env.contexts.OpenContextFromPath(ctx, testPath(t, "vault/test_dir"))
	require.NoError(t, err)

	firstEdge := findParentEdge(first)
	secondEdge := findParentEdge(second)
	require.NotNil(t, firstEdge)
	require.NotNil(t, secondEdge)
	assert.True(t, firstEdge.IsPersisted(), "persisted contains edge must win over a synthesized transient")
	assert.Equal(t, firstEdge.UUID, secondEdge.UUID, "repeated opens must return the same edge record")
}

func TestOpenContextGhostFile(t *testing.T) {
	env := newContextEnv(t)
	ctx := context.Background()

	// A node persisted in the graph with no filesystem entry behind it.
	_, err := env.graph.InsertNodes(ctx, []*entities.DataNode{
		entities.NewNodeFromPath(testPath(t, "vault/ghost.txt"), entities.NodeTypeFile),
	})
	require.NoError(t, err)

	result, err := env.contexts.OpenContextFromPath(ctx, testPath(t, "vault/ghost.txt"))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"vault", "vault/ghost.txt"}, nodePaths(result))
	pairs := edgePairs(t, env, result)
	assert.True(t, pairs[[2]string{"vault", "vault/ghost.txt"}])

	// The ghost's structural edge exists in the graph; the reconciler must
	// surface that record rather than synthesize a new one.
	for _, edge := range result.Edges {
		if edge.Contains && edge.Target == result.Context.FocalUUID {
			assert.True(t, edge.IsPersisted())
		}
	}
}

func TestOpenContextUnknownPath(t *testing.T) {
	env := newContextEnv(t)

	_, err := env.contexts.OpenContextFromPath(context.Background(), testPath(t, "vault/never-seen"))
	assert.True(t, apperrors.IsPathNotFound(err))
}

func TestOpenContextSavedViewResurrection(t *testing.T) {
	env := newContextEnv(t)
	ctx := context.Background()

	note := entities.NewVirtualNode(entities.NodeTypeVirtual)
	_, err := env.graph.InsertNodes(ctx, []*entities.DataNode{note})
	require.NoError(t, err)

	testDir, err := env.store.GetNode(ctx, ports.PathHandle(testPath(t, "vault/test_dir")))
	require.NoError(t, err)

	view := entities.NewContext(testDir.UUID)
	view.AddViewNode(entities.ViewNode{NodeUUID: testDir.UUID, RelativeX: 5, Pinned: true})
	view.AddViewNode(entities.ViewNode{NodeUUID: note.UUID, RelativeX: -3})
	require.NoError(t, env.contexts.SaveView(ctx, view))

	result, err := env.contexts.OpenContextFromPath(ctx, testPath(t, "vault/test_dir"))
	require.NoError(t, err)

	// The off-filesystem note is back in view.
	found := false
	for _, node := range result.Nodes {
		if node.UUID == note.UUID {
			found = true
		}
	}
	assert.True(t, found, "saved view reference must be resurrected")

	// Saved placement survives; nodes the view never saw get zero entries.
	placements := map[uuid.UUID]entities.ViewNode{}
	for _, vn := range result.Context.ViewNodes {
		placements[vn.NodeUUID] = vn
	}
	assert.Equal(t, 5.0, placements[testDir.UUID].RelativeX)
	assert.True(t, placements[testDir.UUID].Pinned)
	assert.Equal(t, -3.0, placements[note.UUID].RelativeX)
	for _, node := range result.Nodes {
		assert.Contains(t, placements, node.UUID)
	}
}

func TestSaveViewRequiresFocal(t *testing.T) {
	env := newContextEnv(t)

	err := env.contexts.SaveView(context.Background(), entities.NewContext(uuid.Nil))
	assert.True(t, apperrors.IsValidation(err))
}
