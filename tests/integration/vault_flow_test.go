package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vaultgraph/application/services"
	"vaultgraph/domain/core/entities"
	"vaultgraph/domain/core/valueobjects"
	"vaultgraph/infrastructure/config"
	"vaultgraph/infrastructure/fs"
	"vaultgraph/infrastructure/persistence/badger"
	"vaultgraph/interfaces/http/rest"
)

type testServer struct {
	server   *httptest.Server
	vaultDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	vaultDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(vaultDir, "test_dir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(vaultDir, "test_dir", "A.txt"), []byte("a"), 0o644))

	cfg := &config.Config{
		ServerAddress: ":0",
		Environment:   "development",
		VaultDir:      vaultDir,
		LogLevel:      "error",
	}

	logger := zap.NewNop()
	store, err := badger.Open(badger.Config{InMemory: true}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	views := badger.NewViewStore(store)
	reader := fs.NewReader(vaultDir, logger)
	resolver := services.NewConnectionResolver(store, logger)
	graphService := services.NewGraphService(store, logger)
	contextService := services.NewContextService(store, views, reader, resolver, vaultDir, logger)

	router := rest.NewRouter(cfg, graphService, contextService, resolver, store, views, logger)
	server := httptest.NewServer(router.Setup())
	t.Cleanup(server.Close)

	return &testServer{server: server, vaultDir: vaultDir}
}

func (ts *testServer) postJSON(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.server.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func (ts *testServer) getJSON(t *testing.T, path string, out interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.server.URL + path)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	resp.Body.Close()
	return resp
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.getJSON(t, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.getJSON(t, "/ready", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInsertAndOpenContextFlow(t *testing.T) {
	ts := newTestServer(t)

	// Persist test_dir through the API.
	resp := ts.postJSON(t, "/api/v1/nodes", map[string]interface{}{
		"nodes": []map[string]interface{}{
			{"path": "vault/test_dir", "ntype": "directory"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Nodes []struct {
			UUID string `json:"uuid"`
			Path string `json:"path"`
		} `json:"nodes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.Len(t, created.Nodes, 1)

	// Opening the directory reconciles the live listing in.
	var ctxResp struct {
		Nodes []struct {
			UUID      string `json:"uuid"`
			Path      string `json:"path"`
			Transient bool   `json:"transient"`
		} `json:"nodes"`
		Edges []struct {
			SourceUUID string `json:"source_uuid"`
			TargetUUID string `json:"target_uuid"`
			Contains   bool   `json:"contains"`
			Transient  bool   `json:"transient"`
		} `json:"edges"`
		Context struct {
			FocalUUID  string  `json:"focal_uuid"`
			ParentUUID *string `json:"parent_uuid"`
		} `json:"context"`
	}
	resp = ts.getJSON(t, "/api/v1/context?path=vault/test_dir", &ctxResp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	paths := make([]string, 0, len(ctxResp.Nodes))
	for _, n := range ctxResp.Nodes {
		if n.Path != "" {
			paths = append(paths, n.Path)
		}
	}
	assert.ElementsMatch(t, []string{"vault", "vault/test_dir", "vault/test_dir/A.txt"}, paths)
	assert.Equal(t, created.Nodes[0].UUID, ctxResp.Context.FocalUUID)
	require.NotNil(t, ctxResp.Context.ParentUUID)
	assert.Len(t, ctxResp.Edges, 2)

	// The on-disk file that was never inserted shows up transient.
	for _, n := range ctxResp.Nodes {
		if n.Path == "vault/test_dir/A.txt" {
			assert.True(t, n.Transient)
		}
	}

	// The vault→test_dir edge was persisted by the insertion; the context
	// returns that record, not a synthesized stand-in.
	for _, e := range ctxResp.Edges {
		if e.TargetUUID == created.Nodes[0].UUID {
			assert.True(t, e.Contains)
			assert.False(t, e.Transient)
		}
	}
}

func TestCreateUserDefinedVirtualNode(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.postJSON(t, "/api/v1/nodes", map[string]interface{}{
		"nodes": []map[string]interface{}{
			{"ntype": "note", "attributes": map[string]interface{}{"name": "ideas"}},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Nodes []struct {
			UUID  string `json:"uuid"`
			NType string `json:"ntype"`
		} `json:"nodes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.Len(t, created.Nodes, 1)
	assert.Equal(t, "note", created.Nodes[0].NType)

	// Reserved types stay store-managed even through the API.
	resp = ts.postJSON(t, "/api/v1/nodes", map[string]interface{}{
		"nodes": []map[string]interface{}{{"ntype": "root"}},
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConnectionsAndViewsFlow(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.postJSON(t, "/api/v1/nodes", map[string]interface{}{
		"nodes": []map[string]interface{}{
			{"path": "vault/a.txt", "ntype": "file"},
			{"path": "vault/b.txt", "ntype": "file"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Nodes []struct {
			UUID string `json:"uuid"`
		} `json:"nodes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.Len(t, created.Nodes, 2)
	a, b := created.Nodes[0].UUID, created.Nodes[1].UUID

	// Link the two files.
	resp = ts.postJSON(t, "/api/v1/edges", map[string]interface{}{
		"source_uuid": a,
		"target_uuid": b,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// The linked file is one hop away.
	var connResp struct {
		Connections []struct {
			Node struct {
				UUID string `json:"uuid"`
			} `json:"node"`
		} `json:"connections"`
	}
	resp = ts.getJSON(t, fmt.Sprintf("/api/v1/nodes/%s/connections", a), &connResp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	found := false
	for _, conn := range connResp.Connections {
		if conn.Node.UUID == b {
			found = true
		}
	}
	assert.True(t, found)

	// Save and read back a layout.
	resp = ts.postJSON(t, "/api/v1/views", map[string]interface{}{
		"focal_uuid": a,
		"view_nodes": []map[string]interface{}{
			{"uuid": b, "rel_x": 40, "rel_y": -10, "pinned": true},
		},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	var view entities.Context
	resp = ts.getJSON(t, "/api/v1/views/"+a, &view)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, view.ViewNodes, 1)
	assert.Equal(t, 40.0, view.ViewNodes[0].RelativeX)
	assert.True(t, view.ViewNodes[0].Pinned)
}

func TestErrorResponses(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.getJSON(t, "/api/v1/context?path=vault/absent", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.getJSON(t, "/api/v1/context", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.getJSON(t, "/api/v1/nodes/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// Guard against the reconciler accidentally consulting the graph root's
// physical location: the vault focal keeps the root in view.
func TestVaultContextKeepsRoot(t *testing.T) {
	ts := newTestServer(t)

	var ctxResp struct {
		Nodes []struct {
			UUID string `json:"uuid"`
		} `json:"nodes"`
	}
	resp := ts.getJSON(t, "/api/v1/context?path=vault", &ctxResp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	found := false
	for _, n := range ctxResp.Nodes {
		if n.UUID == valueobjects.RootUUID.String() {
			found = true
		}
	}
	assert.True(t, found)
}
