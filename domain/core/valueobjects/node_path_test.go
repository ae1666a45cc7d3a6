package valueobjects

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNodePath(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "root", raw: "root", want: "root"},
		{name: "vault archetype", raw: "vault", want: "vault"},
		{name: "virtual archetype", raw: "virtual", want: "virtual"},
		{name: "vault file", raw: "vault/notes/a.txt", want: "vault/notes/a.txt"},
		{name: "leading slash stripped", raw: "/vault/a.txt", want: "vault/a.txt"},
		{name: "trailing slash stripped", raw: "vault/dir/", want: "vault/dir"},
		{name: "dot segments cleaned", raw: "vault/./notes/../a.txt", want: "vault/a.txt"},
		{name: "empty rejected", raw: "", wantErr: true},
		{name: "escape rejected", raw: "../etc/passwd", wantErr: true},
		{name: "bare dot rejected", raw: ".", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewNodePath(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.String())
		})
	}
}

func TestNodePathParent(t *testing.T) {
	p, err := NewNodePath("vault/notes/a.txt")
	require.NoError(t, err)

	parent, ok := p.Parent()
	require.True(t, ok)
	assert.Equal(t, "vault/notes", parent.String())

	grand, ok := parent.Parent()
	require.True(t, ok)
	assert.Equal(t, "vault", grand.String())
	assert.True(t, grand.IsVault())
	assert.True(t, grand.IsArchetype())

	top, ok := grand.Parent()
	require.True(t, ok)
	assert.True(t, top.IsRoot())

	_, ok = top.Parent()
	assert.False(t, ok, "root has no parent")
}

func TestNodePathJoinAndName(t *testing.T) {
	p := VaultPath()
	child, err := p.Join("notes")
	require.NoError(t, err)
	assert.Equal(t, "vault/notes", child.String())
	assert.Equal(t, "notes", child.Name())

	// Only a single plain segment may be joined; anything that would fold
	// into a different path is rejected.
	for _, bad := range []string{"../escape", "a/b", "..", ".", `a\b`, ""} {
		_, err = p.Join(bad)
		assert.Error(t, err, "Join(%q) must be rejected", bad)
	}
}

func TestNodePathAbsoluteIn(t *testing.T) {
	vaultDir := filepath.Join("/", "data", "myvault")

	p, err := NewNodePath("vault/notes/a.txt")
	require.NoError(t, err)
	abs, ok := p.AbsoluteIn(vaultDir)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(vaultDir, "notes", "a.txt"), abs)

	// The vault archetype maps to the vault directory itself.
	abs, ok = VaultPath().AbsoluteIn(vaultDir)
	require.True(t, ok)
	assert.Equal(t, vaultDir, abs)

	// Root and virtual have no physical location.
	_, ok = RootPath().AbsoluteIn(vaultDir)
	assert.False(t, ok)
	virt, err := NewNodePath(PathVirtual)
	require.NoError(t, err)
	_, ok = virt.AbsoluteIn(vaultDir)
	assert.False(t, ok)
}

func TestNodePathJSONRoundTrip(t *testing.T) {
	p, err := NewNodePath("vault/a b/c.txt")
	require.NoError(t, err)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got NodePath
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, p.Equals(got))
}
