package valueobjects

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
)

// Archetype path constants. These are the fixed top-level anchors of the
// graph hierarchy, created once at store bootstrap.
const (
	PathRoot    = "root"
	PathVault   = "vault"
	PathVirtual = "virtual"
)

// NodePath is a value object representing a logical path in the graph,
// rooted at the synthetic root rather than at any physical directory.
// Ordinary paths have the form "vault/<relative-fs-path>".
type NodePath struct {
	value string
}

// NewNodePath creates a NodePath from a raw string, normalizing separators
// and redundant path elements. Equality is by normalized value.
func NewNodePath(raw string) (NodePath, error) {
	if raw == "" {
		return NodePath{}, errors.New("node path cannot be empty")
	}

	normalized := path.Clean(strings.Trim(filepath.ToSlash(raw), "/"))
	if normalized == "." || normalized == ".." || strings.HasPrefix(normalized, "../") {
		return NodePath{}, errors.New("node path must not escape the logical root")
	}

	return NodePath{value: normalized}, nil
}

// RootPath returns the path of the synthetic graph root.
func RootPath() NodePath {
	return NodePath{value: PathRoot}
}

// VaultPath returns the path of the vault archetype, the logical stand-in
// for the physical filesystem root the user selected.
func VaultPath() NodePath {
	return NodePath{value: PathVault}
}

// VaultRelative builds "vault/<rel>" from a filesystem path relative to the
// vault directory. An empty relative path yields the vault path itself.
func VaultRelative(rel string) (NodePath, error) {
	rel = strings.Trim(filepath.ToSlash(rel), "/")
	if rel == "" || rel == "." {
		return VaultPath(), nil
	}
	return NewNodePath(PathVault + "/" + rel)
}

// String returns the normalized string form.
func (p NodePath) String() string {
	return p.value
}

// IsZero reports whether the path is the zero value.
func (p NodePath) IsZero() bool {
	return p.value == ""
}

// Equals checks two paths for equality by normalized value.
func (p NodePath) Equals(other NodePath) bool {
	return p.value == other.value
}

// IsRoot reports whether this is the synthetic root path.
func (p NodePath) IsRoot() bool {
	return p.value == PathRoot
}

// IsVault reports whether this is the vault archetype path.
func (p NodePath) IsVault() bool {
	return p.value == PathVault
}

// IsArchetype reports whether this is one of the fixed bootstrap paths.
func (p NodePath) IsArchetype() bool {
	switch p.value {
	case PathRoot, PathVault, PathVirtual:
		return true
	}
	return false
}

// Parent returns the logical parent path. The second return is false only
// for the synthetic root, which has no parent; the vault's parent is root.
func (p NodePath) Parent() (NodePath, bool) {
	if p.IsRoot() || p.IsZero() {
		return NodePath{}, false
	}
	idx := strings.LastIndex(p.value, "/")
	if idx < 0 {
		// A top-level path (vault or another archetype) hangs off root.
		return RootPath(), true
	}
	return NodePath{value: p.value[:idx]}, true
}

// Join appends a single child segment to the path. The name must be one
// plain segment: separators and traversal elements are rejected rather than
// folded into the path.
func (p NodePath) Join(name string) (NodePath, error) {
	if name == "" {
		return NodePath{}, errors.New("child name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return NodePath{}, errors.New("child name must be a single path segment: " + name)
	}
	return NewNodePath(p.value + "/" + name)
}

// Name returns the final path segment.
func (p NodePath) Name() string {
	idx := strings.LastIndex(p.value, "/")
	if idx < 0 {
		return p.value
	}
	return p.value[idx+1:]
}

// InVault reports whether the path addresses the vault or something below it.
func (p NodePath) InVault() bool {
	return p.IsVault() || strings.HasPrefix(p.value, PathVault+"/")
}

// AbsoluteIn maps the logical path onto a physical location under the given
// vault directory. The second return is false for paths with no physical
// backing (root and non-vault archetypes).
func (p NodePath) AbsoluteIn(vaultDir string) (string, bool) {
	if !p.InVault() {
		return "", false
	}
	if p.IsVault() {
		return filepath.Clean(vaultDir), true
	}
	rel := strings.TrimPrefix(p.value, PathVault+"/")
	return filepath.Join(vaultDir, filepath.FromSlash(rel)), true
}

// MarshalJSON implements json.Marshaler.
func (p NodePath) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *NodePath) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || string(data) == `""` {
		p.value = ""
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("NodePath must be a string")
	}
	parsed, err := NewNodePath(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
