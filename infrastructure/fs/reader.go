// Package fs provides the default filesystem reader: the collaborator the
// reconciler consults for live directory state in the physical case.
package fs

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"vaultgraph/application/ports"
	"vaultgraph/domain/core/entities"
	"vaultgraph/domain/core/valueobjects"
	pkgerrors "vaultgraph/pkg/errors"
)

// Reader reads live filesystem state for one vault directory and presents
// entries as transient DataNodes with path-derived identities.
type Reader struct {
	vaultDir string
	logger   *zap.Logger
}

var _ ports.FilesystemReader = (*Reader)(nil)

// NewReader creates a reader rooted at the vault directory.
func NewReader(vaultDir string, logger *zap.Logger) *Reader {
	return &Reader{vaultDir: filepath.Clean(vaultDir), logger: logger}
}

// VaultDir returns the physical vault root this reader serves.
func (r *Reader) VaultDir() string {
	return r.vaultDir
}

// Exists reports whether the absolute path is present on disk.
func (r *Reader) Exists(absPath string) bool {
	_, err := os.Stat(absPath)
	return err == nil
}

// IsDir reports whether the absolute path is a directory.
func (r *Reader) IsDir(absPath string) bool {
	info, err := os.Stat(absPath)
	return err == nil && info.IsDir()
}

// ListImmediateChildren enumerates the direct entries of a directory as
// transient DataNodes. Identity is derived from each entry's logical path,
// so a persisted node for the same file carries the same uuid.
func (r *Reader) ListImmediateChildren(absPath string) ([]*entities.DataNode, error) {
	logicalDir, err := r.logicalPath(absPath)
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.NewPathNotFoundError(absPath)
		}
		return nil, pkgerrors.NewStoreError("read_dir", err)
	}

	children := make([]*entities.DataNode, 0, len(dirEntries))
	for _, entry := range dirEntries {
		childPath, err := logicalDir.Join(entry.Name())
		if err != nil {
			r.logger.Warn("skipping unrepresentable directory entry",
				zap.String("dir", absPath),
				zap.String("name", entry.Name()),
				zap.Error(err))
			continue
		}

		ntype := entities.NodeTypeFile
		if entry.IsDir() {
			ntype = entities.NodeTypeDirectory
		}
		node := entities.NewNodeFromPath(childPath, ntype)

		if info, ierr := entry.Info(); ierr == nil {
			if !entry.IsDir() {
				node.SetAttribute("size", valueobjects.NumberAttr(float64(info.Size())))
			}
			// Disk mtime last: SetAttribute stamps its own modification time.
			node.CreatedTime = info.ModTime().UTC()
			node.ModifiedTime = info.ModTime().UTC()
		}
		children = append(children, node)
	}
	return children, nil
}

// logicalPath maps an absolute filesystem path back into vault-relative
// logical space. Paths outside the vault are a validation error: this
// reader never serves anything above its root.
func (r *Reader) logicalPath(absPath string) (valueobjects.NodePath, error) {
	rel, err := filepath.Rel(r.vaultDir, filepath.Clean(absPath))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return valueobjects.NodePath{}, pkgerrors.NewValidationError("path is outside the vault").
			WithDetails(map[string]interface{}{"path": absPath, "vault": r.vaultDir})
	}
	return valueobjects.VaultRelative(rel)
}
