package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Workspace is the scoped temporary directory for one request. Every
// artifact a pipeline stage writes lives under it, so concurrent requests
// never collide and cleanup is one recursive remove. No artifact outlives
// the request except the uploaded copies.
type Workspace struct {
	dir    string
	logger *zap.Logger
}

// NewWorkspace creates a request-unique directory under baseDir. An empty
// baseDir falls back to the system temp directory.
func NewWorkspace(baseDir string, logger *zap.Logger) (*Workspace, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	dir := filepath.Join(baseDir, "carelink_"+hexID())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir, logger: logger}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns the absolute path for a named artifact in the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// UniquePath returns a fresh artifact path like "reminder_<hex>.mp3".
func (w *Workspace) UniquePath(prefix, ext string) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s_%s%s", prefix, hexID(), ext))
}

// Remove deletes one consumed intermediate artifact. Deletion failures are
// logged, never escalated.
func (w *Workspace) Remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		w.logger.Warn("Failed to remove intermediate artifact",
			zap.String("path", path), zap.Error(err))
	}
}

// Cleanup removes the whole workspace. Best-effort; failures are logged
// only.
func (w *Workspace) Cleanup() {
	if err := os.RemoveAll(w.dir); err != nil {
		w.logger.Warn("Failed to clean up workspace",
			zap.String("dir", w.dir), zap.Error(err))
	}
}

func hexID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
