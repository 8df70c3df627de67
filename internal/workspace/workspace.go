// internal/workspace/workspace.go

// Package workspace provides the scoped temporary storage area owned by a
// single scrape request. Every file produced during the request lives under
// the workspace root, and the root is removed exactly once on release.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/evostudios/StableScraper/internal/utils"
)

// Workspace owns the on-disk artifacts of one scrape request.
type Workspace struct {
	root     string
	logger   utils.Logger
	released bool
	mu       sync.Mutex
}

// New creates a workspace directory under baseDir. The directory name is
// randomized with the given prefix so concurrent requests never collide.
func New(baseDir, prefix string, logger utils.Logger) (*Workspace, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if logger == nil {
		logger = utils.NewLogger()
	}

	root, err := os.MkdirTemp(baseDir, prefix+"-*")
	if err != nil {
		return nil, utils.WrapError(utils.ErrCodeWorkspace, "failed to create workspace directory", err)
	}

	return &Workspace{
		root:   root,
		logger: logger,
	}, nil
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string {
	return w.root
}

// Path joins name under the workspace root.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.root, name)
}

// Contains reports whether path lives inside the workspace root.
func (w *Workspace) Contains(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !filepath.IsAbs(rel) && (rel == "." || rel[0] != '.')
}

// Files lists the regular files currently in the workspace root.
func (w *Workspace) Files() ([]string, error) {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return nil, utils.WrapError(utils.ErrCodeWorkspace, "failed to list workspace", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, filepath.Join(w.root, entry.Name()))
	}
	return files, nil
}

// Release removes the workspace root and everything under it. It is
// idempotent, and a removal failure is logged but never returned so that
// cleanup cannot mask an in-flight pipeline result.
func (w *Workspace) Release() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.released {
		return
	}
	w.released = true

	if err := os.RemoveAll(w.root); err != nil {
		w.logger.WithField("workspace", w.root).
			Errorf("workspace cleanup failed: %v", err)
		return
	}

	w.logger.Debugf("released workspace %s", w.root)
}

// VideoFileName returns the deterministic name for a downloaded video.
func VideoFileName(jobID string, index int, ext string) string {
	if ext == "" {
		ext = "mp4"
	}
	return fmt.Sprintf("%s-video-%d.%s", jobID, index, ext)
}
