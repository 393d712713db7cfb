package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const workspacePrefix = "electron-types-"

// Workspace is a run-private scratch directory.
type Workspace struct {
	Dir string
}

// NewWorkspace creates a fresh directory named electron-types-<version>-<random>
// under base (the system temp directory when base is empty).
func NewWorkspace(base, version string) (*Workspace, error) {
	if base != "" {
		if err := os.MkdirAll(base, 0o755); err != nil {
			return nil, fmt.Errorf("creating workspace base: %w", err)
		}
	}
	dir, err := os.MkdirTemp(base, workspacePrefix+sanitize(version)+"-*")
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	return &Workspace{Dir: dir}, nil
}

// Path joins rel onto the workspace directory.
func (w *Workspace) Path(rel string) string {
	return filepath.Join(w.Dir, filepath.FromSlash(rel))
}

// Close removes the workspace and everything in it.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.Dir)
}

// sanitize keeps a version usable as a directory name fragment.
func sanitize(v string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		}
		return '_'
	}, v)
}

// CleanStaleResult lists what CleanStale removed and what it could not.
type CleanStaleResult struct {
	Removed []string
	Errors  []error
}

// CleanStale removes leftover workspaces older than maxAge from base. Workspaces
// are normally removed by their run; this catches runs killed mid-flight.
func CleanStale(ctx context.Context, base string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	var result CleanStaleResult
	if base == "" {
		base = os.TempDir()
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, err)
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), workspacePrefix) {
			continue
		}
		dir := filepath.Join(base, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Removed = append(result.Removed, dir)
		if logger != nil {
			logger.Debug("removed stale workspace", "dir", dir, "modified", info.ModTime())
		}
	}
	return result
}
