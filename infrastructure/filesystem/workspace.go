package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const (
	runsDirName  = "runs"
	lockFileName = ".lock"
)

// ErrWorkspaceBusy is returned by Prune when runs are still in progress
var ErrWorkspaceBusy = errors.New("workspace has runs in progress")

// Workspace owns a work root holding one unique directory per pipeline run.
// Every run holds a shared lock on the root; Prune takes the exclusive lock.
type Workspace struct {
	root string
}

// NewWorkspace creates a workspace rooted at root. Nothing is created on disk until a run starts.
func NewWorkspace(root string) *Workspace {
	return &Workspace{root: root}
}

// Root returns the work root
func (w *Workspace) Root() string {
	return w.root
}

// RunsDir returns the directory holding run directories
func (w *Workspace) RunsDir() string {
	return filepath.Join(w.root, runsDirName)
}

func (w *Workspace) lockPath() string {
	return filepath.Join(w.root, lockFileName)
}

// Run is a single pipeline run directory
type Run struct {
	ID   string
	Dir  string
	lock *flock.Flock
}

// NewRun creates a fresh run directory and takes a shared lock on the workspace
func (w *Workspace) NewRun(ctx context.Context) (*Run, error) {
	if err := os.MkdirAll(w.RunsDir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create working directory %s: %w", w.RunsDir(), err)
	}

	lock := flock.New(w.lockPath())
	ok, err := lock.TryRLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("failed to lock workspace: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("failed to lock workspace: %w", ctx.Err())
	}

	id := uuid.New().String()
	dir := filepath.Join(w.RunsDir(), id)
	if err := os.Mkdir(dir, 0755); err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	return &Run{ID: id, Dir: dir, lock: lock}, nil
}

// Path returns name inside the run directory
func (r *Run) Path(name string) string {
	return filepath.Join(r.Dir, name)
}

// Remove deletes the run directory and releases the workspace lock. It is safe to call twice.
func (r *Run) Remove() error {
	err := os.RemoveAll(r.Dir)
	if r.lock != nil {
		if unlockErr := r.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
		r.lock = nil
	}
	if err != nil {
		return fmt.Errorf("failed to remove run directory %s: %w", r.Dir, err)
	}
	return nil
}

// Prune removes run directories left behind by crashed processes.
// It fails with ErrWorkspaceBusy if any run currently holds the workspace.
func (w *Workspace) Prune() ([]string, error) {
	if _, err := os.Stat(w.RunsDir()); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	lock := flock.New(w.lockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock workspace: %w", err)
	}
	if !ok {
		return nil, ErrWorkspaceBusy
	}
	defer lock.Unlock()

	entries, err := os.ReadDir(w.RunsDir())
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	var removed []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := os.RemoveAll(filepath.Join(w.RunsDir(), entry.Name())); err != nil {
			return removed, fmt.Errorf("failed to remove run %s: %w", entry.Name(), err)
		}
		removed = append(removed, entry.Name())
	}
	return removed, nil
}
