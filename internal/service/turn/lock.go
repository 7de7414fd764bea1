package turn

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrTurnInProgress is returned when another turn holds the lock.
var ErrTurnInProgress = errors.New("turn already in progress")

// LockFileName is the default lock file created in the data directory.
const LockFileName = ".turn.lock"

// DefaultLockPath returns the lock file path inside dataDir.
func DefaultLockPath(dataDir string) string {
	return filepath.Join(dataDir, LockFileName)
}

// LockedRunner serializes turns across goroutines and processes with an
// exclusive file lock. It never waits for the lock.
type LockedRunner struct {
	runner Runner
	path   string
}

// NewLockedRunner wraps runner with the lock at path.
func NewLockedRunner(runner Runner, path string) *LockedRunner {
	return &LockedRunner{runner: runner, path: path}
}

// RunTurn runs one turn or fails fast with ErrTurnInProgress.
func (l *LockedRunner) RunTurn(ctx context.Context) (*Result, error) {
	// A fresh Flock per call: one shared instance would report the lock as
	// already held to a second goroutine in this process.
	lock := flock.New(l.path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire turn lock %s: %w", l.path, err)
	}
	if !locked {
		return nil, ErrTurnInProgress
	}
	defer lock.Unlock()

	return l.runner.RunTurn(ctx)
}
