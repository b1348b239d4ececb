package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// LockedError is returned when another live process holds the session lock.
type LockedError struct {
	PID int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("session is in use by another abacus process (pid %d)", e.PID)
}

// Lock is a PID file guarding the saved session. A scheduled refresh and a
// user command must never drive the portal with the same session at once.
type Lock struct {
	Path string
	Poll time.Duration
}

// NewLock creates a Lock for the given path.
func NewLock(path string) *Lock {
	return &Lock{Path: path, Poll: 200 * time.Millisecond}
}

// Acquire takes the lock, waiting up to wait while a live process holds it.
// A lock file left behind by a dead process is taken over.
func (l *Lock) Acquire(ctx context.Context, wait time.Duration) error {
	deadline := time.Now().Add(wait)
	for {
		err := l.create()
		if err == nil {
			return nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("create lock file: %w", err)
		}

		pid, running := l.IsRunning()
		if !running {
			if removed, err := l.removeStale(); err != nil {
				return err
			} else if removed {
				continue
			}
		}
		if !time.Now().Before(deadline) {
			return &LockedError{PID: pid}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.Poll):
		}
	}
}

// Release removes the lock file if this process still owns it.
func (l *Lock) Release() error {
	pid, err := l.Read()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil || pid != os.Getpid() {
		return nil
	}
	err = os.Remove(l.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Read reads the PID from the lock file.
func (l *Lock) Read() (int, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid lock file content: %w", err)
	}
	return pid, nil
}

// unreadableGrace is how long a lock file without a valid PID is left
// alone before it counts as stale.
const unreadableGrace = 5 * time.Second

type lockSnapshot struct {
	content string
	modTime time.Time
}

func (l *Lock) snapshot() (lockSnapshot, error) {
	fi, err := os.Stat(l.Path)
	if err != nil {
		return lockSnapshot{}, err
	}
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return lockSnapshot{}, err
	}
	return lockSnapshot{content: string(data), modTime: fi.ModTime()}, nil
}

// removeStale deletes a lock whose owner is gone. The file is re-read right
// before removal and left in place when another process replaced it in the
// meantime. A file without a valid PID is only stale after unreadableGrace.
func (l *Lock) removeStale() (bool, error) {
	before, err := l.snapshot()
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read lock file: %w", err)
	}
	if _, err := strconv.Atoi(strings.TrimSpace(before.content)); err != nil &&
		time.Since(before.modTime) < unreadableGrace {
		return false, nil
	}

	now, err := l.snapshot()
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read lock file: %w", err)
	}
	if now.content != before.content || !now.modTime.Equal(before.modTime) {
		return false, nil
	}
	if err := os.Remove(l.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("remove stale lock: %w", err)
	}
	return true, nil
}

// create publishes a fully written PID file under l.Path. The hard link
// fails with fs.ErrExist when a lock is already present, so readers never
// see a partially written file.
func (l *Lock) create() error {
	dir := filepath.Dir(l.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(l.Path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	_, werr := f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	if cerr != nil {
		return cerr
	}
	if err := os.Link(tmp, l.Path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fs.ErrExist
		}
		if _, serr := os.Stat(l.Path); serr == nil {
			return fs.ErrExist
		}
		return err
	}
	return nil
}
