// Package lock implements the process-wide exclusive lock spec.md §5
// calls for: "the manifest cache and the current root are process-wide
// state... implementations in a concurrent target language must
// serialize top-level operations with an exclusive lock over those two
// pieces of state." One Lock guards one deploy root for the lifetime of
// a single top-level operation.
package lock

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/theckman/go-flock"
)

// Lock wraps a single exclusive file lock over a deploy root's lock
// file, acquired for the duration of one top-level orchestrator
// operation (install, make, remove, fetch, pack, static).
type Lock struct {
	f *flock.Flock
}

// New returns a Lock over "<root>/.luadist.lock", not yet acquired.
func New(root string) *Lock {
	return &Lock{f: flock.NewFlock(filepath.Join(root, ".luadist.lock"))}
}

// Acquire blocks until the lock is held. It returns an error only if the
// underlying filesystem lock call fails outright; it does not time out,
// consistent with spec.md §5's "no cancellation/timeouts" model.
func (l *Lock) Acquire() error {
	if err := l.f.Lock(); err != nil {
		return errors.Wrapf(err, "lock: acquiring %s", l.f.Path())
	}
	return nil
}

// TryAcquire attempts to acquire the lock without blocking, reporting
// whether it succeeded. A caller that finds the lock already held knows
// another operation is in progress against the same root.
func (l *Lock) TryAcquire() (bool, error) {
	ok, err := l.f.TryLock()
	if err != nil {
		return false, errors.Wrapf(err, "lock: try-acquiring %s", l.f.Path())
	}
	return ok, nil
}

// Release unlocks the lock. Safe to call on an already-released Lock.
func (l *Lock) Release() error {
	if !l.f.Locked() {
		return nil
	}
	if err := l.f.Unlock(); err != nil {
		return errors.Wrapf(err, "lock: releasing %s", l.f.Path())
	}
	return nil
}
