// Package lock provides the advisory lock held while a report file is
// written, so concurrent runs never interleave their output.
package lock

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// Suffix is appended to a target path to name its lock file.
const Suffix = ".lock"

// ErrAlreadyLocked is returned when another bidscheck process holds the lock.
var ErrAlreadyLocked = errors.New("another bidscheck run is writing this file")

// Flocker abstracts the subset of flock.Flock used for advisory locking.
type Flocker interface {
	TryLock() (bool, error)
	Unlock() error
}

// Lock wraps a Flocker to provide fail-fast advisory locking.
type Lock struct {
	flocker Flocker
}

// New creates a Lock from the given Flocker.
func New(f Flocker) *Lock {
	return &Lock{flocker: f}
}

// ForFile creates a Lock guarding target, backed by target+Suffix.
func ForFile(target string) *Lock {
	return New(flock.New(target + Suffix))
}

// TryLock attempts a non-blocking lock acquisition. It returns
// ErrAlreadyLocked if the lock is held by another process.
func (l *Lock) TryLock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ok, err := l.flocker.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	if !ok {
		return ErrAlreadyLocked
	}
	return nil
}

// Unlock releases the advisory lock.
func (l *Lock) Unlock() error {
	if err := l.flocker.Unlock(); err != nil {
		return fmt.Errorf("releasing lock: %w", err)
	}
	return nil
}

// Do runs fn while holding the lock. fn is not called when the lock cannot
// be acquired. An unlock failure is reported alongside fn's error.
func (l *Lock) Do(ctx context.Context, fn func() error) error {
	if err := l.TryLock(ctx); err != nil {
		return err
	}
	err := fn()
	if uerr := l.Unlock(); uerr != nil {
		return errors.Join(err, uerr)
	}
	return err
}
