// Package lockables contains generic containers that couple a value with the
// lock that protects it. Every access to the value goes through a lock
// acquisition: either a scoped guard ([Guarded.Shared], [Guarded.Exclusive])
// whose lifetime brackets the critical section, or a callback run while the
// lock is held ([Guarded.RWith], [Guarded.With]). To lock several containers
// inside one critical section, use [With2], [With3] or [WithAll] instead of
// nesting acquisitions; they acquire in a globally consistent order so that
// concurrent callers can never deadlock, whatever order the containers are
// passed in.
package lockables

import (
	"sync"
	"sync/atomic"
)

// lockSeq hands out container ids. Multi-container locking acquires
// exclusive locks in ascending id order.
var lockSeq atomic.Uint64

// Guarded is a generic thread-safe container for a value of type T. At any
// instant it has either zero or more shared holders or exactly one exclusive
// holder, never both. The zero value is not usable; create containers with
// [New] or [NewWithLocker].
//
// A goroutine must not acquire a lock on a container while already holding
// one on the same container. As with sync.Mutex, that is a deadlock, not a
// recoverable error.
type Guarded[T any] struct {
	_   noCopy
	id  uint64
	mu  sync.Locker // exclusive lock
	rmu sync.Locker // shared lock; same as mu when the locker has no reader mode
	v   T
}

// New creates a Guarded container holding v, backed by a sync.RWMutex so
// that shared holders run concurrently.
func New[T any](v T) *Guarded[T] {
	return NewWithLocker(v, new(sync.RWMutex))
}

// NewWithLocker creates a Guarded container holding v, backed by the given
// locker. If mu distinguishes shared locking — it has an RLocker method like
// *sync.RWMutex, or an RLock/RUnlock pair — shared access uses reader locks;
// otherwise shared access silently degrades to exclusive locking.
func NewWithLocker[T any](v T, mu sync.Locker) *Guarded[T] {
	return &Guarded[T]{
		id:  lockSeq.Add(1),
		mu:  mu,
		rmu: sharedLocker(mu),
		v:   v,
	}
}

// rwLocker is the method pair a reader/writer lock exposes besides
// Lock/Unlock.
type rwLocker interface {
	RLock()
	RUnlock()
}

// sharedLocker picks the locker used for shared access. The choice is made
// once, in the constructor, and holds for the container's lifetime.
func sharedLocker(mu sync.Locker) sync.Locker {
	switch rw := mu.(type) {
	case interface{ RLocker() sync.Locker }:
		return rw.RLocker()
	case rwLocker:
		return readLocker{rw}
	default:
		return mu
	}
}

// readLocker adapts an RLock/RUnlock pair to sync.Locker.
type readLocker struct{ rw rwLocker }

func (r readLocker) Lock()   { r.rw.RLock() }
func (r readLocker) Unlock() { r.rw.RUnlock() }

// Get returns a copy of the protected value, taken under a shared lock.
func (g *Guarded[T]) Get() T {
	g.rmu.Lock()
	defer g.rmu.Unlock()
	return g.v
}

// Set replaces the protected value under an exclusive lock.
func (g *Guarded[T]) Set(v T) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.v = v
}

// RWith executes a read-only callback with a copy of the protected value.
// The shared lock is held for the duration of the call.
func (g *Guarded[T]) RWith(f func(v T)) {
	_ = g.RWithE(func(v T) error {
		f(v)
		return nil
	})
}

// RWithE executes a read-only callback with a copy of the protected value.
// It returns any error returned by the callback; the shared lock is released
// on every exit path before the error reaches the caller.
func (g *Guarded[T]) RWithE(f func(v T) error) error {
	g.rmu.Lock()
	defer g.rmu.Unlock()
	return f(g.v)
}

// With executes a callback with a pointer to the protected value. The
// exclusive lock is held for the duration of the call; the callback must not
// retain the pointer after it returns.
func (g *Guarded[T]) With(f func(v *T)) {
	_ = g.WithE(func(v *T) error {
		f(v)
		return nil
	})
}

// WithE executes a callback with a pointer to the protected value. It
// returns any error returned by the callback; the exclusive lock is released
// on every exit path before the error reaches the caller.
func (g *Guarded[T]) WithE(f func(v *T) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return f(&g.v)
}

// RWithResult runs f with a copy of the protected value under a shared lock
// and returns its result. The result must not point back into the protected
// value.
func RWithResult[T, R any](g *Guarded[T], f func(v T) R) R {
	g.rmu.Lock()
	defer g.rmu.Unlock()
	return f(g.v)
}

// WithResult runs f with a pointer to the protected value under the
// exclusive lock and returns its result. The result must not point back into
// the protected value.
func WithResult[T, R any](g *Guarded[T], f func(v *T) R) R {
	g.mu.Lock()
	defer g.mu.Unlock()
	return f(&g.v)
}
