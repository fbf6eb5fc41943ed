package lockables

import "sync"

// noCopy makes go vet's copylocks check flag copies of the struct it is
// embedded in.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// SharedGuard is a read-only handle to a protected value. While the guard is
// live, the shared lock is held; [SharedGuard.Release] gives it back. The
// zero value is an empty guard: Ok reports false and Get panics.
type SharedGuard[T any] struct {
	_    noCopy
	v    *T
	lock sync.Locker
}

// ExclusiveGuard is a mutable handle to a protected value. While the guard
// is live, the exclusive lock is held; [ExclusiveGuard.Release] gives it
// back. The zero value is an empty guard: Ok reports false and value access
// panics.
type ExclusiveGuard[T any] struct {
	_    noCopy
	v    *T
	lock sync.Locker
}

// Shared blocks until a shared lock is available and returns a guard holding
// it. The caller must call Release when done, typically with defer:
//
//	g := value.Shared()
//	defer g.Release()
//	n := g.Get()
//
// The container must outlive the guard.
func (g *Guarded[T]) Shared() *SharedGuard[T] {
	g.rmu.Lock()
	return &SharedGuard[T]{v: &g.v, lock: g.rmu}
}

// Exclusive blocks until the exclusive lock is available and returns a guard
// holding it. The caller must call Release when done, typically with defer.
// While the guard is live, all other acquisitions on the container block.
func (g *Guarded[T]) Exclusive() *ExclusiveGuard[T] {
	g.mu.Lock()
	return &ExclusiveGuard[T]{v: &g.v, lock: g.mu}
}

// Ok reports whether the guard is live: it references a value and holds its
// lock.
func (sg *SharedGuard[T]) Ok() bool {
	return sg != nil && sg.v != nil
}

// Get returns a copy of the guarded value. It panics if the guard is empty
// or already released.
func (sg *SharedGuard[T]) Get() T {
	return *sg.v
}

// Release unlocks the guard. Only the first call has any effect; the guard
// is empty afterwards.
func (sg *SharedGuard[T]) Release() {
	if sg == nil || sg.lock == nil {
		return
	}
	sg.lock.Unlock()
	sg.lock = nil
	sg.v = nil
}

// Ok reports whether the guard is live: it references a value and holds its
// lock.
func (eg *ExclusiveGuard[T]) Ok() bool {
	return eg != nil && eg.v != nil
}

// Get returns a copy of the guarded value. It panics if the guard is empty
// or already released.
func (eg *ExclusiveGuard[T]) Get() T {
	return *eg.v
}

// Set replaces the guarded value. It panics if the guard is empty or already
// released.
func (eg *ExclusiveGuard[T]) Set(v T) {
	*eg.v = v
}

// Ptr returns a pointer to the guarded value, valid strictly until Release.
// Retaining it past Release bypasses the lock.
func (eg *ExclusiveGuard[T]) Ptr() *T {
	return eg.v
}

// Release unlocks the guard. Only the first call has any effect; the guard
// is empty afterwards.
func (eg *ExclusiveGuard[T]) Release() {
	if eg == nil || eg.lock == nil {
		return
	}
	eg.lock.Unlock()
	eg.lock = nil
	eg.v = nil
}
