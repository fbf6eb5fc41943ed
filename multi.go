package lockables

import (
	"cmp"
	"slices"
	"sync"
)

// locked is the untyped view of a container used by the multi-container
// locking helpers.
type locked interface {
	lockOrder() uint64
	exclusiveLocker() sync.Locker
}

func (g *Guarded[T]) lockOrder() uint64            { return g.id }
func (g *Guarded[T]) exclusiveLocker() sync.Locker { return g.mu }

// lockAll acquires every exclusive lock in ascending id order and returns a
// function releasing them all. Ascending order across all callers is what
// rules out circular waits.
func lockAll(ls []locked) (release func()) {
	sorted := slices.Clone(ls)
	slices.SortFunc(sorted, func(a, b locked) int {
		return cmp.Compare(a.lockOrder(), b.lockOrder())
	})
	for _, l := range sorted {
		l.exclusiveLocker().Lock()
	}
	return func() {
		for i := len(sorted) - 1; i >= 0; i-- {
			sorted[i].exclusiveLocker().Unlock()
		}
	}
}

// With2 locks both containers exclusively, in a globally consistent order
// regardless of argument order, and runs f with pointers to both values.
// Concurrent With2/With3/WithAll calls over overlapping containers never
// deadlock. Passing the same container twice is a self-deadlock.
func With2[A, B any](a *Guarded[A], b *Guarded[B], f func(a *A, b *B)) {
	defer lockAll([]locked{a, b})()
	f(&a.v, &b.v)
}

// With2E is With2 for callbacks that can fail. Both locks are released
// before the error reaches the caller.
func With2E[A, B any](a *Guarded[A], b *Guarded[B], f func(a *A, b *B) error) error {
	defer lockAll([]locked{a, b})()
	return f(&a.v, &b.v)
}

// With2Result is With2 for callbacks returning a result. The result must not
// point back into either protected value.
func With2Result[A, B, R any](a *Guarded[A], b *Guarded[B], f func(a *A, b *B) R) R {
	defer lockAll([]locked{a, b})()
	return f(&a.v, &b.v)
}

// With3 locks all three containers exclusively, in a globally consistent
// order regardless of argument order, and runs f with pointers to the
// values.
func With3[A, B, C any](a *Guarded[A], b *Guarded[B], c *Guarded[C], f func(a *A, b *B, c *C)) {
	defer lockAll([]locked{a, b, c})()
	f(&a.v, &b.v, &c.v)
}

// With3E is With3 for callbacks that can fail. All locks are released before
// the error reaches the caller.
func With3E[A, B, C any](a *Guarded[A], b *Guarded[B], c *Guarded[C], f func(a *A, b *B, c *C) error) error {
	defer lockAll([]locked{a, b, c})()
	return f(&a.v, &b.v, &c.v)
}

// WithAll locks every container exclusively, in a globally consistent order
// regardless of argument order, and runs f with pointers to all values in
// argument order. Calling WithAll with no containers is legal but acquires
// nothing: it must not be mistaken for a global critical section.
func WithAll[T any](f func(vs []*T), gs ...*Guarded[T]) {
	_ = WithAllE(func(vs []*T) error {
		f(vs)
		return nil
	}, gs...)
}

// WithAllE is WithAll for callbacks that can fail. All locks are released
// before the error reaches the caller.
func WithAllE[T any](f func(vs []*T) error, gs ...*Guarded[T]) error {
	ls := make([]locked, len(gs))
	vs := make([]*T, len(gs))
	for i, g := range gs {
		ls[i] = g
		vs[i] = &g.v
	}
	defer lockAll(ls)()
	return f(vs)
}
