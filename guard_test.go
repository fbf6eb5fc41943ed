package lockables

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSharedGuardGet(t *testing.T) {
	g := New([]int{1, 2, 3})

	sg := g.Shared()
	require.True(t, sg.Ok())
	require.Equal(t, []int{1, 2, 3}, sg.Get())
	sg.Release()
	require.False(t, sg.Ok())
}

func TestExclusiveGuardMutates(t *testing.T) {
	g := New(41)

	eg := g.Exclusive()
	require.True(t, eg.Ok())
	require.Equal(t, 41, eg.Get())
	eg.Set(42)
	p := eg.Ptr()
	*p++
	eg.Release()
	require.False(t, eg.Ok())

	require.Equal(t, 43, g.Get())
}

func TestEmptyGuards(t *testing.T) {
	var sg *SharedGuard[int]
	require.False(t, sg.Ok())
	sg.Release() // no-op

	var eg ExclusiveGuard[int]
	require.False(t, eg.Ok())
	eg.Release() // no-op
	require.Panics(t, func() { eg.Get() })
	require.Panics(t, func() { eg.Set(1) })
}

func TestReleaseIsIdempotent(t *testing.T) {
	g := New(1)

	eg := g.Exclusive()
	eg.Release()
	eg.Release()

	// A double release must not have unlocked somebody else's acquisition.
	eg2 := g.Exclusive()
	defer eg2.Release()
	require.True(t, eg2.Ok())
}

func TestGuardReleasedOnPanicExit(t *testing.T) {
	g := New(1)

	require.Panics(t, func() {
		eg := g.Exclusive()
		defer eg.Release()
		panic("boom")
	})

	got := make(chan int)
	go func() { got <- g.Get() }()
	select {
	case v := <-got:
		require.Equal(t, 1, v)
	case <-time.After(time.Second):
		t.Fatal("lock still held after panic unwound the guard scope")
	}
}

func TestExclusiveGuardBlocksAllOthers(t *testing.T) {
	g := New(1)

	eg := g.Exclusive()
	got := make(chan int)
	go func() { got <- g.Get() }()

	select {
	case v := <-got:
		t.Fatalf("shared read completed while exclusive guard held: %d", v)
	case <-time.After(50 * time.Millisecond):
	}

	eg.Set(2)
	eg.Release()

	select {
	case v := <-got:
		require.Equal(t, 2, v)
	case <-time.After(time.Second):
		t.Fatal("shared read still blocked after release")
	}
}

func TestSharedGuardBlocksExclusive(t *testing.T) {
	g := New(1)

	sg := g.Shared()
	acquired := make(chan struct{})
	go func() {
		g.With(func(v *int) { *v = 2 })
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("exclusive acquisition completed while a shared guard was held")
	case <-time.After(50 * time.Millisecond):
	}

	sg.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("exclusive acquisition still blocked after shared release")
	}
	require.Equal(t, 2, g.Get())
}

func TestExclusiveGuardsAreMutuallyExclusive(t *testing.T) {
	const (
		goroutines = 8
		increments = 1000
	)
	g := New(0)

	var done sync.WaitGroup
	done.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer done.Done()
			for j := 0; j < increments; j++ {
				eg := g.Exclusive()
				eg.Set(eg.Get() + 1)
				eg.Release()
			}
		}()
	}

	waitOrFatal(t, &done, "incrementing goroutines did not finish")
	require.Equal(t, goroutines*increments, g.Get())
}

func TestConcurrentSharedGuards(t *testing.T) {
	const readers = 8
	g := New("value")

	var entered, done sync.WaitGroup
	entered.Add(readers)
	done.Add(readers)
	proceed := make(chan struct{})

	for i := 0; i < readers; i++ {
		go func() {
			defer done.Done()
			sg := g.Shared()
			defer sg.Release()
			entered.Done()
			<-proceed
		}()
	}

	waitOrFatal(t, &entered, "shared guards blocked each other under a RWMutex")
	close(proceed)
	waitOrFatal(t, &done, "shared guards did not release")
}
