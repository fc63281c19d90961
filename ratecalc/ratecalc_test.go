package ratecalc

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickSmoothing(t *testing.T) {
	r := NewRegistry()
	var e Entity
	r.Register(&e)

	var got []int64
	for _, d := range []int64{100, 0, 0} {
		e.Add(d)
		r.Tick()
		got = append(got, e.Get())
	}
	assert.Equal(t, []int64{50, 25, 12}, got)
}

func TestTickConvergesToSteadyRate(t *testing.T) {
	r := NewRegistry()
	var e Entity
	r.Register(&e)

	for i := 0; i < 20; i++ {
		e.Add(1000)
		r.Tick()
	}
	assert.InDelta(t, 1000, e.Get(), 1)
}

func TestTickSmoothingTruncates(t *testing.T) {
	r := NewRegistry()
	var e Entity
	r.Register(&e)

	// 9 + (6-9)/2 is 9 + -1, not 9 + -2
	want := []int64{4, 2, 6, 8}
	for i, d := range []int64{7, 0, 10, 9} {
		e.Add(d)
		r.Tick()
		assert.Equal(t, want[i], e.Get(), "tick %d", i)
	}
}

func TestRegisterIdempotent(t *testing.T) {
	r := NewRegistry()
	var e Entity

	r.Register(&e)
	r.Register(&e)
	assert.Equal(t, 1, r.Len())
	assert.True(t, r.Registered(&e))

	r.Unregister(&e)
	r.Unregister(&e)
	assert.Equal(t, 0, r.Len())
	assert.False(t, e.Registered())
}

func TestRegisterMovesBetweenRegistries(t *testing.T) {
	a, b := NewRegistry(), NewRegistry()
	var e Entity

	a.Register(&e)
	b.Register(&e)
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, 1, b.Len())
	assert.True(t, b.Registered(&e))
}

func TestResetClearsState(t *testing.T) {
	r := NewRegistry()
	var e Entity
	r.Register(&e)

	e.Add(40)
	r.Tick()
	require.Equal(t, int64(20), e.Get())

	e.Add(99)
	e.Reset()
	assert.Equal(t, int64(0), e.Get())

	var fresh Entity
	r.Register(&fresh)
	e.Add(10)
	fresh.Add(10)
	r.Tick()
	assert.Equal(t, fresh.Get(), e.Get())
	assert.Equal(t, int64(5), e.Get())
}

func TestInitUnregisters(t *testing.T) {
	r := NewRegistry()
	var e Entity
	r.Register(&e)
	e.Add(5)
	r.Tick()

	e.Init()
	assert.False(t, e.Registered())
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, int64(0), e.Get())
}

func TestUnregisteredNotSampled(t *testing.T) {
	r := NewRegistry()
	var a, b Entity
	r.Register(&a)
	r.Register(&b)

	a.Add(10)
	b.Add(20)
	r.Tick()
	r.Unregister(&a)

	a.Add(1000)
	b.Add(20)
	r.Tick()

	assert.Equal(t, int64(5), a.Get())
	assert.Equal(t, int64(15), b.Get())
}

func TestNoLostIncrements(t *testing.T) {
	r := NewRegistry()
	var a, b Entity
	r.Register(&a)
	r.Register(&b)

	const workers = 16
	const adds = 10000

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < adds; j++ {
				a.Add(3)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < adds; j++ {
				b.Add(1)
			}
		}()
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	var totalA, totalB int64
	for running := true; running; {
		select {
		case <-finished:
			running = false
		default:
		}
		r.Tick()
		totalA += a.Last()
		totalB += b.Last()
	}
	r.Tick()
	totalA += a.Last()
	totalB += b.Last()

	assert.Equal(t, int64(workers*adds*3), totalA)
	assert.Equal(t, int64(workers*adds), totalB)
}

func TestLastIsDelta(t *testing.T) {
	r := NewRegistry()
	var e Entity
	r.Register(&e)

	e.Add(100)
	r.Tick()
	assert.Equal(t, int64(100), e.Last())
	assert.Equal(t, int64(50), e.Get())
	r.Tick()
	assert.Equal(t, int64(0), e.Last())

	e.Add(7)
	r.Tick()
	e.Reset()
	assert.Equal(t, int64(0), e.Last())
}

func TestConcurrentRegisterAndTick(t *testing.T) {
	r := NewRegistry()
	entities := make([]Entity, 64)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				r.Tick()
			}
		}
	}()
	for i := range entities {
		wg.Add(1)
		go func(e *Entity) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Register(e)
				e.Add(1)
				r.Unregister(e)
			}
		}(&entities[i])
	}
	time.Sleep(10 * time.Millisecond)
	close(stop)
	wg.Wait()
	assert.Equal(t, 0, r.Len())
}

func TestDefaultRegistry(t *testing.T) {
	var e Entity
	Register(&e)
	defer Unregister(&e)

	e.Add(8)
	Tick()
	assert.Equal(t, int64(4), e.Get())
	assert.True(t, Default.Registered(&e))
}

func TestConcurrentMoveKeepsSingleMembership(t *testing.T) {
	a, b := NewRegistry(), NewRegistry()
	for i := 0; i < 1000; i++ {
		var e Entity
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			a.Register(&e)
		}()
		go func() {
			defer wg.Done()
			b.Register(&e)
		}()
		wg.Wait()

		require.Equal(t, 1, a.Len()+b.Len(), "iteration %d", i)
		require.True(t, a.Registered(&e) != b.Registered(&e))
		e.Init()
		require.Equal(t, 0, a.Len()+b.Len())
	}
}
