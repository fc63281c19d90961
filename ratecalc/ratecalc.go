// Package ratecalc computes smoothed per-second rates for counters that are
// updated concurrently by any number of goroutines.
//
// Typical use:
//
//	var e ratecalc.Entity
//	ratecalc.Register(&e)
//	e.Add(n)          // from any goroutine
//	rate := e.Get()   // from any goroutine
//	ratecalc.Unregister(&e)
//
// Tick should be called by a single driver about once per second.
package ratecalc

import (
	"sync"
	"sync/atomic"
)

// Entity is a single measured activity. The zero value is ready to use.
type Entity struct {
	counter int64
	rate    int64
	last    int64

	// registry the entity belongs to, nil when unregistered
	reg *Registry
	mu  sync.Mutex
	// serializes Register calls so a move between registries is atomic
	move sync.Mutex
}

// Add adds n to the counter. n must not be negative.
func (e *Entity) Add(n int64) {
	atomic.AddInt64(&e.counter, n)
}

// Get returns the rate computed by the most recent tick.
func (e *Entity) Get() int64 {
	return atomic.LoadInt64(&e.rate)
}

// Last returns the amount collected by the most recent tick, before
// smoothing.
func (e *Entity) Last() int64 {
	return atomic.LoadInt64(&e.last)
}

// Reset zeroes the counter and the rate.
func (e *Entity) Reset() {
	atomic.StoreInt64(&e.counter, 0)
	atomic.StoreInt64(&e.rate, 0)
	atomic.StoreInt64(&e.last, 0)
}

// Init removes e from any registry and resets it.
func (e *Entity) Init() {
	if r := e.registry(); r != nil {
		r.Unregister(e)
	}
	e.Reset()
}

// Registered reports whether e currently belongs to a registry.
func (e *Entity) Registered() bool {
	return e.registry() != nil
}

func (e *Entity) registry() *Registry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reg
}

func (e *Entity) setRegistry(r *Registry) {
	e.mu.Lock()
	e.reg = r
	e.mu.Unlock()
}

// sample moves the accumulated counter into the smoothed rate and returns
// the delta. Only the ticking goroutine writes rate.
func (e *Entity) sample() int64 {
	delta := atomic.SwapInt64(&e.counter, 0)
	rate := atomic.LoadInt64(&e.rate)
	atomic.StoreInt64(&e.rate, delta+(rate-delta)/2)
	atomic.StoreInt64(&e.last, delta)
	return delta
}

// Registry is a set of entities sampled together by Tick.
type Registry struct {
	mu       sync.Mutex
	entities []*Entity
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Default is the process-wide registry.
var Default = NewRegistry()

// Register adds e to the registry. Registering twice has no effect. An
// entity registered elsewhere is moved here, so it is never a member of two
// registries.
func (r *Registry) Register(e *Entity) {
	e.move.Lock()
	defer e.move.Unlock()
	if old := e.registry(); old != nil && old != r {
		old.Unregister(e)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.registry() == r {
		return
	}
	r.entities = append(r.entities, e)
	e.setRegistry(r)
}

// Unregister removes e from the registry. It is a no-op if e is not a member.
func (r *Registry) Unregister(e *Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, v := range r.entities {
		if v != e {
			continue
		}
		copy(r.entities[i:], r.entities[i+1:])
		r.entities[len(r.entities)-1] = nil
		r.entities = r.entities[:len(r.entities)-1]
		break
	}
	if e.registry() == r {
		e.setRegistry(nil)
	}
}

// Registered reports whether e is a member of r.
func (r *Registry) Registered(e *Entity) bool {
	return e.registry() == r
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entities)
}

// Tick samples every registered entity: the counter is atomically swapped
// for zero and the rate becomes delta + (rate - delta) / 2.
func (r *Registry) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entities {
		e.sample()
	}
}

// Register adds e to the Default registry.
func Register(e *Entity) { Default.Register(e) }

// Unregister removes e from the Default registry.
func Unregister(e *Entity) { Default.Unregister(e) }

// Tick samples the Default registry.
func Tick() { Default.Tick() }
