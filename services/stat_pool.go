package services

import (
	"sort"
	"sync"
	"time"

	"github.com/webtor-io/dc-progress/ratecalc"
)

const (
	statTTL = 60
)

// StatPool keeps one Stat per transfer id. Every stat's rate entity is
// registered in the pool's registry while the stat is alive; a stat that is
// not touched for the TTL is dropped and unregistered.
type StatPool struct {
	expire time.Duration
	reg    *ratecalc.Registry
	mu     sync.Mutex
	sm     sync.Map
}

type statEntry struct {
	stat     *Stat
	timer    *time.Timer
	deadline time.Time
}

func NewStatPool(reg *ratecalc.Registry) *StatPool {
	return &StatPool{
		expire: time.Duration(statTTL) * time.Second,
		reg:    reg,
	}
}

func (s *StatPool) Get(id string) *Stat {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.sm.Load(id); ok {
		e := v.(*statEntry)
		e.deadline = time.Now().Add(s.expire)
		e.timer.Reset(s.expire)
		return e.stat
	}
	e := &statEntry{
		stat:     NewStat(),
		deadline: time.Now().Add(s.expire),
	}
	s.reg.Register(&e.stat.entity)
	e.timer = time.AfterFunc(s.expire, func() {
		s.drop(id, e)
	})
	s.sm.Store(id, e)
	return e.stat
}

// drop removes e unless it was touched again after its timer fired, or was
// already replaced.
func (s *StatPool) drop(id string, e *statEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if time.Now().Before(e.deadline) {
		return
	}
	if v, ok := s.sm.Load(id); !ok || v.(*statEntry) != e {
		return
	}
	s.sm.Delete(id)
	s.reg.Unregister(&e.stat.entity)
}

func (s *StatPool) GetIfExists(id string) *Stat {
	key := id
	v, loaded := s.sm.Load(key)
	if loaded {
		return v.(*statEntry).stat
	} else {
		return nil
	}
}

// Each calls fn for every live stat in id order.
func (s *StatPool) Each(fn func(id string, st *Stat)) {
	var ids []string
	stats := map[string]*Stat{}
	s.sm.Range(func(k, v interface{}) bool {
		id := k.(string)
		ids = append(ids, id)
		stats[id] = v.(*statEntry).stat
		return true
	})
	sort.Strings(ids)
	for _, id := range ids {
		fn(id, stats[id])
	}
}
