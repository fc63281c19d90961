package services

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/paulbellamy/ratecounter"
	"github.com/webtor-io/dc-progress/ratecalc"
)

const statInterval = 60

type Status int32

const (
	Pending Status = iota
	Active
	Done
	Failed
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "pending"
}

type Stat struct {
	bytesWritten int64
	length       int64
	status       int32
	entity       ratecalc.Entity
	mu           sync.RWMutex
	cnt          *ratecounter.RateCounter
}

func newRateCounter() *ratecounter.RateCounter {
	return ratecounter.NewRateCounter(time.Duration(statInterval) * time.Second)
}

func NewStat() *Stat {
	return &Stat{
		cnt: newRateCounter(),
	}
}

func (s *Stat) counter() *ratecounter.RateCounter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cnt
}

// restart drops everything measured for a previous attempt.
func (s *Stat) restart() {
	s.mu.Lock()
	s.cnt = newRateCounter()
	s.mu.Unlock()
	atomic.StoreInt64(&s.bytesWritten, 0)
	s.entity.Reset()
}

// Rate is the smoothed per-second rate, updated on every tick.
func (s *Stat) Rate() int64 {
	return s.entity.Get()
}

// AvgRate is the average rate over the last minute.
func (s *Stat) AvgRate() int64 {
	return s.counter().Rate() / statInterval
}

func (s *Stat) Inc(i int64) {
	s.entity.Add(i)
	s.counter().Incr(i)
	atomic.AddInt64(&s.bytesWritten, i)
}

func (s *Stat) Downloaded() int64 {
	return atomic.LoadInt64(&s.bytesWritten)
}

func (s *Stat) SetLength(l int64) {
	atomic.StoreInt64(&s.length, l)
}

func (s *Stat) Length() int64 {
	return atomic.LoadInt64(&s.length)
}

func (s *Stat) Status() Status {
	return Status(atomic.LoadInt32(&s.status))
}

func (s *Stat) SetStatus(st Status) {
	atomic.StoreInt32(&s.status, int32(st))
}
