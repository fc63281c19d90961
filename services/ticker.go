package services

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/webtor-io/dc-progress/ratecalc"
)

const (
	tickIntervalFlag = "tick-interval"
)

func RegisterTickerFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.DurationFlag{
			Name:   tickIntervalFlag,
			Usage:  "rate sampling interval",
			Value:  time.Second,
			EnvVar: "TICK_INTERVAL",
		},
	)
}

// RateTicker samples a rate registry at a fixed interval.
type RateTicker struct {
	reg      *ratecalc.Registry
	clock    clock.Clock
	interval time.Duration
	onTick   func()
	stop     chan struct{}
	once     sync.Once
}

func NewRateTicker(c *cli.Context, reg *ratecalc.Registry) *RateTicker {
	return NewRateTickerWithClock(clock.New(), c.Duration(tickIntervalFlag), reg)
}

func NewRateTickerWithClock(cl clock.Clock, interval time.Duration, reg *ratecalc.Registry) *RateTicker {
	if interval <= 0 {
		interval = time.Second
	}
	return &RateTicker{
		reg:      reg,
		clock:    cl,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// OnTick sets a callback run after every sample. It must be set before
// Serve.
func (s *RateTicker) OnTick(fn func()) {
	s.onTick = fn
}

func (s *RateTicker) Serve() error {
	t := s.clock.Ticker(s.interval)
	defer t.Stop()
	log.Infof("Sampling rates every %v", s.interval)
	for {
		select {
		case <-t.C:
			s.reg.Tick()
			if s.onTick != nil {
				s.onTick()
			}
		case <-s.stop:
			return nil
		}
	}
}

func (s *RateTicker) Close() {
	s.once.Do(func() {
		log.Info("Closing RateTicker")
		close(s.stop)
	})
}
