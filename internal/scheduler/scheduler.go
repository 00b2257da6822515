package scheduler

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler runs named fixed-rate jobs. Each job gets one goroutine, so a
// job never overlaps itself; a slow run delays its own next tick only.
type Scheduler struct {
	logger zerolog.Logger

	mu      sync.Mutex
	stop    chan struct{}
	started bool
	wg      sync.WaitGroup
}

func New(logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		logger: logger,
		stop:   make(chan struct{}),
	}
}

// Every registers a job and starts ticking it. Registration after Stop is a
// no-op.
func (s *Scheduler) Every(name string, interval time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.stop:
		return
	default:
	}
	s.started = true
	s.wg.Add(1)
	go s.loop(name, interval, fn)
}

func (s *Scheduler) loop(name string, interval time.Duration, fn func()) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	s.logger.Debug().Str("job", name).Dur("interval", interval).Msg("scheduler job started")
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.runOne(name, fn)
		}
	}
}

func (s *Scheduler) runOne(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("job", name).Interface("panic", r).Msg("scheduler job panicked")
		}
	}()
	fn()
}

// Stop halts every job and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	select {
	case <-s.stop:
		s.mu.Unlock()
		return
	default:
		close(s.stop)
	}
	s.mu.Unlock()
	s.wg.Wait()
	s.logger.Debug().Msg("scheduler stopped")
}
