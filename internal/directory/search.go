package directory

import (
	"sync"
	"time"
)

// DebounceDelay is how long the searcher waits after the last keystroke
// before running the query.
const DebounceDelay = 300 * time.Millisecond

// Searcher coalesces rapid query updates into a single ApplyQuery pass.
// Every update bumps a generation counter; a pending pass whose
// generation has been superseded is discarded, so a stale query can
// never overwrite the results of a newer one.
type Searcher struct {
	apply func(Query)
	delay time.Duration

	mu    sync.Mutex
	gen   uint64
	timer *time.Timer
}

func NewSearcher(apply func(Query), delay time.Duration) *Searcher {
	if delay <= 0 {
		delay = DebounceDelay
	}
	return &Searcher{apply: apply, delay: delay}
}

// Update schedules the query to run after the debounce delay, replacing
// any pending run.
func (s *Searcher) Update(q Query) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		stale := gen != s.gen
		s.mu.Unlock()
		if stale {
			return
		}
		s.apply(q)
	})
}

// Stop drops any pending run.
func (s *Searcher) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
