package chat

import (
	"strconv"
	"sync"
	"time"
)

// IDSource hands out message ids derived from a nanosecond clock. When two
// ids are requested within the same clock tick the later one is bumped by one
// so ids stay unique and strictly increasing.
type IDSource struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDSource returns a source reading the wall clock.
func NewIDSource() *IDSource {
	return &IDSource{now: time.Now}
}

// NewIDSourceWithClock is used by tests to pin the clock.
func NewIDSourceWithClock(now func() time.Time) *IDSource {
	return &IDSource{now: now}
}

// Next returns a fresh id.
func (s *IDSource) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := s.now().UnixNano()
	if candidate <= s.last {
		candidate = s.last + 1
	}
	s.last = candidate
	return strconv.FormatInt(candidate, 10)
}
