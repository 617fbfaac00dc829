package dispatch

import (
	"sync"

	"github.com/google/uuid"
)

// Results is the append-only answer collection shared by every task of a
// run. Order is the order in which tasks finished.
type Results struct {
	RunID string

	mu      sync.Mutex
	answers []Answer
}

// NewResults creates an empty collection with a fresh run id.
func NewResults() *Results {
	return &Results{RunID: uuid.NewString()}
}

// Append adds an answer. Safe for concurrent use.
func (r *Results) Append(a Answer) {
	r.mu.Lock()
	r.answers = append(r.answers, a)
	r.mu.Unlock()
}

// Answers returns a copy of the collected answers in append order.
func (r *Results) Answers() []Answer {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]Answer, len(r.answers))
	copy(cp, r.answers)
	return cp
}

// Len returns the number of collected answers.
func (r *Results) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.answers)
}

// Summary counts successes and failures and totals token usage. Tasks run
// in parallel, so wall clock is the longest single duration.
func (r *Results) Summary() Summary {
	var s Summary
	for _, a := range r.Answers() {
		if a.Failed() {
			s.Failed++
		} else {
			s.Succeeded++
		}
		s.TotalTokens += a.Usage.TotalTokens
		if a.Duration > s.WallClock {
			s.WallClock = a.Duration
		}
	}
	return s
}
