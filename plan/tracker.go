package plan

import "sync"

// Tracker keeps the newest plan. Runs take a ticket before they start and a
// result is only accepted if no later ticket has already been published.
type Tracker struct {
	mu        sync.RWMutex
	next      uint64
	published uint64
	latest    *Plan
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin hands out the next ticket.
func (t *Tracker) Begin() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	return t.next
}

// Publish stores p unless a newer run already did. It reports whether p
// became the latest plan.
func (t *Tracker) Publish(ticket uint64, p Plan) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ticket <= t.published {
		return false
	}
	t.published = ticket
	t.latest = &p
	return true
}

func (t *Tracker) Latest() (Plan, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.latest == nil {
		return Plan{}, false
	}
	return *t.latest, true
}
