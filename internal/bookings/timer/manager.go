// Package timer schedules the deferred auto-completion of in-progress
// bookings. At most one timer is live per booking.
package timer

import (
	"sync"
	"time"

	"bookingdesk/pkg/logger"
)

type Callback func(bookingID string)

type entry struct {
	stopper    Stopper
	deadline   time.Time
	generation uint64
}

type Manager struct {
	clock Clock
	log   *logger.Logger

	mu         sync.Mutex
	entries    map[string]*entry
	generation uint64
	stopped    bool
}

func NewManager(clock Clock, log *logger.Logger) *Manager {
	if clock == nil {
		clock = RealClock{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		clock:   clock,
		log:     log,
		entries: make(map[string]*entry),
	}
}

func (m *Manager) Now() time.Time {
	return m.clock.Now()
}

// Arm schedules cb to run for bookingID at deadline, replacing any timer
// already armed for that booking. A deadline in the past fires immediately.
func (m *Manager) Arm(bookingID string, deadline time.Time, cb Callback) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		m.log.Warn("Timer manager stopped, not arming", "booking_id", bookingID)
		return
	}

	if existing, ok := m.entries[bookingID]; ok {
		existing.stopper.Stop()
	}

	m.generation++
	gen := m.generation

	delay := deadline.Sub(m.clock.Now())
	if delay < 0 {
		delay = 0
	}

	e := &entry{deadline: deadline, generation: gen}
	e.stopper = m.clock.AfterFunc(delay, func() { m.fire(bookingID, gen, cb) })
	m.entries[bookingID] = e

	m.log.Debug("Auto-completion timer armed", "booking_id", bookingID, "deadline", deadline)
}

// Cancel stops the timer for bookingID. It reports whether a timer was armed.
func (m *Manager) Cancel(bookingID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[bookingID]
	if !ok {
		return false
	}
	e.stopper.Stop()
	delete(m.entries, bookingID)

	m.log.Debug("Auto-completion timer cancelled", "booking_id", bookingID)
	return true
}

func (m *Manager) Deadline(bookingID string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[bookingID]
	if !ok {
		return time.Time{}, false
	}
	return e.deadline, true
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Stop cancels every pending timer. Later calls to Arm are ignored.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, e := range m.entries {
		e.stopper.Stop()
		delete(m.entries, id)
	}
	m.stopped = true
}

// fire drops the bookkeeping entry before running cb, so cb may call Cancel
// or Arm for the same booking. A fire from a replaced timer is ignored.
func (m *Manager) fire(bookingID string, gen uint64, cb Callback) {
	m.mu.Lock()
	e, ok := m.entries[bookingID]
	if !ok || e.generation != gen {
		m.mu.Unlock()
		return
	}
	delete(m.entries, bookingID)
	m.mu.Unlock()

	cb(bookingID)
}
