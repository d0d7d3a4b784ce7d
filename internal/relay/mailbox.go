package relay

import (
	"sync"

	"github.com/wangdaliu/payauth/internal/model"
)

// pending is one attempt waiting on an asynchronously delivered result.
type pending struct {
	attemptID string
	deliver   func(model.FinalResult)
}

// Mailbox holds the delivery function of each attempt that launched a UI
// hand-off and is waiting for its correlated result. Keyed by request code:
// the host can have at most one in-flight attempt per kind, matching the
// demultiplexing contract of the result handlers.
type Mailbox struct {
	mu      sync.Mutex
	waiting map[int]pending
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{waiting: make(map[int]pending)}
}

// Register parks an attempt's delivery function under its request code,
// replacing any stale entry for the same code.
func (m *Mailbox) Register(requestCode int, attemptID string, deliver func(model.FinalResult)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waiting[requestCode] = pending{attemptID: attemptID, deliver: deliver}
}

// Take removes and returns the delivery function for a request code.
// Removal before invocation bounds delivery to at most once per attempt.
func (m *Mailbox) Take(requestCode int) (func(model.FinalResult), bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.waiting[requestCode]
	if !ok {
		return nil, false
	}
	delete(m.waiting, requestCode)
	return p.deliver, true
}

// Waiting reports whether an attempt is parked under the request code.
func (m *Mailbox) Waiting(requestCode int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.waiting[requestCode]
	return ok
}
