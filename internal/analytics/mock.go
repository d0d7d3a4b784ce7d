package analytics

import "sync"

// Emission captures one emitted event for inspection.
type Emission struct {
	Event  Event
	Fields map[string]string
}

// RecordingSink records every emission.
type RecordingSink struct {
	mu        sync.Mutex
	emissions []Emission
}

// NewRecordingSink creates an empty recording sink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) Emit(event Event, fields map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emissions = append(s.emissions, Emission{Event: event, Fields: fields})
}

// Emissions returns a copy of everything recorded so far.
func (s *RecordingSink) Emissions() []Emission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Emission, len(s.emissions))
	copy(out, s.emissions)
	return out
}

// Count returns how many times the given event was emitted.
func (s *RecordingSink) Count(event Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.emissions {
		if e.Event == event {
			n++
		}
	}
	return n
}
