package testhelpers

import (
	"context"
	"fmt"
	"sync"

	"lottery/domain/entities"
	"lottery/events"
)

// MemoryResultStore is an in-memory ResultStore with the same atomic
// check-and-set behaviour as the real stores
type MemoryResultStore struct {
	mu      sync.Mutex
	result  *entities.DrawResult
	commits int
}

// NewMemoryResultStore creates an empty store
func NewMemoryResultStore() *MemoryResultStore {
	return &MemoryResultStore{}
}

func (s *MemoryResultStore) Exists(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result != nil, nil
}

func (s *MemoryResultStore) Load(ctx context.Context) (*entities.DrawResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil, entities.ErrNotFound
	}
	copied := *s.result
	return &copied, nil
}

func (s *MemoryResultStore) Commit(ctx context.Context, result *entities.DrawResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil {
		return entities.ErrAlreadyLocked
	}
	copied := *result
	s.result = &copied
	s.commits++
	return nil
}

func (s *MemoryResultStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return entities.ErrNotFound
	}
	s.result = nil
	return nil
}

// Commits returns how many results were ever committed
func (s *MemoryResultStore) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// RecordingPublisher keeps every published event
type RecordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *RecordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Types returns the types of published events in order
func (p *RecordingPublisher) Types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]events.EventType, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type()
	}
	return types
}

// SequenceSource returns fixed values, for deterministic sampling tests
type SequenceSource struct {
	mu     sync.Mutex
	values []int
	pos    int
}

// NewSequenceSource creates a source that replays values in order
func NewSequenceSource(values ...int) *SequenceSource {
	return &SequenceSource{values: values}
}

func (s *SequenceSource) Intn(n int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.values) {
		return 0, fmt.Errorf("sequence exhausted after %d values", s.pos)
	}
	v := s.values[s.pos]
	s.pos++
	return v % n, nil
}

// NewRoster builds a roster of n participants with IDs P1..Pn
func NewRoster(n int) entities.Roster {
	roster := entities.Roster{Columns: []string{"ID", "Name"}}
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("P%d", i)
		roster.Participants = append(roster.Participants, entities.Participant{
			ID:     id,
			Name:   fmt.Sprintf("Member %d", i),
			Fields: map[string]string{"ID": id, "Name": fmt.Sprintf("Member %d", i)},
		})
	}
	return roster
}
