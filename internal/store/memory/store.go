package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/zhouzirui/ai-interviewer/backend/internal/model/interview"
	"github.com/zhouzirui/ai-interviewer/backend/internal/store"
)

var _ store.RecordStore = (*Store)(nil)

// Store keeps records in process memory. Everything is lost on restart.
type Store struct {
	mu      sync.RWMutex
	records map[string]interview.Record
}

// New returns an empty store.
func New() *Store {
	return &Store{records: make(map[string]interview.Record)}
}

func (s *Store) Create(_ context.Context, rec interview.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.ID]; ok {
		return store.ErrAlreadyExists
	}
	s.records[rec.ID] = rec
	return nil
}

func (s *Store) Get(_ context.Context, id string) (interview.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return interview.Record{}, store.ErrNotFound
	}
	return rec, nil
}

func (s *Store) List(_ context.Context) ([]interview.Record, error) {
	s.mu.RLock()
	out := make([]interview.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt == out[j].CreatedAt {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *Store) Close() error { return nil }
