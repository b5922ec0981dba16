package record

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/ai-interviewer/backend/internal/model/interview"
	"github.com/zhouzirui/ai-interviewer/backend/internal/store"
)

// Service manages finished interview records.
type Service struct {
	store store.RecordStore
	now   func() time.Time
}

// NewService creates a record service on top of s.
func NewService(s store.RecordStore) *Service {
	return &Service{store: s, now: time.Now}
}

// Create stores a completed interview. The transcript must belong to a started
// interview and the feedback must be a valid report.
func (s *Service) Create(ctx context.Context, cfg interview.Config, history []interview.Message, feedback interview.Feedback) (interview.Record, error) {
	if err := cfg.Validate(); err != nil {
		return interview.Record{}, err
	}
	if err := completes(history); err != nil {
		return interview.Record{}, err
	}
	if err := feedback.Validate(); err != nil {
		return interview.Record{}, err
	}

	rec := interview.Record{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UnixMilli(),
		Config:    cfg,
		History:   append([]interview.Message(nil), history...),
		Feedback:  feedback,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return interview.Record{}, fmt.Errorf("failed to save record: %w", err)
	}
	return rec, nil
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, id string) (interview.Record, error) {
	return s.store.Get(ctx, id)
}

// List returns all records, newest first.
func (s *Service) List(ctx context.Context) ([]interview.Record, error) {
	return s.store.List(ctx)
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// completes walks the transcript through finish and evaluated.
func completes(history []interview.Message) error {
	phase := interview.PhaseOf(history)
	for _, ev := range []interview.Event{interview.EventFinish, interview.EventEvaluated} {
		next, err := phase.Advance(ev)
		if err != nil {
			return err
		}
		phase = next
	}
	return nil
}
