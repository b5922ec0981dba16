// Package store defines persistence for finished interview records.
package store

import (
	"context"
	"errors"

	"github.com/zhouzirui/ai-interviewer/backend/internal/model/interview"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// RecordStore persists interview records. Records are immutable: there is no update.
type RecordStore interface {
	Create(ctx context.Context, rec interview.Record) error
	Get(ctx context.Context, id string) (interview.Record, error)
	// List returns all records, newest first.
	List(ctx context.Context) ([]interview.Record, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
