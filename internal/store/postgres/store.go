// Package postgres stores interview records in PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/zhouzirui/ai-interviewer/backend/internal/model/interview"
	"github.com/zhouzirui/ai-interviewer/backend/internal/store"
)

const uniqueViolation = "23505"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS interview_records (
	id         TEXT PRIMARY KEY,
	created_at BIGINT NOT NULL,
	config     JSONB NOT NULL,
	history    JSONB NOT NULL,
	feedback   JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS interview_records_created_at_idx ON interview_records (created_at DESC);`

var _ store.RecordStore = (*Store)(nil)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DB = (*pgxpool.Pool)(nil)

// Store is a RecordStore backed by a pgx connection pool.
type Store struct {
	db     DB
	logger *zap.Logger
}

// Connect opens a pool for databaseURL, pings it and makes sure the table exists.
func Connect(ctx context.Context, databaseURL string, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	s := New(pool, logger)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool or connection.
func New(db DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// EnsureSchema creates the records table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("database error creating schema: %w", err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, rec interview.Record) error {
	config, history, feedback, err := encode(rec)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO interview_records (id, created_at, config, history, feedback)
		VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.CreatedAt, config, history, feedback,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return store.ErrAlreadyExists
		}
		s.logger.Error("insert interview record failed", zap.String("id", rec.ID), zap.Error(err))
		return fmt.Errorf("database error creating record: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (interview.Record, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, created_at, config, history, feedback
		FROM interview_records
		WHERE id = $1`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return interview.Record{}, store.ErrNotFound
		}
		return interview.Record{}, fmt.Errorf("database error fetching record: %w", err)
	}
	return rec, nil
}

func (s *Store) List(ctx context.Context) ([]interview.Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, created_at, config, history, feedback
		FROM interview_records
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("database error listing records: %w", err)
	}
	defer rows.Close()

	out := make([]interview.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("database error scanning record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error iterating records: %w", err)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM interview_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("database error deleting record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Close closes the pool when the store owns one.
func (s *Store) Close() error {
	if c, ok := s.db.(interface{ Close() }); ok {
		c.Close()
	}
	return nil
}

func encode(rec interview.Record) (config, history, feedback []byte, err error) {
	if config, err = json.Marshal(rec.Config); err != nil {
		return nil, nil, nil, fmt.Errorf("encode config: %w", err)
	}
	if history, err = json.Marshal(rec.History); err != nil {
		return nil, nil, nil, fmt.Errorf("encode history: %w", err)
	}
	if feedback, err = json.Marshal(rec.Feedback); err != nil {
		return nil, nil, nil, fmt.Errorf("encode feedback: %w", err)
	}
	return config, history, feedback, nil
}

func scanRecord(row pgx.Row) (interview.Record, error) {
	var (
		rec                       interview.Record
		config, history, feedback []byte
	)
	if err := row.Scan(&rec.ID, &rec.CreatedAt, &config, &history, &feedback); err != nil {
		return interview.Record{}, err
	}
	if err := json.Unmarshal(config, &rec.Config); err != nil {
		return interview.Record{}, fmt.Errorf("decode config: %w", err)
	}
	if err := json.Unmarshal(history, &rec.History); err != nil {
		return interview.Record{}, fmt.Errorf("decode history: %w", err)
	}
	if err := json.Unmarshal(feedback, &rec.Feedback); err != nil {
		return interview.Record{}, fmt.Errorf("decode feedback: %w", err)
	}
	return rec, nil
}
