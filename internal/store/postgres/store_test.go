package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/ai-interviewer/backend/internal/model/interview"
	"github.com/zhouzirui/ai-interviewer/backend/internal/store"
)

func sampleRecord(id string, createdAt int64) interview.Record {
	return interview.Record{
		ID:        id,
		CreatedAt: createdAt,
		Config:    interview.Config{JobTitle: "SRE", InterviewType: interview.TypeTechnical},
		History:   []interview.Message{{Role: interview.RoleUser, Text: "hi", Timestamp: createdAt}},
		Feedback:  interview.Feedback{Score: 60, Pros: []string{}, Cons: []string{}, Suggestions: []string{}},
	}
}

func rowOf(t *testing.T, rec interview.Record) []any {
	t.Helper()
	config, history, feedback, err := encode(rec)
	require.NoError(t, err)
	return []any{rec.ID, rec.CreatedAt, config, history, feedback}
}

func TestEncodeProducesJSONColumns(t *testing.T) {
	config, history, feedback, err := encode(sampleRecord("r1", 1))
	require.NoError(t, err)
	assert.True(t, json.Valid(config))
	assert.True(t, json.Valid(history))
	assert.True(t, json.Valid(feedback))
	assert.Contains(t, string(config), `"jobTitle":"SRE"`)
	assert.Contains(t, string(feedback), `"score":60`)
}

func TestCreateInsertsEncodedRecord(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	s := New(db, nil)

	rec := sampleRecord("r1", 42)
	require.NoError(t, s.Create(context.Background(), rec))

	require.Len(t, db.execs, 1)
	call := db.execs[0]
	assert.Contains(t, call.sql, "INSERT INTO interview_records")
	require.Len(t, call.args, 5)
	assert.Equal(t, "r1", call.args[0])
	assert.Equal(t, int64(42), call.args[1])
	assert.JSONEq(t, `{"score":60,"pros":[],"cons":[],"suggestions":[],"overallSummary":""}`, string(call.args[4].([]byte)))
}

func TestCreateMapsUniqueViolation(t *testing.T) {
	db := &fakeDB{execErr: &pgconn.PgError{Code: "23505", Message: "duplicate key"}}
	err := New(db, nil).Create(context.Background(), sampleRecord("r1", 1))
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestCreateWrapsOtherErrors(t *testing.T) {
	boom := errors.New("connection reset")
	err := New(&fakeDB{execErr: boom}, nil).Create(context.Background(), sampleRecord("r1", 1))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, store.ErrAlreadyExists)
}

func TestGetDecodesRow(t *testing.T) {
	rec := sampleRecord("r1", 42)
	db := &fakeDB{rows: [][]any{rowOf(t, rec)}}

	got, err := New(db, nil).Get(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	_, err := New(&fakeDB{}, nil).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListKeepsNewestFirstOrder(t *testing.T) {
	newer, older := sampleRecord("b", 2000), sampleRecord("a", 1000)
	db := &fakeDB{rows: [][]any{rowOf(t, newer), rowOf(t, older)}}

	got, err := New(db, nil).List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)

	require.Len(t, db.queries, 1)
	assert.Contains(t, db.queries[0], "ORDER BY created_at DESC")
}

func TestListEmptyIsNotNil(t *testing.T) {
	got, err := New(&fakeDB{}, nil).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDeleteWithoutRowsReturnsNotFound(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("DELETE 0")}
	assert.ErrorIs(t, New(db, nil).Delete(context.Background(), "nope"), store.ErrNotFound)

	db = &fakeDB{execTag: pgconn.NewCommandTag("DELETE 1")}
	assert.NoError(t, New(db, nil).Delete(context.Background(), "r1"))
}

func TestCloseClosesOwnedPool(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, New(db, nil).Close())
	assert.True(t, db.closed)
}
