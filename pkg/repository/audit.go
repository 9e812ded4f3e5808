package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Ruscigno/AlphaPulse/pkg/database"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestStatus represents the outcome of a call request
type RequestStatus string

const (
	RequestStatusDispatched RequestStatus = "DISPATCHED"
	RequestStatusRejected   RequestStatus = "REJECTED"
)

// RequestRecord is one journal row: a dispatched canonical request or a
// rejected call. The engine stays pure; journaling happens at the service
// layer after the fact.
type RequestRecord struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	Function    string        `db:"function" json:"function"`
	Symbol      *string       `db:"symbol" json:"symbol,omitempty"`
	Query       string        `db:"query" json:"query"`
	Status      RequestStatus `db:"status" json:"status"`
	ErrorCode   *string       `db:"error_code" json:"error_code,omitempty"`
	ErrorDetail *string       `db:"error_detail" json:"error_detail,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}

// RequestJournal records call requests for auditing
type RequestJournal interface {
	RecordDispatch(ctx context.Context, function, symbol, query string) error
	RecordRejection(ctx context.Context, function, errorCode, errorDetail string) error
	ListRecent(ctx context.Context, limit int) ([]*RequestRecord, error)
}

// requestJournal implements RequestJournal over Postgres
type requestJournal struct {
	db     *database.DB
	logger *zap.Logger
}

// NewRequestJournal creates a Postgres-backed request journal
func NewRequestJournal(db *database.DB, logger *zap.Logger) RequestJournal {
	return &requestJournal{db: db, logger: logger}
}

const insertRecordQuery = `
	INSERT INTO request_audit (id, function, symbol, query, status, error_code, error_detail, created_at)
	VALUES (:id, :function, :symbol, :query, :status, :error_code, :error_detail, :created_at)`

func (j *requestJournal) RecordDispatch(ctx context.Context, function, symbol, query string) error {
	record := &RequestRecord{
		ID:        uuid.New(),
		Function:  function,
		Symbol:    &symbol,
		Query:     query,
		Status:    RequestStatusDispatched,
		CreatedAt: time.Now(),
	}
	return j.insert(ctx, record)
}

func (j *requestJournal) RecordRejection(ctx context.Context, function, errorCode, errorDetail string) error {
	record := &RequestRecord{
		ID:          uuid.New(),
		Function:    function,
		Status:      RequestStatusRejected,
		ErrorCode:   &errorCode,
		ErrorDetail: &errorDetail,
		CreatedAt:   time.Now(),
	}
	return j.insert(ctx, record)
}

func (j *requestJournal) insert(ctx context.Context, record *RequestRecord) error {
	if _, err := j.db.NamedExecContext(ctx, insertRecordQuery, record); err != nil {
		j.logger.Error("Failed to insert journal record",
			zap.String("function", record.Function),
			zap.Error(err))
		return fmt.Errorf("failed to insert journal record: %w", err)
	}
	return nil
}

func (j *requestJournal) ListRecent(ctx context.Context, limit int) ([]*RequestRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	records := []*RequestRecord{}
	err := j.db.SelectContext(ctx, &records,
		`SELECT * FROM request_audit ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal records: %w", err)
	}
	return records, nil
}

// nopJournal discards every record; used when no database is configured
type nopJournal struct{}

// NewNopJournal creates a journal that records nothing
func NewNopJournal() RequestJournal {
	return nopJournal{}
}

func (nopJournal) RecordDispatch(context.Context, string, string, string) error { return nil }
func (nopJournal) RecordRejection(context.Context, string, string, string) error {
	return nil
}
func (nopJournal) ListRecent(context.Context, int) ([]*RequestRecord, error) {
	return []*RequestRecord{}, nil
}
