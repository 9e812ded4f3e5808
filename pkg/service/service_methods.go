package service

import (
	"context"
	"time"

	apperrors "github.com/Ruscigno/AlphaPulse/pkg/errors"
	"github.com/Ruscigno/AlphaPulse/pkg/query"
	"go.uber.org/zap"
)

// FetchData validates and builds the call, then dispatches it to the remote
// feed. The symbol and credentials ride outside the per-function contract;
// the feed consumer attaches them.
func (s *service) FetchData(ctx context.Context, req FetchRequest) (FetchResponse, error) {
	if req.Symbol == "" {
		return FetchResponse{}, apperrors.NewAppError(apperrors.ErrCodeBadRequest, "Symbol is required")
	}
	if s.feed == nil {
		return FetchResponse{}, apperrors.NewAppError(apperrors.ErrCodeServiceUnavailable,
			"No data feed configured")
	}

	engine := s.engine.Load()
	canonical, err := engine.ValidateAndBuild(req.Function, req.Params)
	if err != nil {
		return FetchResponse{}, s.rejected(ctx, req.Function, err)
	}
	s.metrics.RecordValidation(req.Function, true)

	start := time.Now()
	data, err := s.feed.Fetch(ctx, req.Symbol, canonical)
	s.metrics.RecordDispatch(req.Function, err == nil, time.Since(start))
	if err != nil {
		s.logger.Error("Feed dispatch failed",
			zap.String("function", req.Function),
			zap.String("symbol", req.Symbol),
			zap.Error(err))
		return FetchResponse{}, apperrors.WrapError(err, apperrors.ErrCodeAlphaVantageAPI,
			"Feed dispatch failed")
	}

	if journalErr := s.journal.RecordDispatch(ctx, req.Function, req.Symbol, canonical.Encode()); journalErr != nil {
		s.logger.Warn("Failed to journal dispatch", zap.Error(journalErr))
	}

	return FetchResponse{
		Function: req.Function,
		Symbol:   req.Symbol,
		Data:     data,
	}, nil
}

// ListRequests returns the most recent journal entries, dispatched and
// rejected alike. Without a configured database the journal is empty.
func (s *service) ListRequests(ctx context.Context, limit int) (ListRequestsResponse, error) {
	records, err := s.journal.ListRecent(ctx, limit)
	if err != nil {
		return ListRequestsResponse{}, apperrors.WrapError(err, apperrors.ErrCodeDatabaseError,
			"Failed to list journal records")
	}
	return ListRequestsResponse{Requests: records, Total: len(records)}, nil
}

// ReloadSchema loads a fresh Registry and swaps it in atomically. In-flight
// validations keep the Registry they started with; a failed load leaves the
// current Registry serving.
func (s *service) ReloadSchema(ctx context.Context) (ReloadSchemaResponse, error) {
	registry, err := s.loader()
	if err != nil {
		s.logger.Error("Schema reload failed", zap.Error(err))
		return ReloadSchemaResponse{}, apperrors.FromEngineError(err)
	}

	s.engine.Store(query.NewEngine(registry))
	s.metrics.SetSchemaFunctions(registry.Len())

	s.logger.Info("Schema registry reloaded", zap.Int("functions", registry.Len()))
	return ReloadSchemaResponse{
		Functions:  registry.Len(),
		ReloadedAt: time.Now().Format(time.RFC3339),
	}, nil
}
