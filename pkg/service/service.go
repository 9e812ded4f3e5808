package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Ruscigno/AlphaPulse/feed"
	apperrors "github.com/Ruscigno/AlphaPulse/pkg/errors"
	"github.com/Ruscigno/AlphaPulse/pkg/metrics"
	"github.com/Ruscigno/AlphaPulse/pkg/query"
	"github.com/Ruscigno/AlphaPulse/pkg/repository"
	"github.com/Ruscigno/AlphaPulse/pkg/schema"
	"go.uber.org/zap"
)

// BuildRequest defines the input for validating and building a call
type BuildRequest struct {
	Function string            `json:"function" validate:"required"`
	Params   map[string]string `json:"params"`
}

// BuildResponse defines the canonical request produced for a valid call
type BuildResponse struct {
	Function string        `json:"function"`
	Params   []query.Param `json:"params"`
	Query    string        `json:"query"`
}

// FunctionSummary is one row of a function listing
type FunctionSummary struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ListFunctionsResponse defines the response for listing functions
type ListFunctionsResponse struct {
	Functions []FunctionSummary `json:"functions"`
	Total     int               `json:"total"`
}

// FunctionResponse defines the full parameter contract of one function
type FunctionResponse struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Desc     string   `json:"desc,omitempty"`
	Required []string `json:"required"`
	Optional []string `json:"optional"`
}

// FetchRequest defines the input for fetching data from the remote feed
type FetchRequest struct {
	Function string            `json:"function" validate:"required"`
	Symbol   string            `json:"symbol" validate:"required"`
	Params   map[string]string `json:"params"`
}

// FetchResponse defines the response for a feed fetch
type FetchResponse struct {
	Function string                 `json:"function"`
	Symbol   string                 `json:"symbol"`
	Data     map[string]interface{} `json:"data"`
}

// ReloadSchemaResponse defines the response for a schema reload
type ReloadSchemaResponse struct {
	Functions  int    `json:"functions"`
	ReloadedAt string `json:"reloadedAt"`
}

// ListRequestsResponse defines the response for listing journaled requests
type ListRequestsResponse struct {
	Requests []*repository.RequestRecord `json:"requests"`
	Total    int                         `json:"total"`
}

// Service defines the query validation and construction service interface
type Service interface {
	ValidateAndBuild(ctx context.Context, req BuildRequest) (BuildResponse, error)
	ListFunctions(ctx context.Context) (ListFunctionsResponse, error)
	GetFunction(ctx context.Context, id string) (FunctionResponse, error)
	FetchData(ctx context.Context, req FetchRequest) (FetchResponse, error)
	ReloadSchema(ctx context.Context) (ReloadSchemaResponse, error)
	ListRequests(ctx context.Context, limit int) (ListRequestsResponse, error)
	CheckHealth(ctx context.Context) (HealthResponse, error)
}

// RegistryLoader produces a fresh Registry, at startup and on reload
type RegistryLoader func() (*schema.Registry, error)

// service implements the Service interface. The engine pointer is swapped
// atomically on reload; in-flight calls keep the engine they resolved.
type service struct {
	engine    atomic.Pointer[query.Engine]
	loader    RegistryLoader
	feed      feed.FeedConsumer // nil when no feed credentials are configured
	journal   repository.RequestJournal
	health    HealthChecker
	logger    *zap.Logger
	metrics   *metrics.ApplicationMetrics
	startTime time.Time
}

// NewService creates a new Service instance. The loader runs once here;
// a load failure is fatal and no Service is returned.
func NewService(
	loader RegistryLoader,
	feedConsumer feed.FeedConsumer,
	journal repository.RequestJournal,
	health HealthChecker,
	logger *zap.Logger,
	appMetrics *metrics.ApplicationMetrics,
) (Service, error) {
	registry, err := loader()
	if err != nil {
		return nil, err
	}
	if journal == nil {
		journal = repository.NewNopJournal()
	}

	s := &service{
		loader:    loader,
		feed:      feedConsumer,
		journal:   journal,
		health:    health,
		logger:    logger,
		metrics:   appMetrics,
		startTime: time.Now(),
	}
	s.engine.Store(query.NewEngine(registry))
	s.metrics.SetSchemaFunctions(registry.Len())

	logger.Info("Schema registry loaded", zap.Int("functions", registry.Len()))
	return s, nil
}

// ValidateAndBuild validates the supplied parameters against the function's
// contract and returns the canonical request for transport.
func (s *service) ValidateAndBuild(ctx context.Context, req BuildRequest) (BuildResponse, error) {
	engine := s.engine.Load()

	canonical, err := engine.ValidateAndBuild(req.Function, req.Params)
	if err != nil {
		return BuildResponse{}, s.rejected(ctx, req.Function, err)
	}

	s.metrics.RecordValidation(req.Function, true)
	return BuildResponse{
		Function: canonical.Function(),
		Params:   canonical.Pairs(),
		Query:    canonical.Encode(),
	}, nil
}

// ListFunctions lists every function the loaded schema declares.
func (s *service) ListFunctions(ctx context.Context) (ListFunctionsResponse, error) {
	registry := s.engine.Load().Registry()

	ids := registry.Functions()
	functions := make([]FunctionSummary, 0, len(ids))
	for _, id := range ids {
		spec, err := registry.Lookup(id)
		if err != nil {
			continue
		}
		functions = append(functions, FunctionSummary{ID: spec.ID, Label: spec.Label})
	}
	return ListFunctionsResponse{Functions: functions, Total: len(functions)}, nil
}

// GetFunction returns the full parameter contract of one function.
func (s *service) GetFunction(ctx context.Context, id string) (FunctionResponse, error) {
	registry := s.engine.Load().Registry()

	spec, err := registry.Lookup(id)
	if err != nil {
		return FunctionResponse{}, apperrors.FromEngineError(err)
	}
	return FunctionResponse{
		ID:       spec.ID,
		Label:    spec.Label,
		Desc:     spec.Desc,
		Required: spec.Required,
		Optional: spec.Optional,
	}, nil
}

// rejected records a validation failure in metrics and the journal, then
// maps the engine error for the caller.
func (s *service) rejected(ctx context.Context, function string, err error) error {
	appErr := apperrors.FromEngineError(err)

	s.metrics.RecordValidation(function, false)
	s.metrics.RecordValidationFailure(function, string(appErr.Code))
	if journalErr := s.journal.RecordRejection(ctx, function, string(appErr.Code), appErr.Details); journalErr != nil {
		s.logger.Warn("Failed to journal rejection", zap.Error(journalErr))
	}

	s.logger.Info("Call rejected",
		zap.String("function", function),
		zap.String("code", string(appErr.Code)))
	return appErr
}
