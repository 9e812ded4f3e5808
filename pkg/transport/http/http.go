package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/Ruscigno/AlphaPulse/pkg/endpoint"
	apperrors "github.com/Ruscigno/AlphaPulse/pkg/errors"
	"github.com/Ruscigno/AlphaPulse/pkg/middleware"
	"github.com/Ruscigno/AlphaPulse/pkg/service"
	httptransport "github.com/go-kit/kit/transport/http"
	"go.uber.org/zap"
)

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	APIKey            string
	MaxBodySize       int64
	RequestsPerSecond int
	BurstSize         int
	Logger            *zap.Logger
	AllowedOrigins    []string
}

// NewHTTPHandler sets up HTTP handlers for the endpoints with middleware.
func NewHTTPHandler(endpoints endpoint.Endpoints, config HTTPConfig) http.Handler {
	mux := http.NewServeMux()

	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(encodeError),
	}

	// Validate and Build endpoint
	mux.Handle("/validate", httptransport.NewServer(
		endpoints.ValidateAndBuild,
		decodeValidateRequest,
		encodeResponse,
		options...,
	))

	// Function listing endpoint
	mux.Handle("/functions", httptransport.NewServer(
		endpoints.ListFunctions,
		decodeListFunctionsRequest,
		encodeResponse,
		options...,
	))

	// Single function contract endpoint
	mux.Handle("/functions/", httptransport.NewServer(
		endpoints.GetFunction,
		decodeGetFunctionRequest,
		encodeResponse,
		options...,
	))

	// Feed fetch endpoint
	mux.Handle("/fetch", httptransport.NewServer(
		endpoints.FetchData,
		decodeFetchRequest,
		encodeResponse,
		options...,
	))

	// Schema reload endpoint
	mux.Handle("/schema/reload", httptransport.NewServer(
		endpoints.ReloadSchema,
		decodeReloadSchemaRequest,
		encodeResponse,
		options...,
	))

	// Request journal listing endpoint
	mux.Handle("/requests", httptransport.NewServer(
		endpoints.ListRequests,
		decodeListRequestsRequest,
		encodeResponse,
		options...,
	))

	// Health Check endpoint (no authentication required)
	mux.Handle("/health", httptransport.NewServer(
		endpoints.CheckHealth,
		decodeHealthRequest,
		encodeResponse,
		options...,
	))

	// Apply middleware stack
	var handler http.Handler = mux

	// Apply middleware in reverse order (last applied = first executed)
	handler = middleware.RequestLogging(middleware.LoggingConfig{
		Logger: config.Logger,
	})(handler)
	handler = middleware.RequestValidation(middleware.ValidationConfig{
		MaxBodySize: config.MaxBodySize,
		Logger:      config.Logger,
	})(handler)
	handler = middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: config.RequestsPerSecond,
		BurstSize:         config.BurstSize,
		Logger:            config.Logger,
	})(handler)
	handler = middleware.APIKeyAuth(middleware.AuthConfig{
		APIKey: config.APIKey,
		Logger: config.Logger,
	})(handler)
	handler = middleware.CORS(config.AllowedOrigins)(handler)
	handler = middleware.RequestID()(handler)

	return handler
}

// badRequest builds a fresh error per decode failure. The WithX builders
// mutate their receiver, so the predefined package-level errors must never
// be decorated here: one request's cause or details would bleed into every
// other response sharing the pointer.
func badRequest() *apperrors.AppError {
	return apperrors.NewAppError(apperrors.ErrCodeBadRequest, "Invalid request")
}

func decodeValidateRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req service.BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, badRequest().WithCause(err)
	}
	return req, nil
}

func decodeListFunctionsRequest(_ context.Context, r *http.Request) (interface{}, error) {
	// No request body needed for listing functions
	return nil, nil
}

func decodeGetFunctionRequest(_ context.Context, r *http.Request) (interface{}, error) {
	// Extract function id from URL path
	id := strings.TrimPrefix(r.URL.Path, "/functions/")
	if id == "" {
		return nil, badRequest().WithDetails("function id is required")
	}
	return id, nil
}

func decodeFetchRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req service.FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, badRequest().WithCause(err)
	}
	return req, nil
}

func decodeReloadSchemaRequest(_ context.Context, r *http.Request) (interface{}, error) {
	// Reload takes no parameters
	return nil, nil
}

func decodeListRequestsRequest(_ context.Context, r *http.Request) (interface{}, error) {
	limit := 0 // journal applies its own default
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, badRequest().WithDetails("limit must be a non-negative integer")
		}
		limit = n
	}
	return limit, nil
}

func decodeHealthRequest(_ context.Context, r *http.Request) (interface{}, error) {
	// Health check doesn't need any request parameters
	return nil, nil
}

func encodeResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(response)
}

func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")

	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		appErr = apperrors.NewAppError(apperrors.ErrCodeInternal, "Internal server error").WithCause(err)
	}
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(appErr.ToErrorResponse())
}
