package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/Ruscigno/AlphaPulse/pkg/query"
	"github.com/Ruscigno/AlphaPulse/pkg/retry"
	"go.uber.org/zap"
)

const (
	DATA_TYPE         = "json" // Output format appended when the call omits datatype
	ALPHA_VANTAGE_URL = "https://www.alphavantage.co/query"
)

type alphaVantageFeed struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *retry.CircuitBreaker
	retries retry.RetryConfig
	logger  *zap.Logger
}

// NewAlphaVantageFeed creates a FeedConsumer that issues canonical requests
// against the Alpha Vantage query endpoint. baseURL may be empty, in which
// case the public endpoint is used.
func NewAlphaVantageFeed(baseURL, apiKey string, logger *zap.Logger) FeedConsumer {
	if apiKey == "" {
		logger.Fatal("Alpha Vantage API key is missing. Please set ALPHA_VANTAGE_API_KEY")
	}
	if baseURL == "" {
		baseURL = ALPHA_VANTAGE_URL
	}
	retries := retry.DefaultRetryConfig()
	retries.Logger = logger
	return &alphaVantageFeed{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  http.DefaultClient,
		breaker: retry.NewCircuitBreaker(retry.DefaultCircuitBreakerConfig(DataFeedProviderAlphaVantage)),
		retries: retries,
		logger:  logger,
	}
}

// Fetch issues the canonical request, appending symbol, apikey, and a json
// datatype default. These never appear in the per-function parameter
// contract, so they are attached here, after validation.
func (s *alphaVantageFeed) Fetch(ctx context.Context, symbol string, req *query.CanonicalRequest) (map[string]interface{}, error) {
	queryURL := s.buildURL(symbol, req)

	data, err := retry.RetryWithResult(ctx, s.retries, func() (map[string]interface{}, error) {
		var payload map[string]interface{}
		err := s.breaker.Execute(ctx, func(ctx context.Context) error {
			var fetchErr error
			payload, fetchErr = s.fetchOnce(ctx, queryURL)
			return fetchErr
		})
		return payload, err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Downloaded feed data",
		zap.String("function", req.Function()),
		zap.String("symbol", symbol))
	return NormalizeResponse(data, req.Function()), nil
}

func (s *alphaVantageFeed) buildURL(symbol string, req *query.CanonicalRequest) string {
	q := req.Encode()
	q += "&symbol=" + url.QueryEscape(symbol)
	if _, ok := lookupPair(req, "datatype"); !ok {
		q += "&datatype=" + DATA_TYPE
	}
	q += "&apikey=" + url.QueryEscape(s.apiKey)
	return s.baseURL + "?" + q
}

func lookupPair(req *query.CanonicalRequest, key string) (string, bool) {
	for _, p := range req.Pairs() {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

func (s *alphaVantageFeed) fetchOnce(ctx context.Context, queryURL string) (map[string]interface{}, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		s.logger.Error("HTTP request failed", zap.Error(err))
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("Non-200 response", zap.String("status", resp.Status))
		return nil, fmt.Errorf("non-200 response: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.logger.Error("Failed to read response body", zap.Error(err))
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		s.logger.Error("Error parsing feed data", zap.Error(err))
		return nil, fmt.Errorf("error parsing feed data: %w", err)
	}
	return payload, nil
}
