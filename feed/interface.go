package feed

import (
	"context"

	"github.com/Ruscigno/AlphaPulse/pkg/query"
)

const (
	DataFeedProviderAlphaVantage = "alphavantage"
)

// FeedConsumer dispatches canonical requests against a remote data feed and
// returns the decoded payload. Symbol and credentials are the consumer's
// concern; the canonical request carries only the validated function
// parameters.
type FeedConsumer interface {
	Fetch(ctx context.Context, symbol string, req *query.CanonicalRequest) (map[string]interface{}, error)
}
