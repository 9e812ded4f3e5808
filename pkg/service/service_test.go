package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Ruscigno/AlphaPulse/feed"
	apperrors "github.com/Ruscigno/AlphaPulse/pkg/errors"
	"github.com/Ruscigno/AlphaPulse/pkg/metrics"
	"github.com/Ruscigno/AlphaPulse/pkg/query"
	"github.com/Ruscigno/AlphaPulse/pkg/repository"
	"github.com/Ruscigno/AlphaPulse/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAsset = `{
	"SMA": {
		"verbose": "simple moving average",
		"desc": "",
		"req": ["interval", "time_period", "series_type"],
		"opt": ["datatype"]
	},
	"TIME_SERIES_WEEKLY": {
		"verbose": "Weekly Time Series",
		"desc": "",
		"req": [],
		"opt": ["outputsize", "datatype"]
	}
}`

// MockJournal implements repository.RequestJournal and captures calls
type MockJournal struct {
	dispatches []string
	rejections []string
	records    []*repository.RequestRecord
	listErr    error
	lastLimit  int
}

func (m *MockJournal) RecordDispatch(ctx context.Context, function, symbol, query string) error {
	m.dispatches = append(m.dispatches, function+"|"+symbol+"|"+query)
	return nil
}

func (m *MockJournal) RecordRejection(ctx context.Context, function, errorCode, errorDetail string) error {
	m.rejections = append(m.rejections, function+"|"+errorCode)
	return nil
}

func (m *MockJournal) ListRecent(ctx context.Context, limit int) ([]*repository.RequestRecord, error) {
	m.lastLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.records, nil
}

// MockFeed implements feed.FeedConsumer
type MockFeed struct {
	lastSymbol string
	lastQuery  string
	err        error
}

func (m *MockFeed) Fetch(ctx context.Context, symbol string, req *query.CanonicalRequest) (map[string]interface{}, error) {
	m.lastSymbol = symbol
	m.lastQuery = req.Encode()
	if m.err != nil {
		return nil, m.err
	}
	return map[string]interface{}{"ok": true}, nil
}

func loaderFor(asset string) RegistryLoader {
	return func() (*schema.Registry, error) {
		return schema.Load(strings.NewReader(asset))
	}
}

func newTestService(t *testing.T, feedConsumer *MockFeed, journal *MockJournal) Service {
	t.Helper()
	logger := zap.NewNop()
	appMetrics := metrics.NewApplicationMetrics(metrics.NewSimpleMetricsCollector(logger), logger)

	var j repository.RequestJournal
	if journal != nil {
		j = journal
	}
	svc, err := NewService(loaderFor(testAsset), feedOrNil(feedConsumer), j, nil, logger, appMetrics)
	require.NoError(t, err)
	return svc
}

// A typed nil would defeat the nil feed check in FetchData.
func feedOrNil(m *MockFeed) feed.FeedConsumer {
	if m == nil {
		return nil
	}
	return m
}

func TestNewServiceFailsOnBadAsset(t *testing.T) {
	logger := zap.NewNop()
	appMetrics := metrics.NewApplicationMetrics(metrics.NewSimpleMetricsCollector(logger), logger)

	svc, err := NewService(loaderFor(`{}`), nil, nil, nil, logger, appMetrics)
	require.Error(t, err)
	assert.Nil(t, svc, "A process must not serve without a loaded registry")

	var loadErr *schema.SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidateAndBuild(t *testing.T) {
	svc := newTestService(t, nil, nil)

	resp, err := svc.ValidateAndBuild(context.Background(), BuildRequest{
		Function: "SMA",
		Params: map[string]string{
			"interval":    "daily",
			"time_period": "20",
			"series_type": "close",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "SMA", resp.Function)
	assert.Equal(t, "function=SMA&interval=daily&time_period=20&series_type=close", resp.Query)
	require.Len(t, resp.Params, 4)
	assert.Equal(t, query.Param{Key: "function", Value: "SMA"}, resp.Params[0])
}

func TestValidateAndBuildRejectionIsJournaled(t *testing.T) {
	journal := &MockJournal{}
	svc := newTestService(t, nil, journal)

	_, err := svc.ValidateAndBuild(context.Background(), BuildRequest{
		Function: "SMA",
		Params:   map[string]string{"interval": "daily"},
	})
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeMissingParameters, appErr.Code)

	require.Len(t, journal.rejections, 1)
	assert.Equal(t, "SMA|MISSING_REQUIRED_PARAMETERS", journal.rejections[0])
}

func TestValidateAndBuildUnknownFunction(t *testing.T) {
	svc := newTestService(t, nil, nil)

	_, err := svc.ValidateAndBuild(context.Background(), BuildRequest{Function: "NOT_A_FUNCTION"})
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeUnknownFunction, appErr.Code)
	assert.Equal(t, 404, appErr.HTTPStatus)
}

func TestListFunctions(t *testing.T) {
	svc := newTestService(t, nil, nil)

	resp, err := svc.ListFunctions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "SMA", resp.Functions[0].ID)
	assert.Equal(t, "simple moving average", resp.Functions[0].Label)
	assert.Equal(t, "TIME_SERIES_WEEKLY", resp.Functions[1].ID)
}

func TestGetFunction(t *testing.T) {
	svc := newTestService(t, nil, nil)

	resp, err := svc.GetFunction(context.Background(), "SMA")
	require.NoError(t, err)
	assert.Equal(t, []string{"interval", "time_period", "series_type"}, resp.Required)
	assert.Equal(t, []string{"datatype"}, resp.Optional)

	_, err = svc.GetFunction(context.Background(), "NOPE")
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeUnknownFunction, appErr.Code)
}

func TestFetchData(t *testing.T) {
	journal := &MockJournal{}
	mockFeed := &MockFeed{}
	svc := newTestService(t, mockFeed, journal)

	resp, err := svc.FetchData(context.Background(), FetchRequest{
		Function: "TIME_SERIES_WEEKLY",
		Symbol:   "MSFT",
		Params:   map[string]string{"outputsize": "full"},
	})
	require.NoError(t, err)
	assert.Equal(t, "MSFT", resp.Symbol)
	assert.Equal(t, map[string]interface{}{"ok": true}, resp.Data)

	assert.Equal(t, "MSFT", mockFeed.lastSymbol)
	assert.Equal(t, "function=TIME_SERIES_WEEKLY&outputsize=full", mockFeed.lastQuery)
	require.Len(t, journal.dispatches, 1)
	assert.Equal(t, "TIME_SERIES_WEEKLY|MSFT|function=TIME_SERIES_WEEKLY&outputsize=full", journal.dispatches[0])
}

func TestFetchDataRequiresSymbol(t *testing.T) {
	svc := newTestService(t, &MockFeed{}, nil)

	_, err := svc.FetchData(context.Background(), FetchRequest{Function: "TIME_SERIES_WEEKLY"})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeBadRequest, appErr.Code)
}

func TestFetchDataWithoutFeed(t *testing.T) {
	svc := newTestService(t, nil, nil)

	_, err := svc.FetchData(context.Background(), FetchRequest{
		Function: "TIME_SERIES_WEEKLY",
		Symbol:   "MSFT",
	})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeServiceUnavailable, appErr.Code)
}

func TestFetchDataFeedFailure(t *testing.T) {
	journal := &MockJournal{}
	mockFeed := &MockFeed{err: errors.New("upstream unreachable")}
	svc := newTestService(t, mockFeed, journal)

	_, err := svc.FetchData(context.Background(), FetchRequest{
		Function: "TIME_SERIES_WEEKLY",
		Symbol:   "MSFT",
	})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeAlphaVantageAPI, appErr.Code)
	assert.Empty(t, journal.dispatches, "Failed dispatches are not journaled as dispatched")
}

func TestReloadSchemaSwapsRegistry(t *testing.T) {
	assets := []string{testAsset, `{
		"EMA": {"verbose": "exponential moving average", "desc": "", "req": ["interval"], "opt": []}
	}`}
	i := 0
	loader := func() (*schema.Registry, error) {
		registry, err := schema.Load(strings.NewReader(assets[i]))
		if i < len(assets)-1 {
			i++
		}
		return registry, err
	}

	logger := zap.NewNop()
	appMetrics := metrics.NewApplicationMetrics(metrics.NewSimpleMetricsCollector(logger), logger)
	svc, err := NewService(loader, nil, nil, nil, logger, appMetrics)
	require.NoError(t, err)

	_, err = svc.GetFunction(context.Background(), "SMA")
	require.NoError(t, err)

	resp, err := svc.ReloadSchema(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Functions)
	assert.NotEmpty(t, resp.ReloadedAt)

	_, err = svc.GetFunction(context.Background(), "SMA")
	assert.Error(t, err, "The old registry is gone after the swap")
	_, err = svc.GetFunction(context.Background(), "EMA")
	assert.NoError(t, err)
}

func TestReloadSchemaFailureKeepsCurrentRegistry(t *testing.T) {
	calls := 0
	loader := func() (*schema.Registry, error) {
		calls++
		if calls == 1 {
			return schema.Load(strings.NewReader(testAsset))
		}
		return schema.Load(strings.NewReader(`{}`))
	}

	logger := zap.NewNop()
	appMetrics := metrics.NewApplicationMetrics(metrics.NewSimpleMetricsCollector(logger), logger)
	svc, err := NewService(loader, nil, nil, nil, logger, appMetrics)
	require.NoError(t, err)

	_, err = svc.ReloadSchema(context.Background())
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeSchemaLoad, appErr.Code)

	// Validation keeps running on the registry loaded before the failure.
	_, err = svc.GetFunction(context.Background(), "SMA")
	assert.NoError(t, err)
}

func TestListRequests(t *testing.T) {
	journal := &MockJournal{
		records: []*repository.RequestRecord{
			{Function: "SMA", Status: repository.RequestStatusRejected},
			{Function: "TIME_SERIES_WEEKLY", Status: repository.RequestStatusDispatched},
		},
	}
	svc := newTestService(t, nil, journal)

	resp, err := svc.ListRequests(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "SMA", resp.Requests[0].Function)
	assert.Equal(t, 10, journal.lastLimit)
}

func TestListRequestsWithoutJournal(t *testing.T) {
	svc := newTestService(t, nil, nil)

	resp, err := svc.ListRequests(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Total)
}

func TestListRequestsJournalFailure(t *testing.T) {
	journal := &MockJournal{listErr: errors.New("connection reset")}
	svc := newTestService(t, nil, journal)

	_, err := svc.ListRequests(context.Background(), 10)
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeDatabaseError, appErr.Code)
}

func TestCheckHealth(t *testing.T) {
	svc := newTestService(t, nil, nil)

	resp, err := svc.CheckHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, HealthStatusDegraded, resp.Status, "No feed configured degrades the service")
	assert.Equal(t, Version, resp.Version)

	names := make([]string, 0, len(resp.Components))
	for _, c := range resp.Components {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "schema_registry")
	assert.Contains(t, names, "data_feed")
}

func TestCheckHealthWithFeed(t *testing.T) {
	svc := newTestService(t, &MockFeed{}, nil)

	resp, err := svc.CheckHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, HealthStatusHealthy, resp.Status)
}
