package metrics

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MetricsCollector interface for collecting metrics
type MetricsCollector interface {
	IncrementCounter(name string, labels map[string]string)
	RecordHistogram(name string, value float64, labels map[string]string)
	SetGauge(name string, value float64, labels map[string]string)
	RecordDuration(name string, duration time.Duration, labels map[string]string)
}

// SimpleMetricsCollector is a basic in-memory metrics collector
type SimpleMetricsCollector struct {
	mu         sync.Mutex
	counters   map[string]float64
	histograms map[string][]float64
	gauges     map[string]float64
	logger     *zap.Logger
}

// NewSimpleMetricsCollector creates a new simple metrics collector
func NewSimpleMetricsCollector(logger *zap.Logger) *SimpleMetricsCollector {
	return &SimpleMetricsCollector{
		counters:   make(map[string]float64),
		histograms: make(map[string][]float64),
		gauges:     make(map[string]float64),
		logger:     logger,
	}
}

// IncrementCounter increments a counter metric
func (smc *SimpleMetricsCollector) IncrementCounter(name string, labels map[string]string) {
	key := buildMetricKey(name, labels)
	smc.mu.Lock()
	smc.counters[key]++
	value := smc.counters[key]
	smc.mu.Unlock()

	smc.logger.Debug("Counter incremented",
		zap.String("metric", name),
		zap.Any("labels", labels),
		zap.Float64("value", value))
}

// RecordHistogram records a histogram value
func (smc *SimpleMetricsCollector) RecordHistogram(name string, value float64, labels map[string]string) {
	key := buildMetricKey(name, labels)
	smc.mu.Lock()
	smc.histograms[key] = append(smc.histograms[key], value)
	smc.mu.Unlock()

	smc.logger.Debug("Histogram recorded",
		zap.String("metric", name),
		zap.Any("labels", labels),
		zap.Float64("value", value))
}

// SetGauge sets a gauge metric value
func (smc *SimpleMetricsCollector) SetGauge(name string, value float64, labels map[string]string) {
	key := buildMetricKey(name, labels)
	smc.mu.Lock()
	smc.gauges[key] = value
	smc.mu.Unlock()

	smc.logger.Debug("Gauge set",
		zap.String("metric", name),
		zap.Any("labels", labels),
		zap.Float64("value", value))
}

// RecordDuration records a duration metric
func (smc *SimpleMetricsCollector) RecordDuration(name string, duration time.Duration, labels map[string]string) {
	smc.RecordHistogram(name+"_duration_seconds", duration.Seconds(), labels)
}

// CounterValue returns the current value of a counter, for inspection
func (smc *SimpleMetricsCollector) CounterValue(name string, labels map[string]string) float64 {
	smc.mu.Lock()
	defer smc.mu.Unlock()
	return smc.counters[buildMetricKey(name, labels)]
}

// buildMetricKey builds a unique key for a metric with labels. Label keys are
// sorted so the same label set always yields the same key.
func buildMetricKey(name string, labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	key := name
	for _, k := range keys {
		key += "_" + k + "_" + labels[k]
	}
	return key
}

// ApplicationMetrics holds all application-specific metrics
type ApplicationMetrics struct {
	collector MetricsCollector
	logger    *zap.Logger
}

// NewApplicationMetrics creates a new application metrics instance
func NewApplicationMetrics(collector MetricsCollector, logger *zap.Logger) *ApplicationMetrics {
	return &ApplicationMetrics{
		collector: collector,
		logger:    logger,
	}
}

// HTTP Metrics
func (am *ApplicationMetrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	labels := map[string]string{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(statusCode),
	}

	am.collector.IncrementCounter("http_requests_total", labels)
	am.collector.RecordDuration("http_request_duration", duration, labels)
}

// Validation Metrics
func (am *ApplicationMetrics) RecordValidation(function string, success bool) {
	labels := map[string]string{
		"function": function,
		"success":  strconv.FormatBool(success),
	}

	am.collector.IncrementCounter("validations_total", labels)
}

func (am *ApplicationMetrics) RecordValidationFailure(function, code string) {
	labels := map[string]string{
		"function": function,
		"code":     code,
	}

	am.collector.IncrementCounter("validation_failures_total", labels)
}

// Dispatch Metrics
func (am *ApplicationMetrics) RecordDispatch(function string, success bool, duration time.Duration) {
	labels := map[string]string{
		"function": function,
		"success":  strconv.FormatBool(success),
	}

	am.collector.IncrementCounter("dispatches_total", labels)
	am.collector.RecordDuration("dispatch", duration, labels)
}

// Schema Metrics
func (am *ApplicationMetrics) SetSchemaFunctions(count int) {
	am.collector.SetGauge("schema_functions", float64(count), nil)
}
