package testdoubles

import (
	"context"
	"sync"
	"time"

	"github.com/AntonStoeckl/library-desk-go/recordstore"
)

// SpyMetricRecord represents one recorded metric call.
type SpyMetricRecord struct {
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
}

// MetricsCollectorSpy captures metrics calls for testing. It implements ContextualMetricsCollector.
type MetricsCollectorSpy struct {
	mu        sync.Mutex
	durations []SpyMetricRecord
	counters  []SpyMetricRecord
	values    []SpyMetricRecord
}

// NewMetricsCollectorSpy creates a new MetricsCollectorSpy.
func NewMetricsCollectorSpy() *MetricsCollectorSpy {
	return &MetricsCollectorSpy{}
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.durations = append(s.durations, SpyMetricRecord{Metric: metric, Duration: duration, Labels: labels})
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters = append(s.counters, SpyMetricRecord{Metric: metric, Value: 1, Labels: labels})
}

func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = append(s.values, SpyMetricRecord{Metric: metric, Value: value, Labels: labels})
}

func (s *MetricsCollectorSpy) RecordDurationContext(_ context.Context, metric string, duration time.Duration, labels map[string]string) {
	s.RecordDuration(metric, duration, labels)
}

func (s *MetricsCollectorSpy) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	s.IncrementCounter(metric, labels)
}

func (s *MetricsCollectorSpy) RecordValueContext(_ context.Context, metric string, value float64, labels map[string]string) {
	s.RecordValue(metric, value, labels)
}

// DurationRecords returns all recorded durations for metric.
func (s *MetricsCollectorSpy) DurationRecords(metric string) []SpyMetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return filterByMetric(s.durations, metric)
}

// CounterRecords returns all recorded counter increments for metric.
func (s *MetricsCollectorSpy) CounterRecords(metric string) []SpyMetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return filterByMetric(s.counters, metric)
}

func filterByMetric(records []SpyMetricRecord, metric string) []SpyMetricRecord {
	var matching []SpyMetricRecord
	for _, record := range records {
		if record.Metric == metric {
			matching = append(matching, record)
		}
	}

	return matching
}

var _ recordstore.ContextualMetricsCollector = (*MetricsCollectorSpy)(nil)
