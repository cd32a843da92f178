package testdoubles

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/library-desk-go/recordstore"
)

// SpySpan is a span captured by TracingCollectorSpy.
type SpySpan struct {
	mu       sync.Mutex
	Name     string
	Attrs    map[string]string
	Status   string
	Finished bool
}

// SetStatus implements recordstore.SpanContext.
func (s *SpySpan) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Status = status
}

// AddAttribute implements recordstore.SpanContext.
func (s *SpySpan) AddAttribute(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Attrs[key] = value
}

// TracingCollectorSpy captures spans for testing.
type TracingCollectorSpy struct {
	mu    sync.Mutex
	spans []*SpySpan
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy.
func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

// StartSpan implements recordstore.TracingCollector.
func (t *TracingCollectorSpy) StartSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, recordstore.SpanContext) {

	span := &SpySpan{Name: name, Attrs: make(map[string]string, len(attrs))}
	for key, value := range attrs {
		span.Attrs[key] = value
	}

	t.mu.Lock()
	t.spans = append(t.spans, span)
	t.mu.Unlock()

	return ctx, span
}

// FinishSpan implements recordstore.TracingCollector.
func (t *TracingCollectorSpy) FinishSpan(spanCtx recordstore.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*SpySpan)
	if !ok {
		return
	}

	span.mu.Lock()
	defer span.mu.Unlock()

	for key, value := range attrs {
		span.Attrs[key] = value
	}
	span.Status = status
	span.Finished = true
}

// SpansNamed returns all captured spans with the given name.
func (t *TracingCollectorSpy) SpansNamed(name string) []*SpySpan {
	t.mu.Lock()
	defer t.mu.Unlock()

	var matching []*SpySpan
	for _, span := range t.spans {
		if span.Name == name {
			matching = append(matching, span)
		}
	}

	return matching
}

var _ recordstore.TracingCollector = (*TracingCollectorSpy)(nil)
