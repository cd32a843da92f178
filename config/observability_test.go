package config_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log/global"

	"github.com/AntonStoeckl/library-desk-go/config"
	"github.com/AntonStoeckl/library-desk-go/recordstore/oteladapters"
)

func Test_NewObservabilityProviders_ExportsLogsOfTheSlogBridge(t *testing.T) {
	// arrange
	collector := givenOTLPCollector(t)
	cfg := config.Default().Observability
	cfg.Enabled = true
	cfg.OTLPEndpoint = collector.endpoint

	providers, err := config.NewObservabilityProviders(context.Background(), cfg, "test")
	require.NoError(t, err)

	logger := oteladapters.NewSlogBridgeLogger("library-desk-test")

	// act
	logger.InfoContext(context.Background(), "book registered", "isbn", "978-1")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownErr := providers.Shutdown(ctx)

	// assert
	require.NoError(t, shutdownErr)
	assert.Same(t, providers.LoggerProvider, global.GetLoggerProvider())
	assert.Positive(t, collector.Requests("/v1/logs"))
}

func Test_NewObservabilityProviders_ExportsLogsOfTheOTelLogger(t *testing.T) {
	// arrange
	collector := givenOTLPCollector(t)
	cfg := config.Default().Observability
	cfg.Enabled = true
	cfg.OTLPEndpoint = collector.endpoint

	providers, err := config.NewObservabilityProviders(context.Background(), cfg, "test")
	require.NoError(t, err)

	logger := oteladapters.NewOTelLogger(providers.LoggerProvider.Logger("library-desk-test"))

	// act
	logger.WarnContext(context.Background(), "catalog lookup failed", "isbn", "978-1")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// assert
	require.NoError(t, providers.Shutdown(ctx))
	assert.Positive(t, collector.Requests("/v1/logs"))
}

// otlpCollector accepts every OTLP/HTTP export and counts requests per path.
type otlpCollector struct {
	endpoint string

	mu       sync.Mutex
	requests map[string]int
}

func (c *otlpCollector) Requests(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.requests[path]
}

func givenOTLPCollector(t *testing.T) *otlpCollector {
	t.Helper()

	collector := &otlpCollector{requests: map[string]int{}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		collector.mu.Lock()
		collector.requests[r.URL.Path]++
		collector.mu.Unlock()

		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	collector.endpoint = strings.TrimPrefix(server.URL, "http://")

	return collector
}
