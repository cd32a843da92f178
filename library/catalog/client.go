package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"github.com/AntonStoeckl/library-desk-go/recordstore"
)

// ISBNPlaceholder marks where the ISBN goes in the URL template.
const ISBNPlaceholder = "{isbn}"

const (
	defaultRequestsPerSecond = 2
	defaultBurst             = 4
	defaultCacheTTL          = 24 * time.Hour
	maxResponseBytes         = 1 << 20

	logMsgLookupFailed   = "catalog lookup failed"
	logMsgLookupNoResult = "catalog lookup returned no metadata"
	logMsgLookupCacheHit = "catalog lookup served from cache"
	logAttrISBN          = "isbn"
	logAttrReason        = "reason"
	logAttrStatusCode    = "status_code"
)

var (
	// ErrInvalidURLTemplate is returned when the URL template has no ISBN placeholder or does not parse.
	ErrInvalidURLTemplate = errors.New("catalog url template must be an absolute url containing " + ISBNPlaceholder)

	// ErrInvalidRateLimit is returned for a non-positive rate or burst.
	ErrInvalidRateLimit = errors.New("catalog rate limit and burst must be positive")

	// ErrNilHTTPClient is returned when a nil http.Client is supplied.
	ErrNilHTTPClient = errors.New("http client must not be nil")
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Metadata is what a lookup can tell about a book.
type Metadata struct {
	Title  string
	Author string
}

// Client performs catalog lookups.
type Client struct {
	urlTemplate      string
	httpClient       *http.Client
	limiter          *rate.Limiter
	cache            *ttlcache.Cache[string, Metadata]
	logger           recordstore.Logger
	contextualLogger recordstore.ContextualLogger
}

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient replaces the default tuned http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient == nil {
			return ErrNilHTTPClient
		}

		c.httpClient = httpClient

		return nil
	}
}

// WithRateLimit sets how many lookups per second may leave the process, with the given burst.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) error {
		if requestsPerSecond <= 0 || burst <= 0 {
			return ErrInvalidRateLimit
		}

		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)

		return nil
	}
}

// WithCacheTTL sets how long successful lookups are cached. Zero disables the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) error {
		if ttl <= 0 {
			c.cache = nil
			return nil
		}

		c.cache = newCache(ttl)

		return nil
	}
}

// WithLogger sets a logger for lookup failures.
func WithLogger(logger recordstore.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, which takes precedence over the plain one.
func WithContextualLogger(logger recordstore.ContextualLogger) Option {
	return func(c *Client) error {
		c.contextualLogger = logger
		return nil
	}
}

// NewClient creates a Client for urlTemplate, e.g. "https://www.googleapis.com/books/v1/volumes?q=isbn:{isbn}".
func NewClient(urlTemplate string, options ...Option) (*Client, error) {
	if !strings.Contains(urlTemplate, ISBNPlaceholder) {
		return nil, ErrInvalidURLTemplate
	}

	if parsed, err := url.Parse(strings.ReplaceAll(urlTemplate, ISBNPlaceholder, "0")); err != nil || !parsed.IsAbs() {
		return nil, ErrInvalidURLTemplate
	}

	c := &Client{
		urlTemplate: urlTemplate,
		httpClient:  NewHTTPClient(),
		limiter:     rate.NewLimiter(defaultRequestsPerSecond, defaultBurst),
		cache:       newCache(defaultCacheTTL),
	}

	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// newCache creates the lookup cache. Hits do not extend an entry's lifetime, so ttl bounds its age.
func newCache(ttl time.Duration) *ttlcache.Cache[string, Metadata] {
	return ttlcache.New[string, Metadata](
		ttlcache.WithTTL[string, Metadata](ttl),
		ttlcache.WithDisableTouchOnHit[string, Metadata](),
	)
}

// Lookup returns the metadata for isbn, or false if none could be found for any reason.
// The HTTP call is the only suspension point; it ends early when ctx is canceled.
func (c *Client) Lookup(ctx context.Context, isbn string) (Metadata, bool) {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return Metadata{}, false
	}

	if c.cache != nil {
		if item := c.cache.Get(isbn); item != nil {
			c.logDebug(ctx, logMsgLookupCacheHit, logAttrISBN, isbn)
			return item.Value(), true
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		c.logInfo(ctx, logMsgLookupFailed, logAttrISBN, isbn, logAttrReason, err.Error())
		return Metadata{}, false
	}

	metadata, ok := c.fetch(ctx, isbn)
	if !ok {
		return Metadata{}, false
	}

	if c.cache != nil {
		c.cache.Set(isbn, metadata, ttlcache.DefaultTTL)
	}

	return metadata, true
}

func (c *Client) fetch(ctx context.Context, isbn string) (Metadata, bool) {
	target := strings.ReplaceAll(c.urlTemplate, ISBNPlaceholder, url.PathEscape(isbn))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		c.logInfo(ctx, logMsgLookupFailed, logAttrISBN, isbn, logAttrReason, err.Error())
		return Metadata{}, false
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logInfo(ctx, logMsgLookupFailed, logAttrISBN, isbn, logAttrReason, err.Error())
		return Metadata{}, false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logInfo(ctx, logMsgLookupFailed, logAttrISBN, isbn, logAttrStatusCode, resp.StatusCode)
		return Metadata{}, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logInfo(ctx, logMsgLookupFailed, logAttrISBN, isbn, logAttrReason, err.Error())
		return Metadata{}, false
	}

	metadata, ok := decodeMetadata(body)
	if !ok {
		c.logDebug(ctx, logMsgLookupNoResult, logAttrISBN, isbn)
		return Metadata{}, false
	}

	return metadata, true
}

// volume is the union of the understood response shapes.
type volume struct {
	Title   string   `json:"title"`
	Author  string   `json:"author"`
	Authors []string `json:"authors"`
	Items   []struct {
		VolumeInfo struct {
			Title   string   `json:"title"`
			Authors []string `json:"authors"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

func decodeMetadata(body []byte) (Metadata, bool) {
	var v volume
	if err := jsonAPI.Unmarshal(body, &v); err != nil {
		return Metadata{}, false
	}

	title := strings.TrimSpace(v.Title)
	authors := v.Authors

	if title == "" && len(v.Items) > 0 {
		title = strings.TrimSpace(v.Items[0].VolumeInfo.Title)
		authors = v.Items[0].VolumeInfo.Authors
	}

	if title == "" {
		return Metadata{}, false
	}

	author := strings.TrimSpace(v.Author)
	if len(authors) > 0 {
		author = strings.Join(authors, ", ")
	}

	return Metadata{Title: title, Author: author}, true
}

func (c *Client) logDebug(ctx context.Context, msg string, args ...any) {
	if c.contextualLogger != nil {
		c.contextualLogger.DebugContext(ctx, msg, args...)
	} else if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Client) logInfo(ctx context.Context, msg string, args ...any) {
	if c.contextualLogger != nil {
		c.contextualLogger.InfoContext(ctx, msg, args...)
	} else if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}
