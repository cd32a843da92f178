package shell

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/library-desk-go/library/core"
	"github.com/AntonStoeckl/library-desk-go/recordstore"
)

// Fixed keys of the two persisted collections.
const (
	BooksKey = "books"
	LoansKey = "loans"
)

var (
	// ErrEncodingRecordsFailed is returned when a collection can't be serialized.
	ErrEncodingRecordsFailed = errors.New("encoding records failed")

	// ErrNilRecordStore is returned when NewRecords is called without an engine.
	ErrNilRecordStore = errors.New("record store must not be nil")
)

// Records loads and saves the Books and Loans collections.
//
// Loading never fails because of the stored content: an absent key or a document that is not
// a JSON array yields an empty collection, and single malformed entries are skipped. Both cases
// are logged at Warn. Errors returned by Load* come from the engine itself (I/O, database).
//
// Every Load* returns the revision of the document, which the matching Save* expects back.
// The two collections are independent documents without a shared transaction.
type Records struct {
	store            RecordStore
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
}

// RecordsOption configures Records.
type RecordsOption func(*Records)

// WithRecordsLogger sets the logger used to report malformed persisted data.
func WithRecordsLogger(logger Logger) RecordsOption {
	return func(r *Records) {
		r.logger = logger
	}
}

// WithRecordsContextualLogger sets a context-aware logger, which takes precedence over the plain one.
func WithRecordsContextualLogger(logger ContextualLogger) RecordsOption {
	return func(r *Records) {
		r.contextualLogger = logger
	}
}

// WithRecordsMetrics sets the collector that counts skipped entries.
func WithRecordsMetrics(collector MetricsCollector) RecordsOption {
	return func(r *Records) {
		r.metricsCollector = collector
	}
}

// NewRecords creates Records on top of a recordstore engine.
func NewRecords(store RecordStore, options ...RecordsOption) (*Records, error) {
	if store == nil {
		return nil, ErrNilRecordStore
	}

	records := &Records{store: store}

	for _, option := range options {
		option(records)
	}

	return records, nil
}

// LoadBooks returns the registered books in insertion order and the revision of the books document.
func (r *Records) LoadBooks(ctx context.Context) (core.Books, recordstore.RevisionUint, error) {
	collection, err := r.store.Load(ctx, BooksKey)
	if err != nil {
		return nil, recordstore.NoRevision, err
	}

	decoded := decodeBooks(collection.PayloadJSON)
	r.reportMalformed(ctx, BooksKey, decoded.documentMalformed, decoded.skipped)

	return decoded.records, collection.Revision, nil
}

// LoadLoans returns the loan history in insertion order and the revision of the loans document.
func (r *Records) LoadLoans(ctx context.Context) (core.Loans, recordstore.RevisionUint, error) {
	collection, err := r.store.Load(ctx, LoansKey)
	if err != nil {
		return nil, recordstore.NoRevision, err
	}

	decoded := decodeLoans(collection.PayloadJSON)
	r.reportMalformed(ctx, LoansKey, decoded.documentMalformed, decoded.skipped)

	return decoded.records, collection.Revision, nil
}

// SaveBooks replaces the books document, provided it is still at expectedRevision.
// It returns recordstore.ErrConcurrencyConflict otherwise.
func (r *Records) SaveBooks(ctx context.Context, books core.Books, expectedRevision recordstore.RevisionUint) error {
	payload, err := encodeBooks(books)
	if err != nil {
		return errors.Join(ErrEncodingRecordsFailed, err)
	}

	return r.save(ctx, BooksKey, payload, expectedRevision)
}

// SaveLoans replaces the loans document, provided it is still at expectedRevision.
// It returns recordstore.ErrConcurrencyConflict otherwise.
func (r *Records) SaveLoans(ctx context.Context, loans core.Loans, expectedRevision recordstore.RevisionUint) error {
	payload, err := encodeLoans(loans)
	if err != nil {
		return errors.Join(ErrEncodingRecordsFailed, err)
	}

	return r.save(ctx, LoansKey, payload, expectedRevision)
}

func (r *Records) save(ctx context.Context, key string, payload []byte, expectedRevision recordstore.RevisionUint) error {
	collection, err := recordstore.BuildStorableCollection(key, payload)
	if err != nil {
		return errors.Join(ErrEncodingRecordsFailed, err)
	}

	return r.store.Save(ctx, collection, expectedRevision)
}

func (r *Records) reportMalformed(ctx context.Context, key string, documentMalformed bool, skipped int) {
	if documentMalformed {
		logWarn(ctx, r.logger, r.contextualLogger, LogMsgMalformedDocument, LogAttrRecordKey, key)
		r.countMalformed(ctx, key, 1)

		return
	}

	if skipped > 0 {
		logWarn(ctx, r.logger, r.contextualLogger, LogMsgMalformedEntries, LogAttrRecordKey, key, LogAttrSkippedCount, skipped)
		r.countMalformed(ctx, key, skipped)
	}
}

func (r *Records) countMalformed(ctx context.Context, key string, count int) {
	if r.metricsCollector == nil {
		return
	}

	for i := 0; i < count; i++ {
		incrementCounter(ctx, r.metricsCollector, MalformedRecordsMetric, map[string]string{LogAttrRecordKey: key})
	}
}
