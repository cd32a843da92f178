// Package memengine provides an in-process recordstore engine.
//
// Documents live in a map guarded by a mutex and are lost when the process exits.
// It backs the "memory" store profile and is the engine used by the library tests.
package memengine

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/AntonStoeckl/library-desk-go/recordstore"
)

const (
	logMsgSaved               = "recordstore memory: document saved"
	logMsgConcurrencyConflict = "recordstore memory: concurrency conflict detected"
	logAttrKey                = "key"
	logAttrExpectedRevision   = "expected_revision"
	logAttrActualRevision     = "actual_revision"
)

type document struct {
	payload  []byte
	revision recordstore.RevisionUint
}

// Store is an in-memory recordstore engine.
type Store struct {
	mu        sync.RWMutex
	documents map[string]document
	logger    recordstore.Logger
}

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithLogger sets the logger for the Store.
func WithLogger(logger recordstore.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// NewStore creates an empty Store.
func NewStore(options ...Option) (*Store, error) {
	s := &Store{documents: make(map[string]document)}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Load returns the document stored under key, or an absent collection.
func (s *Store) Load(ctx context.Context, key string) (recordstore.StorableCollection, error) {
	if err := ctx.Err(); err != nil {
		return recordstore.StorableCollection{}, errors.Join(recordstore.ErrLoadingRecordsFailed, err)
	}

	if err := recordstore.ValidateKey(key); err != nil {
		return recordstore.StorableCollection{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[key]
	if !ok {
		return recordstore.AbsentCollection(key), nil
	}

	return recordstore.StorableCollection{
		Key:         key,
		PayloadJSON: slices.Clone(doc.payload),
		Revision:    doc.revision,
	}, nil
}

// Save stores the collection if the current revision equals expectedRevision.
func (s *Store) Save(
	ctx context.Context,
	collection recordstore.StorableCollection,
	expectedRevision recordstore.RevisionUint,
) error {

	if err := ctx.Err(); err != nil {
		return errors.Join(recordstore.ErrSavingRecordsFailed, err)
	}

	if err := recordstore.ValidateKey(collection.Key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.documents[collection.Key].revision
	if current != expectedRevision {
		if s.logger != nil {
			s.logger.Info(
				logMsgConcurrencyConflict,
				logAttrKey, collection.Key,
				logAttrExpectedRevision, expectedRevision,
				logAttrActualRevision, current,
			)
		}

		return recordstore.ErrConcurrencyConflict
	}

	s.documents[collection.Key] = document{
		payload:  slices.Clone(collection.PayloadJSON),
		revision: current + 1,
	}

	if s.logger != nil {
		s.logger.Debug(logMsgSaved, logAttrKey, collection.Key)
	}

	return nil
}

// Seed writes raw bytes under key without any validation and bumps the revision.
// It exists to reproduce documents written by other programs, including broken ones.
func (s *Store) Seed(key string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents[key] = document{
		payload:  slices.Clone(raw),
		revision: s.documents[key].revision + 1,
	}
}
