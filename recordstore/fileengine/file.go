package fileengine

import (
	"context"
	"errors"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/AntonStoeckl/library-desk-go/recordstore"
)

// ErrEmptyDirectorySupplied is returned when NewStore is called without a directory.
var ErrEmptyDirectorySupplied = errors.New("empty directory supplied")

const (
	defaultFileMode           fs.FileMode = 0o600
	directoryMode             fs.FileMode = 0o700
	fileExtension                         = ".json"
	tempFilePattern                       = ".tmp-*"
	logMsgReadFailed                      = "failed to read document file"
	logMsgWriteFailed                     = "failed to write document file"
	logMsgRemoveTempFailed                = "failed to remove temporary document file"
	logMsgConcurrencyConflict             = "concurrency conflict detected"
	logMsgDocumentWritten                 = "document written"
	logMsgOperation                       = "recordstore file operation: "
	logAttrError                          = "error"
	logAttrPath                           = "path"
	logAttrExpectedRevision               = "expected_revision"
	logAttrActualRevision                 = "actual_revision"
	logAttrDurationMS                     = "duration_ms"
)

// Store is a recordstore engine backed by one file per key.
type Store struct {
	dir      string
	fileMode fs.FileMode
	mu       sync.Mutex
	logger   recordstore.Logger
}

// NewStore creates a Store in dir, creating the directory if needed.
func NewStore(dir string, options ...Option) (*Store, error) {
	if dir == "" {
		return nil, ErrEmptyDirectorySupplied
	}

	s := &Store{
		dir:      dir,
		fileMode: defaultFileMode,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(dir, directoryMode); err != nil {
		return nil, errors.Join(recordstore.ErrSavingRecordsFailed, err)
	}

	return s, nil
}

// Load reads the document stored under key. A missing file is an absent collection, not an error.
// The content is returned as-is; deciding what to do with malformed JSON is the caller's business.
func (s *Store) Load(ctx context.Context, key string) (recordstore.StorableCollection, error) {
	if err := ctx.Err(); err != nil {
		return recordstore.StorableCollection{}, errors.Join(recordstore.ErrLoadingRecordsFailed, err)
	}

	if err := recordstore.ValidateKey(key); err != nil {
		return recordstore.StorableCollection{}, err
	}

	content, revision, err := s.read(key)
	if err != nil {
		return recordstore.StorableCollection{}, err
	}

	if revision == recordstore.NoRevision {
		return recordstore.AbsentCollection(key), nil
	}

	return recordstore.StorableCollection{
		Key:         key,
		PayloadJSON: content,
		Revision:    revision,
	}, nil
}

// Save replaces the document under collection.Key if its current revision equals expectedRevision.
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

	_, current, err := s.read(collection.Key)
	if err != nil {
		return err
	}

	if current != expectedRevision {
		if s.logger != nil {
			s.logger.Info(
				logMsgOperation+logMsgConcurrencyConflict,
				logAttrPath, s.path(collection.Key),
				logAttrExpectedRevision, expectedRevision,
				logAttrActualRevision, current,
			)
		}

		return recordstore.ErrConcurrencyConflict
	}

	start := time.Now()
	if err := s.writeAtomically(collection.Key, collection.PayloadJSON); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Debug(
			logMsgOperation+logMsgDocumentWritten,
			logAttrPath, s.path(collection.Key),
			logAttrDurationMS, float64(time.Since(start).Microseconds())/1000,
		)
	}

	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+fileExtension)
}

// read returns the file content and its revision; a missing file yields NoRevision.
func (s *Store) read(key string) ([]byte, recordstore.RevisionUint, error) {
	content, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, recordstore.NoRevision, nil
	}

	if err != nil {
		if s.logger != nil {
			s.logger.Error(logMsgReadFailed, logAttrError, err.Error(), logAttrPath, s.path(key))
		}

		return nil, recordstore.NoRevision, errors.Join(recordstore.ErrLoadingRecordsFailed, err)
	}

	return content, revisionOf(content), nil
}

func (s *Store) writeAtomically(key string, content []byte) error {
	tmp, err := os.CreateTemp(s.dir, key+tempFilePattern)
	if err != nil {
		return s.writeFailed(key, err)
	}

	tmpName := tmp.Name()
	defer s.removeQuietly(tmpName)

	if _, err = tmp.Write(content); err != nil {
		_ = tmp.Close()
		return s.writeFailed(key, err)
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return s.writeFailed(key, err)
	}

	if err = tmp.Close(); err != nil {
		return s.writeFailed(key, err)
	}

	if err = os.Chmod(tmpName, s.fileMode); err != nil {
		return s.writeFailed(key, err)
	}

	if err = os.Rename(tmpName, s.path(key)); err != nil {
		return s.writeFailed(key, err)
	}

	return nil
}

func (s *Store) writeFailed(key string, err error) error {
	if s.logger != nil {
		s.logger.Error(logMsgWriteFailed, logAttrError, err.Error(), logAttrPath, s.path(key))
	}

	return errors.Join(recordstore.ErrSavingRecordsFailed, err)
}

// removeQuietly deletes a leftover temp file; after a successful rename there is nothing to remove.
func (s *Store) removeQuietly(name string) {
	err := os.Remove(name)
	if err != nil && !errors.Is(err, fs.ErrNotExist) && s.logger != nil {
		s.logger.Warn(logMsgRemoveTempFailed, logAttrError, err.Error(), logAttrPath, name)
	}
}

// revisionOf derives a revision from content. An existing file never maps to NoRevision.
func revisionOf(content []byte) recordstore.RevisionUint {
	h := fnv.New64a()
	_, _ = h.Write(content)

	if sum := h.Sum64(); sum != recordstore.NoRevision {
		return sum
	}

	return 1
}
