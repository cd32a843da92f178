package recordstore

import (
	"errors"
)

var (
	// ErrEmptyKeySupplied is returned when a record key is empty.
	ErrEmptyKeySupplied = errors.New("empty record key supplied")

	// ErrInvalidKeySupplied is returned when a record key contains characters an engine can't store.
	ErrInvalidKeySupplied = errors.New("invalid record key supplied")

	// ErrInvalidPayloadJSON is returned when a payload is not valid JSON.
	ErrInvalidPayloadJSON = errors.New("payload json is not valid")

	// ErrConcurrencyConflict is returned by Save when the stored revision is not the expected one.
	ErrConcurrencyConflict = errors.New("concurrency error, the stored revision has moved")

	// ErrLoadingRecordsFailed is returned when an engine can't read a document.
	ErrLoadingRecordsFailed = errors.New("loading records failed")

	// ErrSavingRecordsFailed is returned when an engine can't write a document.
	ErrSavingRecordsFailed = errors.New("saving records failed")
)

// RevisionUint is the revision of a stored document. Zero means the key holds no document.
type RevisionUint = uint64

// NoRevision is the expected revision to use when saving a key for the first time.
const NoRevision RevisionUint = 0

// ValidateKey checks that a key is non-empty and only uses [a-z0-9_-].
// Every engine accepts exactly this alphabet, so a key valid for one engine is valid for all of them.
func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyKeySupplied
	}

	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return ErrInvalidKeySupplied
		}
	}

	return nil
}
