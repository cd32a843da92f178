package fileengine

import (
	"errors"
	"io/fs"

	"github.com/AntonStoeckl/library-desk-go/recordstore"
)

// ErrInvalidFileMode is returned when a file mode without owner read/write permission is supplied.
var ErrInvalidFileMode = errors.New("file mode must grant the owner read and write permission")

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithFileMode sets the permission bits used for newly written documents (default 0o600).
func WithFileMode(mode fs.FileMode) Option {
	return func(s *Store) error {
		if mode&0o600 != 0o600 {
			return ErrInvalidFileMode
		}

		s.fileMode = mode

		return nil
	}
}

// WithLogger sets the logger for the Store.
//
// Debug level: file paths and write timings
// Info level: concurrency conflicts
// Warn level: cleanup failures of temporary files
// Error level: failures that make Load or Save fail.
func WithLogger(logger recordstore.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}
