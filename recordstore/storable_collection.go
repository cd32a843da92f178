package recordstore

import (
	jsoniter "github.com/json-iterator/go"
)

// StorableCollection is the DTO that engines read and write.
// PayloadJSON holds the whole document stored under Key.
// Revision is the revision the document had when it was loaded; it is ignored by Save.
type StorableCollection struct {
	Key         string
	PayloadJSON []byte
	Revision    RevisionUint
}

// BuildStorableCollection creates a StorableCollection for saving.
// The payload must be valid JSON, the key must pass ValidateKey.
func BuildStorableCollection(key string, payloadJSON []byte) (StorableCollection, error) {
	if err := ValidateKey(key); err != nil {
		return StorableCollection{}, err
	}

	if !jsoniter.ConfigFastest.Valid(payloadJSON) {
		return StorableCollection{}, ErrInvalidPayloadJSON
	}

	return StorableCollection{
		Key:         key,
		PayloadJSON: payloadJSON,
	}, nil
}

// AbsentCollection is what engines return from Load when nothing is stored under key.
func AbsentCollection(key string) StorableCollection {
	return StorableCollection{Key: key, Revision: NoRevision}
}

// IsAbsent reports whether the key held no document at load time.
func (c StorableCollection) IsAbsent() bool {
	return c.Revision == NoRevision
}
