package recordstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_BuildStorableCollection_ErrorCases(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		payloadJSON []byte
		expectedErr error
	}{
		{
			name:        "empty key",
			key:         "",
			payloadJSON: []byte(`[]`),
			expectedErr: ErrEmptyKeySupplied,
		},
		{
			name:        "key with path separator",
			key:         "../books",
			payloadJSON: []byte(`[]`),
			expectedErr: ErrInvalidKeySupplied,
		},
		{
			name:        "key with upper case letters",
			key:         "Books",
			payloadJSON: []byte(`[]`),
			expectedErr: ErrInvalidKeySupplied,
		},
		{
			name:        "invalid payload JSON",
			key:         "books",
			payloadJSON: []byte(`[{"isbn": }]`),
			expectedErr: ErrInvalidPayloadJSON,
		},
		{
			name:        "empty payload JSON",
			key:         "books",
			payloadJSON: []byte(``),
			expectedErr: ErrInvalidPayloadJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildStorableCollection(tt.key, tt.payloadJSON)

			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func Test_BuildStorableCollection_Success(t *testing.T) {
	collection, err := BuildStorableCollection("school_library_books", []byte(`[{"isbn":"978-1"}]`))

	require.NoError(t, err)
	assert.Equal(t, "school_library_books", collection.Key)
	assert.JSONEq(t, `[{"isbn":"978-1"}]`, string(collection.PayloadJSON))
	assert.True(t, collection.IsAbsent(), "a freshly built collection carries no revision")
}

func Test_AbsentCollection(t *testing.T) {
	collection := AbsentCollection("loans")

	assert.Equal(t, "loans", collection.Key)
	assert.Nil(t, collection.PayloadJSON)
	assert.True(t, collection.IsAbsent())
}
