package memengine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-desk-go/recordstore"
	"github.com/AntonStoeckl/library-desk-go/recordstore/memengine"
)

func Test_Load_ReturnsAbsentCollection_WhenNothingStored(t *testing.T) {
	// arrange
	store := givenStore(t)

	// act
	collection, err := store.Load(context.Background(), "books")

	// assert
	require.NoError(t, err)
	assert.True(t, collection.IsAbsent())
	assert.Equal(t, "books", collection.Key)
}

func Test_Save_ThenLoad_RoundTrips(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := givenStore(t)
	collection := givenCollection(t, "books", `[{"isbn":"978-1"}]`)

	// act
	err := store.Save(ctx, collection, recordstore.NoRevision)
	require.NoError(t, err)
	loaded, loadErr := store.Load(ctx, "books")

	// assert
	require.NoError(t, loadErr)
	assert.JSONEq(t, `[{"isbn":"978-1"}]`, string(loaded.PayloadJSON))
	assert.Equal(t, recordstore.RevisionUint(1), loaded.Revision)
}

func Test_Save_DetectsConcurrencyConflict(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := givenStore(t)
	require.NoError(t, store.Save(ctx, givenCollection(t, "loans", `[]`), recordstore.NoRevision))
	stale, err := store.Load(ctx, "loans")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, givenCollection(t, "loans", `[{"isbn":"1"}]`), stale.Revision))

	// act
	err = store.Save(ctx, givenCollection(t, "loans", `[{"isbn":"2"}]`), stale.Revision)

	// assert
	assert.ErrorIs(t, err, recordstore.ErrConcurrencyConflict)
	current, loadErr := store.Load(ctx, "loans")
	require.NoError(t, loadErr)
	assert.JSONEq(t, `[{"isbn":"1"}]`, string(current.PayloadJSON))
}

func Test_Save_FirstWriteConflicts_WhenKeyAlreadyExists(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := givenStore(t)
	store.Seed("books", []byte(`not json at all`))

	// act
	err := store.Save(ctx, givenCollection(t, "books", `[]`), recordstore.NoRevision)

	// assert
	assert.ErrorIs(t, err, recordstore.ErrConcurrencyConflict)
}

func Test_Load_FailsOnCanceledContext(t *testing.T) {
	// arrange
	store := givenStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	_, err := store.Load(ctx, "books")

	// assert
	assert.ErrorIs(t, err, recordstore.ErrLoadingRecordsFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_Load_RejectsInvalidKey(t *testing.T) {
	store := givenStore(t)

	_, err := store.Load(context.Background(), "../etc/passwd")

	assert.ErrorIs(t, err, recordstore.ErrInvalidKeySupplied)
}

func givenStore(t *testing.T) *memengine.Store {
	t.Helper()

	store, err := memengine.NewStore()
	require.NoError(t, err)

	return store
}

func givenCollection(t *testing.T, key string, payload string) recordstore.StorableCollection {
	t.Helper()

	collection, err := recordstore.BuildStorableCollection(key, []byte(payload))
	require.NoError(t, err)

	return collection
}
