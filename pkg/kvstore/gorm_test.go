package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lojinha-labs/storefront-backend/pkg/db/models"
)

func setupGormStore(t *testing.T) *Gorm {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.KVEntry{}))

	return NewGorm(db)
}

func TestGormStoreRoundTrip(t *testing.T) {
	store := setupGormStore(t)
	ctx := context.Background()

	_, found, err := store.Get(ctx, "currentUser")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Put(ctx, "currentUser", []byte(`{"username":"ana"}`)))

	value, found, err := store.Get(ctx, "currentUser")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"username":"ana"}`, string(value))
}

func TestGormStoreUpsertOverwrites(t *testing.T) {
	store := setupGormStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "storeProducts", []byte(`[]`)))
	require.NoError(t, store.Put(ctx, "storeProducts", []byte(`[{"id":1}]`)))

	value, found, err := store.Get(ctx, "storeProducts")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `[{"id":1}]`, string(value))
}

func TestGormStoreDelete(t *testing.T) {
	store := setupGormStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "storeCart", []byte(`[]`)))
	require.NoError(t, store.Delete(ctx, "storeCart"))

	_, found, err := store.Get(ctx, "storeCart")
	require.NoError(t, err)
	assert.False(t, found)
}
