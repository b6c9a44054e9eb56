package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryStore_SetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.Set(ctx, "k1", payload{Name: "lisbon", Count: 3}, 0)
	require.NoError(t, err)

	var got payload
	found, err := store.Get(ctx, "k1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "lisbon", Count: 3}, got)
}

func TestMemoryStore_MissingKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var got payload
	found, err := store.Get(ctx, "nope", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.Set(ctx, "short", payload{Name: "porto"}, 10*time.Millisecond)
	require.NoError(t, err)

	var got payload
	found, err := store.Get(ctx, "short", &got)
	require.NoError(t, err)
	assert.True(t, found, "entry should be live before the TTL elapses")

	time.Sleep(20 * time.Millisecond)

	found, err = store.Get(ctx, "short", &got)
	require.NoError(t, err)
	assert.False(t, found, "entry should be gone after the TTL elapses")
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "k", payload{Name: "faro"}, 0))
	require.NoError(t, store.Delete(ctx, "k"))

	var got payload
	found, err := store.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "k", payload{Count: 1}, 0))
	require.NoError(t, store.Set(ctx, "k", payload{Count: 2}, 0))

	var got payload
	found, err := store.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, got.Count)
}
