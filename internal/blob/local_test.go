package blob

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	store, err := NewLocalStore(t.TempDir(), logger)
	require.NoError(t, err)
	return store
}

func TestLocalStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Put(ctx, "agents/a1/agent.json", []byte(`{"id":"a1"}`), "application/json"))

	data, err := store.Get(ctx, "agents/a1/agent.json")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"a1"}`, string(data))
}

func TestLocalStore_GetMissing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Get(ctx, "agents/nope/agent.json")
	assert.True(t, IsNotExist(err))
}

func TestLocalStore_Exists(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	ok, err := store.Exists(ctx, "x")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "x", []byte("y"), "text/plain"))

	ok, err = store.Exists(ctx, "x")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalStore_ListPrefix(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Put(ctx, "agents/a1/agent.json", []byte("{}"), "application/json"))
	require.NoError(t, store.Put(ctx, "agents/a2/agent.json", []byte("{}"), "application/json"))
	require.NoError(t, store.Put(ctx, "submissions/s1/intake.json", []byte("{}"), "application/json"))

	keys, err := store.List(ctx, "agents/")
	require.NoError(t, err)
	assert.Equal(t, []string{"agents/a1/agent.json", "agents/a2/agent.json"}, keys)

	keys, err = store.List(ctx, "nothing/")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestLocalStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Put(ctx, "x", []byte("y"), "text/plain"))
	require.NoError(t, store.Delete(ctx, "x"))
	require.NoError(t, store.Delete(ctx, "x"), "deleting a missing key is not an error")

	_, err := store.Get(ctx, "x")
	assert.True(t, IsNotExist(err))
}
