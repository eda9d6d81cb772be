package gateway

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCopiesBlobs(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	blob := []byte{1, 2, 3}
	require.NoError(t, store.Put(ctx, "h1", blob))
	blob[0] = 9

	got, err := store.Get(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrUnknownHandle)
}

func TestRedisStoreKeys(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	store := NewRedisStoreWithClient(client, "")
	assert.Equal(t, "imi:ct:abc", store.key("abc"))

	custom := NewRedisStoreWithClient(client, "tenant-a")
	assert.Equal(t, "tenant-a:abc", custom.key("abc"))

	_, err := NewRedisStore(" ", "", 0, "")
	assert.Error(t, err)
}
