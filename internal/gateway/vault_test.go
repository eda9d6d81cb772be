package gateway

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T) (*Vault, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	v, err := NewVault(key, store)
	require.NoError(t, err)
	return v, store
}

func TestNewVaultRejectsShortKey(t *testing.T) {
	_, err := NewVault([]byte("short"), nil)
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestEncryptProducesOpaqueHandles(t *testing.T) {
	v, store := newTestVault(t)
	ctx := context.Background()

	h1, err := v.Encrypt(ctx, 500, WidthUint32)
	require.NoError(t, err)
	h2, err := v.Encrypt(ctx, 500, WidthUint32)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "equal plaintexts must not share a handle")
	assert.Equal(t, 2, store.Len())

	blob1, _ := store.Get(ctx, h1)
	blob2, _ := store.Get(ctx, h2)
	assert.NotEqual(t, blob1, blob2)

	got, err := v.Decrypt(ctx, h1)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), got)
}

func TestEncryptRejectsOverflowAndBadWidth(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()

	_, err := v.Encrypt(ctx, 256, WidthUint8)
	assert.ErrorIs(t, err, ErrWidthOverflow)

	_, err = v.Encrypt(ctx, 2, WidthBool)
	assert.ErrorIs(t, err, ErrWidthOverflow)

	_, err = v.Encrypt(ctx, 1, BitWidth(16))
	assert.ErrorIs(t, err, ErrInvalidWidth)

	_, err = v.Encrypt(ctx, 1<<40, WidthUint64)
	assert.NoError(t, err)
}

func TestBlobIsBoundToHandle(t *testing.T) {
	v, store := newTestVault(t)
	ctx := context.Background()

	h1, err := v.Encrypt(ctx, 7, WidthUint64)
	require.NoError(t, err)
	h2, err := v.Encrypt(ctx, 9, WidthUint64)
	require.NoError(t, err)

	blob1, _ := store.Get(ctx, h1)
	require.NoError(t, store.Put(ctx, h2, blob1))

	_, err = v.Decrypt(ctx, h2)
	assert.ErrorIs(t, err, ErrCorruptedBlob)
}

func TestCompareMax(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()

	var handles []Handle
	for _, amount := range []uint64{10, 50, 30} {
		h, err := v.Encrypt(ctx, amount, WidthUint64)
		require.NoError(t, err)
		handles = append(handles, h)
	}

	idx, err := v.CompareMax(ctx, handles)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	// reversed order still finds the 50
	reversed := []Handle{handles[2], handles[1], handles[0]}
	idx, err = v.CompareMax(ctx, reversed)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = v.CompareMax(ctx, nil)
	assert.ErrorIs(t, err, ErrNoHandles)
}

func TestCompareMaxTieKeepsEarliest(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()

	a, _ := v.Encrypt(ctx, 40, WidthUint64)
	b, _ := v.Encrypt(ctx, 40, WidthUint64)
	c, _ := v.Encrypt(ctx, 12, WidthUint64)

	idx, err := v.CompareMax(ctx, []Handle{a, b, c})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestRequestDecryptIsAsynchronous(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()

	var mu sync.Mutex
	var gotToken RequestToken
	var gotValues []uint64
	calls := 0
	v.OnComplete(func(ctx context.Context, token RequestToken, plaintexts []uint64) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		gotToken = token
		gotValues = plaintexts
	})

	revenue, _ := v.Encrypt(ctx, 1000, WidthUint64)
	rate, _ := v.Encrypt(ctx, 1000, WidthUint32)
	paid, _ := v.Encrypt(ctx, 96, WidthUint64)

	token, err := v.RequestDecrypt(ctx, []Handle{revenue, rate, paid})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, 0, calls, "callback must not fire inside RequestDecrypt")
	assert.Equal(t, 1, v.Pending())

	assert.Equal(t, 1, v.Drain(ctx))
	assert.Equal(t, 0, v.Pending())
	assert.Equal(t, 1, calls)
	assert.Equal(t, token, gotToken)
	assert.Equal(t, []uint64{1000, 1000, 96}, gotValues)

	// a token fires at most once
	assert.Equal(t, 0, v.Drain(ctx))
	assert.Equal(t, 1, calls)
}

func TestRequestDecryptRejectsUnknownHandle(t *testing.T) {
	v, _ := newTestVault(t)

	_, err := v.RequestDecrypt(context.Background(), []Handle{"missing"})
	assert.ErrorIs(t, err, ErrUnknownHandle)

	_, err = v.RequestDecrypt(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoHandles)
}

func TestRunDeliversUntilCancelled(t *testing.T) {
	v, _ := newTestVault(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan []uint64, 1)
	v.OnComplete(func(ctx context.Context, token RequestToken, plaintexts []uint64) {
		done <- plaintexts
	})

	finished := make(chan struct{})
	go func() {
		v.Run(ctx)
		close(finished)
	}()

	h, _ := v.Encrypt(ctx, 42, WidthUint64)
	_, err := v.RequestDecrypt(ctx, []Handle{h})
	require.NoError(t, err)

	assert.Equal(t, []uint64{42}, <-done)
	cancel()
	<-finished
}
