// internal/gateway/vault.go
package gateway

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/chacha20poly1305"
)

// Vault is an in-process Gateway. Plaintexts are sealed with
// XChaCha20-Poly1305, the handle is bound as additional data so a blob cannot
// be replayed under another handle.
type Vault struct {
	aead  cipher.AEAD
	store CiphertextStore

	mu         sync.Mutex
	queue      []decryptJob
	onComplete CompletionFunc
	wake       chan struct{}
}

type decryptJob struct {
	token   RequestToken
	handles []Handle
}

const plaintextSize = 9

func NewVault(key []byte, store CiphertextStore) (*Vault, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrInvalidKeySize
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}
	if store == nil {
		store = NewMemoryStore()
	}
	return &Vault{
		aead:  aead,
		store: store,
		wake:  make(chan struct{}, 1),
	}, nil
}

func (v *Vault) OnComplete(fn CompletionFunc) {
	v.mu.Lock()
	v.onComplete = fn
	v.mu.Unlock()
}

func (v *Vault) Encrypt(ctx context.Context, value uint64, width BitWidth) (Handle, error) {
	if !width.Valid() {
		return "", ErrInvalidWidth
	}
	if !width.Fits(value) {
		return "", ErrWidthOverflow
	}

	plain := make([]byte, plaintextSize)
	plain[0] = byte(width)
	binary.BigEndian.PutUint64(plain[1:], value)

	nonce := make([]byte, v.aead.NonceSize(), v.aead.NonceSize()+len(plain)+v.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	handle := Handle(uuid.NewString())
	blob := v.aead.Seal(nonce, nonce, plain, []byte(handle))
	if err := v.store.Put(ctx, handle, blob); err != nil {
		return "", err
	}
	return handle, nil
}

func (v *Vault) Decrypt(ctx context.Context, handle Handle) (uint64, error) {
	value, _, err := v.open(ctx, handle)
	return value, err
}

func (v *Vault) RequestDecrypt(ctx context.Context, handles []Handle) (RequestToken, error) {
	if len(handles) == 0 {
		return "", ErrNoHandles
	}
	for _, h := range handles {
		if _, err := v.store.Get(ctx, h); err != nil {
			return "", err
		}
	}

	job := decryptJob{
		token:   RequestToken(uuid.NewString()),
		handles: append([]Handle(nil), handles...),
	}

	v.mu.Lock()
	v.queue = append(v.queue, job)
	v.mu.Unlock()

	select {
	case v.wake <- struct{}{}:
	default:
	}
	return job.token, nil
}

func (v *Vault) CompareMax(ctx context.Context, handles []Handle) (int, error) {
	if len(handles) == 0 {
		return 0, ErrNoHandles
	}

	best := 0
	var bestValue uint64
	for i, h := range handles {
		value, _, err := v.open(ctx, h)
		if err != nil {
			return 0, err
		}
		if i == 0 || value > bestValue {
			best, bestValue = i, value
		}
	}
	return best, nil
}

// Pending is the number of queued decryption requests.
func (v *Vault) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.queue)
}

// Drain delivers every queued request on the calling goroutine and returns
// how many callbacks fired.
func (v *Vault) Drain(ctx context.Context) int {
	v.mu.Lock()
	jobs := v.queue
	v.queue = nil
	fn := v.onComplete
	v.mu.Unlock()

	delivered := 0
	for _, job := range jobs {
		if v.deliver(ctx, fn, job) {
			delivered++
		}
	}
	return delivered
}

// Run delivers queued requests until ctx is done.
func (v *Vault) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-v.wake:
			v.Drain(ctx)
		}
	}
}

func (v *Vault) deliver(ctx context.Context, fn CompletionFunc, job decryptJob) bool {
	if fn == nil {
		logrus.WithField("token", job.token).Warn("No decryption receiver registered, dropping request")
		return false
	}

	plaintexts := make([]uint64, len(job.handles))
	for i, h := range job.handles {
		value, _, err := v.open(ctx, h)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"token":  job.token,
				"handle": h,
			}).Error("Failed to decrypt handle for request")
			return false
		}
		plaintexts[i] = value
	}

	fn(ctx, job.token, plaintexts)
	return true
}

func (v *Vault) open(ctx context.Context, handle Handle) (uint64, BitWidth, error) {
	blob, err := v.store.Get(ctx, handle)
	if err != nil {
		return 0, 0, err
	}
	ns := v.aead.NonceSize()
	if len(blob) < ns {
		return 0, 0, ErrCorruptedBlob
	}

	plain, err := v.aead.Open(nil, blob[:ns], blob[ns:], []byte(handle))
	if err != nil || len(plain) != plaintextSize {
		return 0, 0, ErrCorruptedBlob
	}
	return binary.BigEndian.Uint64(plain[1:]), BitWidth(plain[0]), nil
}
