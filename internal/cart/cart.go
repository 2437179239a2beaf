// Package cart keeps each browser session's shopping cart.
//
// The local copy is the source of truth for what the shopper sees. Every
// mutation is applied in memory, written to durable storage under the fixed
// key "cart", and then, when the session is signed in, mirrored to the
// marketplace API as a side-channel task whose outcome never rolls back the
// local change. The remote copy wins only once, when Sync runs right after
// sign-in.
package cart

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

// StorageKey is the name the serialized cart is stored under.
const StorageKey = "cart"

// Storage is the per-session durable key/value record the cart persists into.
// Get returns (nil, nil) when nothing is stored. Deleting a missing record is
// not an error.
type Storage interface {
	Get(ctx context.Context, sessionID, key string) ([]byte, error)
	Set(ctx context.Context, sessionID, key string, value []byte) error
	Delete(ctx context.Context, sessionID, key string) error
}

// Remote is the authoritative cart held by the marketplace for a signed-in user.
type Remote interface {
	Cart(ctx context.Context) ([]domain.CartLine, error)
	AddItem(ctx context.Context, productID string, qty int) error
	UpdateItem(ctx context.Context, productID string, qty int) error
	RemoveItem(ctx context.Context, productID string) error
	ClearCart(ctx context.Context) error
}

// Policy decides what Sync does with lines that exist only locally.
type Policy string

const (
	// PolicyReplace discards local lines; the remote cart wins.
	PolicyReplace Policy = "replace"
	// PolicyMerge keeps local-only lines and pushes them to the remote.
	PolicyMerge Policy = "merge"
)

// Result is the outcome of a cart operation. OK and Message describe the
// local change. Mirror, when non-nil, yields the remote call's error (or nil)
// once it finishes; callers are free to ignore it.
type Result struct {
	OK      bool
	Message string
	Mirror  <-chan error
}

// MemoryStorage keeps records in process memory. It does not survive restarts.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage { return &MemoryStorage{data: map[string][]byte{}} }

func (m *MemoryStorage) Get(_ context.Context, sessionID, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[sessionID+"/"+key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStorage) Set(_ context.Context, sessionID, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[sessionID+"/"+key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, sessionID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sessionID+"/"+key)
	return nil
}
