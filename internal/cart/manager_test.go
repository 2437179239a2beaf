package cart_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/cart"
)

func TestSweepEvictsIdleStores(t *testing.T) {
	ctx := context.Background()
	storage := cart.NewMemoryStorage()
	m := cart.NewManager(cart.Options{Storage: storage, IdleAfter: time.Millisecond})

	for i := 0; i < 500; i++ {
		m.Open(ctx, fmt.Sprintf("sid-%d", i), nil)
	}
	m.Open(ctx, "sid-full", nil).Add(ctx, redShoe, 2)
	m.Open(ctx, "sid-cleared", nil).Add(ctx, blueHat, 1)
	m.Open(ctx, "sid-cleared", nil).Clear(ctx)
	require.Equal(t, 502, m.Len())

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 502, m.Sweep(ctx))
	assert.Equal(t, 0, m.Len())

	raw, err := storage.Get(ctx, "sid-cleared", cart.StorageKey)
	require.NoError(t, err)
	assert.Nil(t, raw, "empty cart record dropped on eviction")

	again := m.Open(ctx, "sid-full", nil)
	assert.Equal(t, 2, again.Count(), "evicted cart reloads from storage")
}

func TestSweepKeepsRecentAndBusyStores(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{delay: map[string]time.Duration{"add p-red-shoe": 200 * time.Millisecond}}
	m := cart.NewManager(cart.Options{IdleAfter: 20 * time.Millisecond})

	busy := m.Open(ctx, "busy", remote)
	res := busy.Add(ctx, redShoe, 1)
	time.Sleep(30 * time.Millisecond)
	m.Open(ctx, "fresh", nil)

	assert.Equal(t, 0, m.Sweep(ctx), "pending mirror and fresh store stay")
	assert.Equal(t, 2, m.Len())

	require.NoError(t, wait(t, res))
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 2, m.Sweep(ctx))
	assert.Equal(t, 0, m.Len())
}

func TestRunSweepsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := cart.NewManager(cart.Options{IdleAfter: time.Millisecond})
	for i := 0; i < 50; i++ {
		m.Open(ctx, fmt.Sprintf("sid-%d", i), nil)
	}

	done := make(chan struct{})
	go func() {
		m.Run(ctx, 5*time.Millisecond)
		close(done)
	}()
	assert.Eventually(t, func() bool { return m.Len() == 0 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestForgetDropsStore(t *testing.T) {
	ctx := context.Background()
	m := cart.NewManager(cart.Options{})
	m.Open(ctx, "s1", nil).Add(ctx, radio, 1)
	m.Forget("s1")
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 1, m.Open(ctx, "s1", nil).Count())
}
