package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupState(t *testing.T) (*miniredis.Miniredis, *RedisState) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	st, err := NewRedisState(mr.Addr(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return mr, st
}

func TestRedisStateRoundTrip(t *testing.T) {
	mr, st := setupState(t)
	ctx := context.Background()

	v, err := st.Get(ctx, "sid-1", "cart")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, st.Set(ctx, "sid-1", "cart", []byte(`[{"quantity":1}]`)))
	v, err = st.Get(ctx, "sid-1", "cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"quantity":1}]`, string(v))

	assert.True(t, mr.Exists("storefront:state:sid-1:cart"))
	assert.Equal(t, time.Hour, mr.TTL("storefront:state:sid-1:cart"))

	require.NoError(t, st.Delete(ctx, "sid-1", "cart"))
	v, err = st.Get(ctx, "sid-1", "cart")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRedisStateExpires(t *testing.T) {
	mr, st := setupState(t)
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "sid-1", "cart", []byte(`[]`)))

	mr.FastForward(2 * time.Hour)
	v, err := st.Get(ctx, "sid-1", "cart")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestNewRedisStateFailsFast(t *testing.T) {
	_, err := NewRedisState("", time.Hour)
	require.Error(t, err)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisState(addr, time.Hour)
	require.Error(t, err)
}
