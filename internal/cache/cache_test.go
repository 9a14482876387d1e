package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestClient_SetGetDelete(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "supplier:1", []byte(`{"id":1}`), time.Minute))

	data, err := c.Get(ctx, "supplier:1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, string(data))

	mr.FastForward(2 * time.Minute)
	data, err = c.Get(ctx, "supplier:1")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, c.Set(ctx, "supplier:2", []byte("x"), time.Minute))
	require.NoError(t, c.Delete(ctx, "supplier:2"))
	data, _ = c.Get(ctx, "supplier:2")
	assert.Nil(t, data)
}

func TestClient_Incr(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, err := c.Incr(ctx, "throttle:1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	assert.Equal(t, time.Minute, mr.TTL("throttle:1.2.3.4"))

	mr.FastForward(time.Minute + time.Second)
	n, err := c.Incr(ctx, "throttle:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestClient_FailSafe(t *testing.T) {
	var nilClient *Client
	ctx := context.Background()

	data, err := nilClient.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, nilClient.Set(ctx, "k", []byte("v"), time.Second))
	assert.NoError(t, nilClient.Delete(ctx, "k"))
	n, err := nilClient.Incr(ctx, "k", time.Second)
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, nilClient.Close())

	c, mr := newTestClient(t)
	mr.Close()

	data, err = c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	assert.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Incr(ctx, "k", time.Second)
	assert.Error(t, err)
}
