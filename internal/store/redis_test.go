package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	rdb, err := NewRedisClient(ctx, RedisOptions{Addr: mr.Addr(), DB: 2})
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	require.NoError(t, rdb.Set(ctx, "k", "v", 0).Err())
	mr.Select(2)
	assert.True(t, mr.Exists("k"))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	rdb, err := NewRedisClient(context.Background(), RedisOptions{Addr: addr})
	assert.Error(t, err)
	assert.Nil(t, rdb)
	assert.Contains(t, err.Error(), addr)
}
