package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessions(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewSessionStore(rdb, 0), mr
}

func TestSessionStore_Lifecycle(t *testing.T) {
	s, mr := newTestSessions(t)
	ctx := context.Background()

	sid, err := s.Create(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, sid)
	assert.True(t, mr.Exists("session:"+sid))
	assert.Equal(t, DefaultSessionTTL, mr.TTL("session:"+sid))

	uid, err := s.Get(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)

	require.NoError(t, s.Delete(ctx, sid))
	uid, err = s.Get(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, uid)
}

func TestSessionStore_Expiry(t *testing.T) {
	s, mr := newTestSessions(t)
	ctx := context.Background()

	sid, err := s.Create(ctx, "user-1")
	require.NoError(t, err)

	mr.FastForward(DefaultSessionTTL + 1)

	uid, err := s.Get(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, uid)
}

func TestSessionStore_UnknownAndEmpty(t *testing.T) {
	s, _ := newTestSessions(t)
	ctx := context.Background()

	uid, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, uid)

	uid, err = s.Get(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, uid)
}

func TestSessionStore_CustomTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	s := NewSessionStore(rdb, time.Hour)

	sid, err := s.Create(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, s.TTL())
	assert.Equal(t, time.Hour, mr.TTL("session:"+sid))
}

func TestSessionStore_RedisDown(t *testing.T) {
	s, mr := newTestSessions(t)
	ctx := context.Background()
	mr.Close()

	_, err := s.Create(ctx, "user-1")
	assert.Error(t, err)

	uid, err := s.Get(ctx, "some-session")
	assert.Error(t, err)
	assert.Empty(t, uid)

	assert.Error(t, s.Delete(ctx, "some-session"))
	assert.NoError(t, s.Delete(ctx, ""))
}
