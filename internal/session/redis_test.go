package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedis(client, "hub")
	defer store.Close()

	_, ok, err := store.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, KeyToken, "tok"))
	raw, err := mr.Get("hub:token")
	require.NoError(t, err)
	require.Equal(t, "tok", raw)

	v, ok, err := store.Get(ctx, KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "tok", v)

	require.NoError(t, store.Delete(ctx, KeyToken, KeyRole))
	require.False(t, mr.Exists("hub:token"))
}
