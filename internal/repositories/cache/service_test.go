package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheService(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	svc := NewCacheService(client)
	ctx := context.Background()
	key := svc.GenerateKey("mule", "top", "24:10")
	assert.Equal(t, "mule:top:24:10", key)

	var out []string
	found, err := svc.Get(ctx, key, &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, svc.SetWithTTL(ctx, key, []string{"RO49MULE"}, time.Minute))
	found, err = svc.Get(ctx, key, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"RO49MULE"}, out)

	mr.FastForward(2 * time.Minute)
	found, err = svc.Get(ctx, key, &out)
	require.NoError(t, err)
	assert.False(t, found, "entries expire after their ttl")

	require.NoError(t, svc.HealthCheck(ctx))
}

func TestCacheService_GetUndecodable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	svc := NewCacheService(client)
	require.NoError(t, mr.Set("mule:top:24:10", "not json"))

	var out []string
	found, err := svc.Get(context.Background(), "mule:top:24:10", &out)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), &RedisConfig{Host: "127.0.0.1", Port: "1"})
	assert.Error(t, err)
}
