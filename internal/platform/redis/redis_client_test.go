package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product_backend/internal/platform/config"
)

func TestNewRedisClient_Disabled(t *testing.T) {
	rdb, err := NewRedisClient(context.Background(), config.RedisConfig{Enabled: false})

	require.NoError(t, err)
	assert.Nil(t, rdb)
}

// TestNewRedisClient_Connects はminiredisへの接続が成功することを検証します。
func TestNewRedisClient_Connects(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedisClient(context.Background(), config.RedisConfig{
		Enabled: true,
		Host:    mr.Host(),
		Port:    mr.Port(),
	})

	require.NoError(t, err)
	require.NotNil(t, rdb)
	t.Cleanup(func() { _ = rdb.Close() })

	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got, "value should be stored in miniredis")
}

// TestNewRedisClient_Unreachable は接続できない場合にエラーを返すことを検証します。
func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	rdb, err := NewRedisClient(context.Background(), config.RedisConfig{
		Enabled: true,
		Host:    host,
		Port:    port,
	})

	assert.Error(t, err)
	assert.Nil(t, rdb)
}

func TestPinger(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient(context.Background(), config.RedisConfig{Enabled: true, Host: mr.Host(), Port: mr.Port()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	p := Pinger{Client: rdb}
	assert.NoError(t, p.PingContext(context.Background()))

	mr.Close()
	assert.Error(t, p.PingContext(context.Background()))
}
