package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestNewDeliveryRedis(t *testing.T) {
	client, _ := setupTestRedis(t)

	repo := NewDeliveryRedis(client, "webhook", 0)

	assert.NotNil(t, repo.client)
	assert.Equal(t, "webhook", repo.prefix)
	assert.Equal(t, DefaultRetention, repo.retention)
}

func TestDeliveryRedis_ClaimRelease(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	repo := NewDeliveryRedis(client, "webhook", time.Hour)

	ok, err := repo.Claim(ctx, "msg_1")
	require.NoError(t, err)
	assert.True(t, ok, "first claim succeeds")
	assert.True(t, mr.Exists("webhook:msg_1"))
	assert.Equal(t, time.Hour, mr.TTL("webhook:msg_1"))

	ok, err = repo.Claim(ctx, "msg_1")
	require.NoError(t, err)
	assert.False(t, ok, "redelivery is detected")

	require.NoError(t, repo.Release(ctx, "msg_1"))
	ok, err = repo.Claim(ctx, "msg_1")
	require.NoError(t, err)
	assert.True(t, ok, "released delivery can be claimed again")
}

func TestDeliveryRedis_Expires(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	repo := NewDeliveryRedis(client, "webhook", time.Minute)

	_, err := repo.Claim(ctx, "msg_1")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	ok, err := repo.Claim(ctx, "msg_1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeliveryRedis_Errors(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	repo := NewDeliveryRedis(db, "webhook", time.Hour)

	mock.ExpectSetNX("webhook:msg_1", 1, time.Hour).SetErr(assert.AnError)
	_, err := repo.Claim(ctx, "msg_1")
	assert.ErrorIs(t, err, assert.AnError)

	mock.ExpectDel("webhook:msg_1").SetErr(assert.AnError)
	assert.ErrorIs(t, repo.Release(ctx, "msg_1"), assert.AnError)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliveryMemory_ClaimRelease(t *testing.T) {
	ctx := context.Background()
	m := NewDeliveryMemory(time.Hour)

	ok, err := m.Claim(ctx, "msg_1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = m.Claim(ctx, "msg_1")
	assert.False(t, ok)

	ok, _ = m.Claim(ctx, "msg_2")
	assert.True(t, ok, "ids are independent")

	require.NoError(t, m.Release(ctx, "msg_1"))
	ok, _ = m.Claim(ctx, "msg_1")
	assert.True(t, ok)
}
