//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newRedisStore(t *testing.T) *RedisResponseStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	store, err := NewRedisResponseStore(ctx, RedisConfig{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRedisResponseStore_Lifecycle(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	_, reserved, err := store.Reserve(ctx, "pay-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, reserved)

	existing, reserved, err := store.Reserve(ctx, "pay-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Nil(t, existing, "in-flight key has no response yet")

	resp := StoredResponse{Status: 200, ContentType: "application/json", Body: []byte(`{"success":true}`)}
	require.NoError(t, store.Complete(ctx, "pay-1", resp, time.Minute))

	existing, reserved, err = store.Reserve(ctx, "pay-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, reserved)
	require.NotNil(t, existing)
	assert.Equal(t, resp, *existing)
}

func TestRedisResponseStore_ReleaseAndMissingKeys(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	_, _, err := store.Reserve(ctx, "gen-1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "gen-1"))

	_, reserved, err := store.Reserve(ctx, "gen-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, reserved)

	assert.ErrorIs(t, store.Release(ctx, "missing"), ErrNotReserved)
	assert.ErrorIs(t, store.Complete(ctx, "missing", StoredResponse{}, time.Minute), ErrNotReserved)
}
