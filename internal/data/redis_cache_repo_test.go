package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/practicejobs/ingest/internal/testutil"
)

func TestRedisCacheRepoSetGetDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	repo := NewRedisCacheRepo(client)
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		key := "analytics:test:1"
		value := []byte(`{"provider":"adzuna"}`)

		require.NoError(t, repo.Set(ctx, key, value, 5*time.Minute))

		got, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, value, got)

		ttl := client.TTL(ctx, key).Val()
		assert.True(t, ttl > 0 && ttl <= 5*time.Minute)
	})

	t.Run("get missing key", func(t *testing.T) {
		got, err := repo.Get(ctx, "analytics:missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("delete", func(t *testing.T) {
		key := "analytics:test:2"
		require.NoError(t, repo.Set(ctx, key, []byte("x"), time.Minute))

		deleted, err := repo.Delete(ctx, key)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, key)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("empty key rejected", func(t *testing.T) {
		assert.Error(t, repo.Set(ctx, "", []byte("x"), time.Minute))
		_, err := repo.Get(ctx, "")
		assert.Error(t, err)
		_, err = repo.Delete(ctx, "")
		assert.Error(t, err)
	})
}
