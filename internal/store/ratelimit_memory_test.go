package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/slugly/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMemoryStore(t *testing.T) {
	t.Run("records and counts requests", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		for want := int64(1); want <= 3; want++ {
			usage, err := s.Record(context.Background(), "key1", time.Minute)

			require.NoError(t, err)
			assert.Equal(t, want, usage.Count)
		}
	})

	t.Run("reports the oldest request in the window", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		first, err := s.Record(context.Background(), "key1", time.Minute)
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)

		second, err := s.Record(context.Background(), "key1", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, first.Oldest, second.Oldest)
		assert.Equal(t, first.Oldest.Add(time.Minute), second.ResetAt(time.Minute))
	})

	t.Run("tracks keys independently", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		_, _ = s.Record(context.Background(), "key1", time.Minute)
		_, _ = s.Record(context.Background(), "key1", time.Minute)

		usage, err := s.Record(context.Background(), "key2", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(1), usage.Count, "key2 should have its own counter")
	})

	t.Run("prunes expired entries", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		_, _ = s.Record(context.Background(), "key1", 50*time.Millisecond)
		_, _ = s.Record(context.Background(), "key1", 50*time.Millisecond)

		time.Sleep(60 * time.Millisecond)

		usage, err := s.Record(context.Background(), "key1", 50*time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, int64(1), usage.Count, "expired entries should be pruned")
	})

	t.Run("sweeps idle keys", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		_, _ = s.Record(context.Background(), "idle", 10*time.Millisecond)

		time.Sleep(20 * time.Millisecond)

		for range 1024 {
			_, err := s.Record(context.Background(), "busy", time.Minute)
			require.NoError(t, err)
		}

		assert.Equal(t, 1, s.Len())
	})
}
