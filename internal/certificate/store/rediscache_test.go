package store

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agricert/internal/certificate/models"
	id "agricert/pkg/domain"
)

// An unreachable redis must degrade the cache to a passthrough, never fail a
// lookup.
func TestRedisCacheDegradesWithoutRedis(t *testing.T) {
	unreachable := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		ReadTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = unreachable.Close() })

	cache := NewRedisCache(NewInMemory(), unreachable)
	ctx := context.Background()

	now := time.Now().UTC()
	cert, err := models.NewCertificate(
		id.NewCertificateID(), "AGC-2026-CACHETEST01",
		id.NewUserID(), id.NewFarmID(), "organic",
		now, now.AddDate(1, 0, 0), id.NewUserID(), now,
	)
	require.NoError(t, err)
	require.NoError(t, cache.Create(ctx, cert))

	// Enough reads to trip the breaker, all served from the inner store.
	for range 10 {
		got, err := cache.FindByID(ctx, cert.ID)
		require.NoError(t, err)
		assert.Equal(t, cert.Number, got.Number)
	}

	byNumber, err := cache.FindByNumber(ctx, cert.Number)
	require.NoError(t, err)
	assert.Equal(t, cert.ID, byNumber.ID)
}
