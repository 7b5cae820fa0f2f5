package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"agricert/internal/certificate/models"
	id "agricert/pkg/domain"
	"agricert/pkg/platform/circuit"
)

// Store is the certificate persistence capability the cache decorates.
type Store interface {
	Create(ctx context.Context, cert *models.Certificate) error
	FindByID(ctx context.Context, certID id.CertificateID) (*models.Certificate, error)
	FindByNumber(ctx context.Context, number string) (*models.Certificate, error)
	Update(ctx context.Context, cert *models.Certificate) error
	List(ctx context.Context, filters models.ListFilters, page models.Page) ([]*models.Certificate, int, error)
}

// RedisCache is a read-through cache in front of a certificate store. The
// verification endpoint is read-heavy and keyed by number, so lookups are
// cached under both the id and the number; every write invalidates both keys.
//
// Redis failures degrade to the inner store. The cache must never make a
// valid certificate unverifiable.
type RedisCache struct {
	inner   Store
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	breaker *circuit.Breaker
}

type CacheOption func(*RedisCache)

func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *RedisCache) { c.ttl = ttl }
}

func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *RedisCache) { c.logger = logger }
}

func NewRedisCache(inner Store, client *redis.Client, opts ...CacheOption) *RedisCache {
	c := &RedisCache{
		inner:  inner,
		client: client,
		ttl:    5 * time.Minute,
		logger: slog.New(slog.DiscardHandler),
		breaker: circuit.New("certificate-cache",
			circuit.WithFailureThreshold(5),
			circuit.WithSuccessThreshold(2),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func idKey(certID id.CertificateID) string { return "certificate:id:" + certID.String() }
func numberKey(number string) string       { return "certificate:number:" + number }

func (c *RedisCache) Create(ctx context.Context, cert *models.Certificate) error {
	if err := c.inner.Create(ctx, cert); err != nil {
		return err
	}
	c.invalidate(ctx, cert)
	return nil
}

func (c *RedisCache) FindByID(ctx context.Context, certID id.CertificateID) (*models.Certificate, error) {
	if cert, ok := c.cached(ctx, idKey(certID)); ok {
		return cert, nil
	}
	cert, err := c.inner.FindByID(ctx, certID)
	if err != nil {
		return nil, err
	}
	c.cache(ctx, cert)
	return cert, nil
}

func (c *RedisCache) FindByNumber(ctx context.Context, number string) (*models.Certificate, error) {
	if cert, ok := c.cached(ctx, numberKey(number)); ok {
		return cert, nil
	}
	cert, err := c.inner.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	c.cache(ctx, cert)
	return cert, nil
}

func (c *RedisCache) Update(ctx context.Context, cert *models.Certificate) error {
	if err := c.inner.Update(ctx, cert); err != nil {
		return err
	}
	c.invalidate(ctx, cert)
	return nil
}

func (c *RedisCache) List(ctx context.Context, filters models.ListFilters, page models.Page) ([]*models.Certificate, int, error) {
	return c.inner.List(ctx, filters, page)
}

func (c *RedisCache) cached(ctx context.Context, key string) (*models.Certificate, bool) {
	if c.breaker.IsOpen() {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "certificate cache read failed", "key", key, "error", err)
			c.recordFailure(ctx)
			return nil, false
		}
		// A miss still proves redis is reachable.
		c.recordSuccess(ctx)
		return nil, false
	}
	c.recordSuccess(ctx)
	var cert models.Certificate
	if err := json.Unmarshal(raw, &cert); err != nil {
		c.logger.WarnContext(ctx, "certificate cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return &cert, true
}

func (c *RedisCache) cache(ctx context.Context, cert *models.Certificate) {
	if c.breaker.IsOpen() {
		return
	}
	raw, err := json.Marshal(cert)
	if err != nil {
		return
	}
	pipe := c.client.Pipeline()
	pipe.Set(ctx, idKey(cert.ID), raw, c.ttl)
	pipe.Set(ctx, numberKey(cert.Number), raw, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.WarnContext(ctx, "certificate cache write failed", "certificate_id", cert.ID, "error", err)
		c.recordFailure(ctx)
		return
	}
	c.recordSuccess(ctx)
}

// invalidate always attempts the delete, even with the breaker open. A stale
// revoked certificate must not outlive a redis recovery.
func (c *RedisCache) invalidate(ctx context.Context, cert *models.Certificate) {
	if err := c.client.Del(ctx, idKey(cert.ID), numberKey(cert.Number)).Err(); err != nil {
		c.logger.WarnContext(ctx, "certificate cache invalidation failed", "certificate_id", cert.ID, "error", err)
		c.recordFailure(ctx)
		return
	}
	c.recordSuccess(ctx)
}

func (c *RedisCache) recordFailure(ctx context.Context) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "certificate cache circuit opened, serving from the inner store")
	}
}

func (c *RedisCache) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "certificate cache circuit closed")
	}
}
