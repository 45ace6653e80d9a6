// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"product_backend/internal/feature/products/domain/entity"
	"product_backend/internal/feature/products/usecase"
)

// CachingProductRepository decorates a ProductRepository with Redis caching.
// Owner listings and single products are cached; every write invalidates the keys it affects.
type CachingProductRepository struct {
	inner     usecase.ProductRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.ProductRepository = (*CachingProductRepository)(nil)

// NewCachingProductRepository decorates a ProductRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "products".
// A nil rdb bypasses the cache entirely.
func NewCachingProductRepository(rdb *redis.Client, ttl time.Duration, inner usecase.ProductRepository, namespace string) *CachingProductRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "products"
	}
	return &CachingProductRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// ListByOwner returns the owner's products, checking the cache first.
func (c *CachingProductRepository) ListByOwner(ctx context.Context, ownerID string) ([]entity.Product, error) {
	if c.rdb == nil {
		return c.inner.ListByOwner(ctx, ownerID)
	}

	key := c.ownerKey(ownerID)
	var cached []entity.Product
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	out, err := c.inner.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out)
	return out, nil
}

// GetByID returns a product, checking the cache first. Misses are not cached.
func (c *CachingProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	if c.rdb == nil {
		return c.inner.GetByID(ctx, id)
	}

	key := c.idKey(id)
	var cached entity.Product
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	p, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, p)
	return p, nil
}

// Insert stores a product and invalidates the owner's listing.
func (c *CachingProductRepository) Insert(ctx context.Context, p *entity.Product) error {
	if err := c.inner.Insert(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, c.ownerKey(p.OwnerID))
	return nil
}

// Replace overwrites a product and invalidates its entry and the owner's listing.
func (c *CachingProductRepository) Replace(ctx context.Context, p *entity.Product) error {
	if err := c.inner.Replace(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, c.idKey(p.ID), c.ownerKey(p.OwnerID))
	return nil
}

// Remove deletes a product and invalidates its entry and the owner's listing.
func (c *CachingProductRepository) Remove(ctx context.Context, id uuid.UUID) error {
	keys := []string{c.idKey(id)}
	if c.rdb != nil {
		// The owner key can only be derived from the stored record.
		if p, err := c.inner.GetByID(ctx, id); err == nil {
			keys = append(keys, c.ownerKey(p.OwnerID))
		}
	}

	if err := c.inner.Remove(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, keys...)
	return nil
}

// load decodes a cached value into dst. Corrupted entries are deleted.
func (c *CachingProductRepository) load(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// store caches v (best effort).
func (c *CachingProductRepository) store(ctx context.Context, key string, v any) {
	if b, err := json.Marshal(v); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
}

// invalidate deletes keys (best effort).
func (c *CachingProductRepository) invalidate(ctx context.Context, keys ...string) {
	if c.rdb == nil || len(keys) == 0 {
		return
	}
	_ = c.rdb.Del(ctx, keys...).Err()
}

func (c *CachingProductRepository) ownerKey(ownerID string) string {
	return fmt.Sprintf("%s:owner:%s", c.namespace, safe(ownerID))
}

func (c *CachingProductRepository) idKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:id:%s", c.namespace, id)
}
