package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"delivery-service/internal/domain"
	"delivery-service/internal/infra"

	"github.com/go-redis/redis/v8"
)

type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl}
}

var _ infra.ProductCache = (*ProductCache)(nil)

func productKey(id uint64) string {
	return fmt.Sprintf("product:%d", id)
}

func (c *ProductCache) Get(ctx context.Context, id uint64) (*domain.Product, error) {
	b, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var p domain.Product
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *ProductCache) Set(ctx context.Context, p *domain.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(p.ID), data, c.ttl).Err()
}

func (c *ProductCache) Invalidate(ctx context.Context, id uint64) error {
	return c.rdb.Del(ctx, productKey(id)).Err()
}
