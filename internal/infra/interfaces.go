package infra

import (
	"context"

	"delivery-service/internal/domain"
)

// ProductCache is a read-through cache in front of the product table.
// Get returns (nil, nil) on a miss.
type ProductCache interface {
	Get(ctx context.Context, id uint64) (*domain.Product, error)
	Set(ctx context.Context, p *domain.Product) error
	Invalidate(ctx context.Context, id uint64) error
}

// NopProductCache always misses.
type NopProductCache struct{}

func (NopProductCache) Get(context.Context, uint64) (*domain.Product, error) { return nil, nil }
func (NopProductCache) Set(context.Context, *domain.Product) error          { return nil }
func (NopProductCache) Invalidate(context.Context, uint64) error            { return nil }

var _ ProductCache = NopProductCache{}
