package services

import (
	"context"
	"log"
	"strings"

	"delivery-service/internal/domain"
	"delivery-service/internal/infra"
	"delivery-service/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const warmupConcurrency = 4

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Stock       int
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	if in.Price.IsNegative() {
		return &domain.ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if !domain.FitsMoneyScale(in.Price) {
		return &domain.ValidationError{Field: "price", Reason: "must have at most 2 decimal places"}
	}
	if in.Stock < 0 {
		return &domain.ValidationError{Field: "stock", Reason: "must not be negative"}
	}
	return nil
}

type ProductService struct {
	repo  repository.ProductRepository
	cache infra.ProductCache
}

func NewProductService(r repository.ProductRepository, c infra.ProductCache) *ProductService {
	if c == nil {
		c = infra.NopProductCache{}
	}
	return &ProductService{repo: r, cache: c}
}

func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, persistenceErr("list products", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id uint64) (*domain.Product, error) {
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		log.Printf("product cache get %d: %v", id, err)
	}
	if cached != nil {
		return cached, nil
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, persistenceErr("get product", err)
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}

	if err := s.cache.Set(ctx, p); err != nil {
		log.Printf("product cache set %d: %v", id, err)
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, principal domain.Principal, in ProductInput) (*domain.Product, error) {
	if err := Authorize(principal, Resource{Kind: "product"}, ActionManageProducts); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &domain.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		Stock:       in.Stock,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, persistenceErr("create product", err)
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, principal domain.Principal, id uint64, in ProductInput) (*domain.Product, error) {
	if err := Authorize(principal, Resource{Kind: "product", ID: id}, ActionManageProducts); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, persistenceErr("get product", err)
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}

	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.ImageURL = in.ImageURL
	p.Stock = in.Stock
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, persistenceErr("update product", err)
	}

	s.invalidate(ctx, id)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, principal domain.Principal, id uint64) error {
	if err := Authorize(principal, Resource{Kind: "product", ID: id}, ActionManageProducts); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return persistenceErr("delete product", err)
	}
	if !deleted {
		return domain.ErrProductNotFound
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *ProductService) invalidate(ctx context.Context, id uint64) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		log.Printf("product cache invalidate %d: %v", id, err)
	}
}

// WarmupCache loads the given products into the cache. Products that fail
// to load are logged and skipped.
func (s *ProductService) WarmupCache(ctx context.Context, ids []uint64) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(warmupConcurrency)

	for _, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := s.repo.FindByID(ctx, id)
			if err != nil {
				log.Printf("Failed to warm up cache for product %d: %v", id, err)
				return nil
			}
			if p == nil {
				return nil
			}
			if err := s.cache.Set(ctx, p); err != nil {
				log.Printf("Failed to warm up cache for product %d: %v", id, err)
			}
			return nil
		})
	}

	return g.Wait()
}
