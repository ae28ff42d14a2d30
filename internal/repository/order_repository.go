package repository

import (
	"context"

	"delivery-service/internal/domain"
)

// Find* methods return (nil, nil) when the record does not exist.

type OrderRepository interface {
	// Create inserts the order and its items in one transaction. With
	// reserveStock set, every item's quantity is taken from product stock in
	// the same transaction.
	Create(ctx context.Context, order *domain.Order, reserveStock bool) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindByUser(ctx context.Context, userID uint64) ([]domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	// UpdateStatus moves the order from one status to another. It fails with
	// domain.ErrInvalidTransition when the order is no longer in from.
	UpdateStatus(ctx context.Context, id uint64, from, to domain.OrderStatus) error
}

type ProductRepository interface {
	FindAll(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	// Delete reports false when no product had the id.
	Delete(ctx context.Context, id uint64) (bool, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uint64) (*domain.User, error)
}
