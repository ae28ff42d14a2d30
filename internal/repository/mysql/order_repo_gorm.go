package mysql

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"delivery-service/internal/domain"
	"delivery-service/internal/repository"

	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order, reserveStock bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if reserveStock {
			if err := reserveItems(tx, order.Items); err != nil {
				return err
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return err
		}
		if order.ID == 0 {
			return errors.New("failed to assign order ID")
		}
		return nil
	})
	if err != nil {
		log.Printf("Create order error: %v", err)
		return err
	}

	log.Printf("Order %d saved with %d items", order.ID, len(order.Items))
	return nil
}

// reserveItems takes each item's quantity from product stock. Rows are
// touched in product id order so concurrent checkouts lock in the same order.
func reserveItems(tx *gorm.DB, items []domain.OrderItem) error {
	need := make(map[uint64]int, len(items))
	for _, it := range items {
		need[it.ProductID] += it.Quantity
	}
	ids := make([]uint64, 0, len(need))
	for id := range need {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		qty := need[id]
		res := tx.Model(&domain.Product{}).
			Where("id = ? AND stock >= ?", id, qty).
			UpdateColumn("stock", gorm.Expr("stock - ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			continue
		}

		var count int64
		if err := tx.Model(&domain.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: id %d", domain.ErrProductNotFound, id)
		}
		return fmt.Errorf("%w: product %d", domain.ErrOutOfStock, id)
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Preload("Items.Product").First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("FindByID error: %v", err)
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByUser(ctx context.Context, userID uint64) ([]domain.Order, error) {
	out := make([]domain.Order, 0)
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		log.Printf("FindByUser error: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) FindAll(ctx context.Context) ([]domain.Order, error) {
	out := make([]domain.Order, 0)
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email")
		}).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		log.Printf("FindAll orders error: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uint64, from, to domain.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Order{ID: id}).
		Where("status = ?", from).
		Update("status", to)
	if res.Error != nil {
		log.Printf("UpdateStatus error: %v", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: order %d is no longer %s", domain.ErrInvalidTransition, id, from)
	}
	return nil
}
