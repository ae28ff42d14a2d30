package mysql

import (
	"context"
	"errors"
	"log"

	"delivery-service/internal/domain"
	"delivery-service/internal/repository"

	"gorm.io/gorm"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) FindAll(ctx context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		log.Printf("FindAll products error: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("FindByID product error: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		log.Printf("FindByIDs products error: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		log.Printf("Create product error: %v", err)
		return err
	}
	return nil
}

// Update replaces every editable column, zero values included.
func (r *productRepo) Update(ctx context.Context, p *domain.Product) error {
	err := r.db.WithContext(ctx).
		Model(p).
		Select("Name", "Description", "Price", "ImageURL", "Stock").
		Updates(p).Error
	if err != nil {
		log.Printf("Update product error: %v", err)
		return err
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&domain.Product{}, id)
	if res.Error != nil {
		log.Printf("Delete product error: %v", res.Error)
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
