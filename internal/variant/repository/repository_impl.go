package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/lokapasar/internal/variant/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, variant *domain.Variant) error {
	return db.WithContext(ctx).Create(variant).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Variant, error) {
	var v domain.Variant
	err := db.WithContext(ctx).First(&v, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repo) FindByAttribute(ctx context.Context, db *gorm.DB, productID int64, attribute string) (*domain.Variant, error) {
	var v domain.Variant
	err := db.WithContext(ctx).First(&v, "product_id = ? AND attribute = ?", productID, attribute).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repo) FindByProduct(ctx context.Context, db *gorm.DB, productID int64) ([]domain.Variant, error) {
	var items []domain.Variant
	err := db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, variant *domain.Variant) error {
	if variant == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).
		Model(&domain.Variant{}).
		Where("id = ?", variant.ID).
		Updates(map[string]any{
			"price":               variant.Price,
			"discount_price":      variant.DiscountPrice,
			"discount_percentage": variant.DiscountPercentage,
			"is_on_sale":          variant.IsOnSale,
			"stock":               variant.Stock,
			"weight_grams":        variant.WeightGrams,
			"is_active":           variant.IsActive,
			"updated_at":          variant.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Delete(&domain.Variant{}, "id = ?", id).Error
}
