package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/lokapasar/internal/product/domain"
	"github.com/smallbiznis/lokapasar/pkg/db/listquery"
	"github.com/smallbiznis/lokapasar/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Preload("Images").First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Preload("Images").First(&p, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, desc listquery.Descriptor) ([]domain.Product, int64, error) {
	base := db.WithContext(ctx).Model(&domain.Product{})
	base = option.Apply(base, desc.Where...)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Product
	stmt := option.Apply(base.Session(&gorm.Session{}), desc.Order, desc.Paging)
	if err := stmt.Preload("Images").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"category_id": product.CategoryID,
			"title":       product.Title,
			"slug":        product.Slug,
			"description": product.Description,
			"type":        product.Type,
			"is_active":   product.IsActive,
			"metadata":    product.Metadata,
			"updated_at":  product.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Delete(&domain.Product{}, "id = ?", id).Error
}

func (r *repo) AddImage(ctx context.Context, db *gorm.DB, image *domain.ProductImage) error {
	return db.WithContext(ctx).Create(image).Error
}

func (r *repo) FindImage(ctx context.Context, db *gorm.DB, productID, imageID int64) (*domain.ProductImage, error) {
	var img domain.ProductImage
	err := db.WithContext(ctx).First(&img, "id = ? AND product_id = ?", imageID, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *repo) DeleteImage(ctx context.Context, db *gorm.DB, productID, imageID int64) error {
	return db.WithContext(ctx).Delete(&domain.ProductImage{}, "id = ? AND product_id = ?", imageID, productID).Error
}
