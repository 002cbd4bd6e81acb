package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/lokapasar/internal/review/domain"
	"github.com/smallbiznis/lokapasar/pkg/db/listquery"
	"github.com/smallbiznis/lokapasar/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, review *domain.Review) error {
	return db.WithContext(ctx).Create(review).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Review, error) {
	var rv domain.Review
	err := db.WithContext(ctx).First(&rv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *repo) FindByProductAndUser(ctx context.Context, db *gorm.DB, productID, userID int64) (*domain.Review, error) {
	var rv domain.Review
	err := db.WithContext(ctx).First(&rv, "product_id = ? AND user_id = ?", productID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, desc listquery.Descriptor) ([]domain.Review, int64, error) {
	base := db.WithContext(ctx).Model(&domain.Review{})
	base = option.Apply(base, desc.Where...)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Review
	stmt := option.Apply(base.Session(&gorm.Session{}), desc.Order, desc.Paging)
	if err := stmt.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Delete(&domain.Review{}, "id = ?", id).Error
}
