package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/lokapasar/internal/order/domain"
	"github.com/smallbiznis/lokapasar/pkg/db/listquery"
	"github.com/smallbiznis/lokapasar/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, desc listquery.Descriptor) ([]domain.Order, int64, error) {
	base := db.WithContext(ctx).Model(&domain.Order{})
	base = option.Apply(base, desc.Where...)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Order
	stmt := option.Apply(base.Session(&gorm.Session{}), desc.Order, desc.Paging)
	if err := stmt.Preload("Items").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	if order == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":           order.Status,
			"payment_status":   order.PaymentStatus,
			"payment_provider": order.PaymentProvider,
			"payment_ref":      order.PaymentRef,
			"updated_at":       order.UpdatedAt,
		}).Error
}
