package repository

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/lokapasar/internal/banner/domain"
	"github.com/smallbiznis/lokapasar/pkg/db/listquery"
	"github.com/smallbiznis/lokapasar/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, banner *domain.Banner) error {
	return db.WithContext(ctx).Create(banner).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Banner, error) {
	var b domain.Banner
	err := db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, desc listquery.Descriptor) ([]domain.Banner, int64, error) {
	base := db.WithContext(ctx).Model(&domain.Banner{})
	base = option.Apply(base, desc.Where...)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Banner
	stmt := option.Apply(base.Session(&gorm.Session{}), desc.Order, desc.Paging)
	if err := stmt.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) FindLive(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.Banner, error) {
	var items []domain.Banner
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at >= ?", now).
		Order("position ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, banner *domain.Banner) error {
	if banner == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).
		Model(&domain.Banner{}).
		Where("id = ?", banner.ID).
		Updates(map[string]any{
			"title":      banner.Title,
			"image_url":  banner.ImageURL,
			"public_id":  banner.PublicID,
			"target_url": banner.TargetURL,
			"position":   banner.Position,
			"is_active":  banner.IsActive,
			"starts_at":  banner.StartsAt,
			"ends_at":    banner.EndsAt,
			"updated_at": banner.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Delete(&domain.Banner{}, "id = ?", id).Error
}
