package service

import (
	"context"
	"errors"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/lokapasar/internal/activation/domain"
	categorydomain "github.com/smallbiznis/lokapasar/internal/category/domain"
	"github.com/smallbiznis/lokapasar/internal/clock"
	"github.com/smallbiznis/lokapasar/internal/observability/metrics"
	productdomain "github.com/smallbiznis/lokapasar/internal/product/domain"
	variantdomain "github.com/smallbiznis/lokapasar/internal/variant/domain"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Metrics *metrics.Metrics
}

type Service struct {
	log     *zap.Logger
	clock   clock.Clock
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("activation.service"),
		clock:   p.Clock,
		metrics: p.Metrics,
	}
}

func (s *Service) ReactivateAncestors(ctx context.Context, tx *gorm.DB, productID int64) error {
	var product productdomain.Product
	err := tx.WithContext(ctx).First(&product, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return productdomain.ErrNotFound
	}
	if err != nil {
		return err
	}

	if !product.IsActive {
		if err := s.setProductActive(ctx, tx, product.ID, true); err != nil {
			return err
		}
	}

	var category categorydomain.Category
	err = tx.WithContext(ctx).First(&category, "id = ?", product.CategoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return categorydomain.ErrNotFound
	}
	if err != nil {
		return err
	}

	if !category.IsActive {
		return s.setCategoryActive(ctx, tx, category.ID, true)
	}
	return nil
}

func (s *Service) ReconcileProduct(ctx context.Context, tx *gorm.DB, productID int64) error {
	var product productdomain.Product
	err := tx.WithContext(ctx).First(&product, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return productdomain.ErrNotFound
	}
	if err != nil {
		return err
	}

	var activeVariants int64
	err = tx.WithContext(ctx).
		Model(&variantdomain.Variant{}).
		Where("product_id = ? AND is_active = ?", product.ID, true).
		Count(&activeVariants).Error
	if err != nil {
		return err
	}

	wantActive := activeVariants > 0
	if product.IsActive != wantActive {
		if err := s.setProductActive(ctx, tx, product.ID, wantActive); err != nil {
			return err
		}
	}

	return s.ReconcileCategory(ctx, tx, product.CategoryID)
}

func (s *Service) ReconcileCategory(ctx context.Context, tx *gorm.DB, categoryID int64) error {
	var category categorydomain.Category
	err := tx.WithContext(ctx).First(&category, "id = ?", categoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return categorydomain.ErrNotFound
	}
	if err != nil {
		return err
	}

	var activeProducts int64
	err = tx.WithContext(ctx).
		Model(&productdomain.Product{}).
		Where("category_id = ? AND is_active = ?", category.ID, true).
		Count(&activeProducts).Error
	if err != nil {
		return err
	}

	wantActive := activeProducts > 0
	if category.IsActive != wantActive {
		return s.setCategoryActive(ctx, tx, category.ID, wantActive)
	}
	return nil
}

func (s *Service) setProductActive(ctx context.Context, tx *gorm.DB, productID int64, active bool) error {
	err := tx.WithContext(ctx).
		Model(&productdomain.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{"is_active": active, "updated_at": s.clock.Now()}).Error
	if err != nil {
		return err
	}
	s.recordFlip(ctx, "product", productID, active)
	return nil
}

func (s *Service) setCategoryActive(ctx context.Context, tx *gorm.DB, categoryID int64, active bool) error {
	err := tx.WithContext(ctx).
		Model(&categorydomain.Category{}).
		Where("id = ?", categoryID).
		Updates(map[string]any{"is_active": active, "updated_at": s.clock.Now()}).Error
	if err != nil {
		return err
	}
	s.recordFlip(ctx, "category", categoryID, active)
	return nil
}

func (s *Service) recordFlip(ctx context.Context, entity string, id int64, active bool) {
	direction := "deactivated"
	if active {
		direction = "activated"
	}
	s.log.Info("activation flip",
		zap.String("entity", entity),
		zap.Int64("id", id),
		zap.String("direction", direction),
	)
	if s.metrics != nil {
		s.metrics.RecordActivationFlip(ctx, entity, direction)
	}
}
