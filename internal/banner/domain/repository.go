package domain

import (
	"context"
	"time"

	"github.com/smallbiznis/lokapasar/pkg/db/listquery"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, banner *Banner) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Banner, error)
	List(ctx context.Context, db *gorm.DB, desc listquery.Descriptor) ([]Banner, int64, error)
	// FindLive returns active banners whose schedule window covers now,
	// in position order.
	FindLive(ctx context.Context, db *gorm.DB, now time.Time) ([]Banner, error)
	Update(ctx context.Context, db *gorm.DB, banner *Banner) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
}
