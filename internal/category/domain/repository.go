package domain

import (
	"context"

	"github.com/smallbiznis/lokapasar/pkg/db/listquery"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, category *Category) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Category, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Category, error)
	List(ctx context.Context, db *gorm.DB, desc listquery.Descriptor) ([]Category, int64, error)
	Update(ctx context.Context, db *gorm.DB, category *Category) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
}
