package domain

import (
	"context"

	"github.com/smallbiznis/lokapasar/pkg/db/listquery"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Product, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Product, error)
	List(ctx context.Context, db *gorm.DB, desc listquery.Descriptor) ([]Product, int64, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error

	AddImage(ctx context.Context, db *gorm.DB, image *ProductImage) error
	FindImage(ctx context.Context, db *gorm.DB, productID, imageID int64) (*ProductImage, error)
	DeleteImage(ctx context.Context, db *gorm.DB, productID, imageID int64) error
}
