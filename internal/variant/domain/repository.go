package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, variant *Variant) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Variant, error)
	FindByAttribute(ctx context.Context, db *gorm.DB, productID int64, attribute string) (*Variant, error)
	FindByProduct(ctx context.Context, db *gorm.DB, productID int64) ([]Variant, error)
	Update(ctx context.Context, db *gorm.DB, variant *Variant) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
}
