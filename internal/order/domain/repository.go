package domain

import (
	"context"

	"github.com/smallbiznis/lokapasar/pkg/db/listquery"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Order, error)
	List(ctx context.Context, db *gorm.DB, desc listquery.Descriptor) ([]Order, int64, error)
	Update(ctx context.Context, db *gorm.DB, order *Order) error
}
