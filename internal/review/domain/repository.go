package domain

import (
	"context"

	"github.com/smallbiznis/lokapasar/pkg/db/listquery"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, review *Review) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Review, error)
	FindByProductAndUser(ctx context.Context, db *gorm.DB, productID, userID int64) (*Review, error)
	List(ctx context.Context, db *gorm.DB, desc listquery.Descriptor) ([]Review, int64, error)
	Delete(ctx context.Context, db *gorm.DB, id int64) error
}
