package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	ListByProduct(ctx context.Context, productID string) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	ProductID string `json:"product_id"`

	Size   *string `json:"size"`
	Amount *int64  `json:"amount"`
	Unit   *string `json:"unit"`

	Price              int64  `json:"price"`
	DiscountPrice      *int64 `json:"discount_price"`
	DiscountPercentage *int   `json:"discount_percentage"`

	Stock       int   `json:"stock"`
	WeightGrams int   `json:"weight_grams"`
	IsActive    *bool `json:"is_active"`
}

type UpdateRequest struct {
	ID string `json:"-"`

	Price              *int64 `json:"price"`
	DiscountPrice      *int64 `json:"discount_price"`
	DiscountPercentage *int   `json:"discount_percentage"`
	ClearDiscount      bool   `json:"clear_discount"`

	Stock       *int  `json:"stock"`
	WeightGrams *int  `json:"weight_grams"`
	IsActive    *bool `json:"is_active"`
}

type Response struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`

	Attribute string  `json:"attribute"`
	Size      *string `json:"size,omitempty"`
	Amount    *int64  `json:"amount,omitempty"`
	Unit      *string `json:"unit,omitempty"`

	Price              int64  `json:"price"`
	DiscountPrice      *int64 `json:"discount_price,omitempty"`
	DiscountPercentage *int   `json:"discount_percentage,omitempty"`
	IsOnSale           bool   `json:"is_on_sale"`

	Stock       int  `json:"stock"`
	WeightGrams int  `json:"weight_grams"`
	IsActive    bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidPrice       = errors.New("invalid_price")
	ErrInvalidDiscount    = errors.New("invalid_discount")
	ErrInvalidStock       = errors.New("invalid_stock")
	ErrMissingSize        = errors.New("missing_size")
	ErrMissingAmount      = errors.New("missing_amount")
	ErrDuplicateAttribute = errors.New("duplicate_variant_attribute")
)
