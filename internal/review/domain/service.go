package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/lokapasar/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	ListByProduct(ctx context.Context, req ListRequest) ([]Response, *pagination.Meta, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	ProductID string  `json:"-"`
	Rating    int     `json:"rating"`
	Title     *string `json:"title"`
	Comment   *string `json:"comment"`
}

type ListRequest struct {
	ProductID string
	Page      int
	Limit     int
	SortBy    string
	OrderBy   string
}

type Response struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Title     *string   `json:"title,omitempty"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidRating   = errors.New("invalid_rating")
	ErrNotFound        = errors.New("not_found")
	ErrAlreadyReviewed = errors.New("already_reviewed")
	ErrNotOwner        = errors.New("review_not_owner")
	ErrNoUser          = errors.New("missing_user")
)
