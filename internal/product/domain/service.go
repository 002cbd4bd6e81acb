package domain

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/smallbiznis/lokapasar/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, *pagination.Meta, error)
	Get(ctx context.Context, id string) (*Response, error)
	GetBySlug(ctx context.Context, slug string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error

	UploadImage(ctx context.Context, req UploadImageRequest) (*ImageResponse, error)
	DeleteImage(ctx context.Context, productID, imageID string) error
}

type ListRequest struct {
	Page       int
	Limit      int
	Search     string
	CategoryID string
	IsActive   *bool
	InStock    *bool
	IsOnSale   *bool
	MinPrice   *int64
	MaxPrice   *int64
	Mode       string
	SortBy     string
	OrderBy    string
}

type CreateRequest struct {
	CategoryID  string         `json:"category_id"`
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	Type        string         `json:"type"`
	Metadata    map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	ID          string         `json:"-"`
	CategoryID  *string        `json:"category_id"`
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

type UploadImageRequest struct {
	ProductID string
	Filename  string
	Content   io.Reader
	Position  int
}

type Response struct {
	ID          string          `json:"id"`
	CategoryID  string          `json:"category_id"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Description *string         `json:"description,omitempty"`
	Type        string          `json:"type"`
	IsActive    bool            `json:"is_active"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
	Images      []ImageResponse `json:"images,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ImageResponse struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

var (
	ErrInvalidTitle    = errors.New("invalid_title")
	ErrInvalidType     = errors.New("invalid_product_type")
	ErrInvalidCategory = errors.New("invalid_category")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
	ErrImageNotFound   = errors.New("image_not_found")
	ErrTitleTaken      = errors.New("product_title_taken")
)
