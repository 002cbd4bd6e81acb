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
	ListLive(ctx context.Context) ([]Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Title     string
	TargetURL *string
	Position  int
	StartsAt  *time.Time
	EndsAt    *time.Time

	ImageFilename string
	ImageContent  io.Reader
}

type UpdateRequest struct {
	ID        string     `json:"-"`
	Title     *string    `json:"title"`
	TargetURL *string    `json:"target_url"`
	Position  *int       `json:"position"`
	IsActive  *bool      `json:"is_active"`
	StartsAt  *time.Time `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at"`
}

type ListRequest struct {
	Page      int
	Limit     int
	Search    string
	IsActive  *bool
	StartDate *time.Time
	EndDate   *time.Time
	SortBy    string
	OrderBy   string
}

type Response struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	ImageURL  string     `json:"image_url"`
	TargetURL *string    `json:"target_url,omitempty"`
	Position  int        `json:"position"`
	IsActive  bool       `json:"is_active"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

var (
	ErrInvalidTitle  = errors.New("invalid_title")
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidWindow = errors.New("invalid_schedule_window")
	ErrNotFound      = errors.New("not_found")
)
