package domain

import (
	"context"
	"errors"
	"io"
	"time"

	paymentdomain "github.com/smallbiznis/lokapasar/internal/payment/domain"
	"github.com/smallbiznis/lokapasar/pkg/db/pagination"
)

type Service interface {
	Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error)
	Get(ctx context.Context, id string) (*Response, error)
	GetMine(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, *pagination.Meta, error)
	ListMine(ctx context.Context, req ListRequest) ([]Response, *pagination.Meta, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*Response, error)
	Receipt(ctx context.Context, id string) (io.Reader, error)

	// ApplyPaymentEvent transitions the order the event's metadata points at.
	// Replayed events are absorbed without a second transition.
	ApplyPaymentEvent(ctx context.Context, event *paymentdomain.PaymentEvent) error
}

type CheckoutItem struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type CheckoutRequest struct {
	Email string         `json:"email"`
	Items []CheckoutItem `json:"items"`

	ShipToName    string `json:"ship_to_name"`
	ShipToAddress string `json:"ship_to_address"`
	ShipToCity    string `json:"ship_to_city"`
	ShipToPostal  string `json:"ship_to_postal"`
	ShipToCountry string `json:"ship_to_country"`
}

type CheckoutResponse struct {
	Order      Response `json:"order"`
	PaymentURL string   `json:"payment_url,omitempty"`
}

type ListRequest struct {
	Page          int
	Limit         int
	Search        string
	Status        string
	PaymentStatus string
	StartDate     *time.Time
	EndDate       *time.Time
	SortBy        string
	OrderBy       string
}

type UpdateStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

type Response struct {
	ID              string         `json:"id"`
	Number          string         `json:"number"`
	UserID          string         `json:"user_id"`
	Email           string         `json:"email"`
	Status          string         `json:"status"`
	PaymentStatus   string         `json:"payment_status"`
	PaymentProvider string         `json:"payment_provider,omitempty"`
	Currency        string         `json:"currency"`
	Subtotal        int64          `json:"subtotal"`
	Shipping        int64          `json:"shipping"`
	Total           int64          `json:"total"`
	ShipToName      string         `json:"ship_to_name"`
	ShipToAddress   string         `json:"ship_to_address"`
	ShipToCity      string         `json:"ship_to_city"`
	ShipToPostal    string         `json:"ship_to_postal"`
	ShipToCountry   string         `json:"ship_to_country"`
	Items           []ItemResponse `json:"items,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type ItemResponse struct {
	ID           string `json:"id"`
	ProductID    string `json:"product_id"`
	VariantID    string `json:"variant_id"`
	ProductTitle string `json:"product_title"`
	VariantName  string `json:"variant_name"`
	SKU          string `json:"sku"`
	UnitPrice    int64  `json:"unit_price"`
	Quantity     int    `json:"quantity"`
	Total        int64  `json:"total"`
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("not_found")
	ErrNoUser             = errors.New("missing_user")
	ErrNotOwner           = errors.New("order_not_owner")
	ErrEmptyCart          = errors.New("empty_cart")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrVariantUnavailable = errors.New("variant_unavailable")
	ErrInsufficientStock  = errors.New("insufficient_stock")
	ErrNotPaid            = errors.New("order_not_paid")
)
