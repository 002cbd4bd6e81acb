package pagination

import "math"

const (
	// MaxLimit caps page size across every list endpoint.
	MaxLimit = 100

	// DefaultStorefrontLimit is the page size storefront listings fall back to.
	DefaultStorefrontLimit = 5

	// DefaultAdminLimit is the page size admin and order listings fall back to.
	DefaultAdminLimit = 10
)

// Page holds normalized offset pagination values.
type Page struct {
	Page  int
	Limit int
	Skip  int
	Take  int
}

// Normalize clamps page/limit to [1, MaxLimit]. Non-positive input (which is
// what invalid or absent query strings parse to) falls back to page 1 and the
// endpoint's default limit.
func Normalize(page, limit, defaultLimit int) Page {
	if defaultLimit <= 0 {
		defaultLimit = DefaultStorefrontLimit
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{
		Page:  page,
		Limit: limit,
		Skip:  (page - 1) * limit,
		Take:  limit,
	}
}

// CalculateLastPage returns ceil(total/limit); 0 when total is 0.
func CalculateLastPage(total int64, limit int) int {
	if limit < 1 {
		limit = 1
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// Meta is the pagination block list responses carry.
type Meta struct {
	Page     int   `json:"page"`
	Limit    int   `json:"limit"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

// NewMeta builds the response block for one executed page.
func NewMeta(p Page, total int64) Meta {
	return Meta{
		Page:     p.Page,
		Limit:    p.Limit,
		Total:    total,
		LastPage: CalculateLastPage(total, p.Limit),
	}
}
