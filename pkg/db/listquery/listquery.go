// Package listquery turns a typed filter options struct into an executable
// query descriptor: a set of AND-combined conditions shared by the page query
// and the count query, plus ordering and offset pagination for the page query
// alone.
package listquery

import (
	"errors"
	"time"

	"github.com/smallbiznis/lokapasar/pkg/db/option"
	"github.com/smallbiznis/lokapasar/pkg/db/pagination"
)

// Mode is the tri-state relation-existence filter.
type Mode string

const (
	// ModeAll ignores related rows entirely.
	ModeAll Mode = "all"
	// ModeWith requires at least one related row matching the nested criteria.
	ModeWith Mode = "with"
	// ModeWithout requires zero related rows matching the nested criteria.
	ModeWithout Mode = "without"
)

// ParseMode normalizes a query-string mode value. Empty means ModeAll.
func ParseMode(raw string) (Mode, bool) {
	switch Mode(raw) {
	case "", ModeAll:
		return ModeAll, true
	case ModeWith:
		return ModeWith, true
	case ModeWithout:
		return ModeWithout, true
	default:
		return ModeAll, false
	}
}

var (
	// ErrPriceRange rejects min_price > max_price; no silent swap.
	ErrPriceRange = errors.New("invalid_price_range")
	// ErrDateRange rejects start_date > end_date, matching the price rule.
	ErrDateRange = errors.New("invalid_date_range")
)

// Relation names the related table a Mode filter runs against.
type Relation struct {
	Table       string
	ForeignKey  string
	ParentTable string
	// Nested holds exact-match criteria evaluated inside the relation
	// subquery, e.g. {"is_active": true} for "with at least one active row".
	Nested map[string]any
}

// Options is the normalized filter bag. Pointer fields distinguish "absent"
// from zero values; absent means no filter.
type Options struct {
	Page         int
	Limit        int
	DefaultLimit int

	Search       string
	SearchColumn string

	IsActive *bool
	InStock  *bool
	IsOnSale *bool

	MinPrice    *int64
	MaxPrice    *int64
	PriceColumn string

	Status        string
	StatusColumn  string
	PaymentStatus string
	PaymentColumn string

	StartDate  *time.Time
	EndDate    *time.Time
	DateColumn string

	Mode     Mode
	Relation Relation
	// NestedActive applies the is_active filter inside the relation subquery
	// instead of on the top-level entity.
	NestedActive *bool

	ExtraWhere map[string]any

	SortBy      string
	OrderBy     string
	SortColumns map[string]bool
}

// Descriptor is the executable shape. Where applies to both the page query
// and the count query; Order and Paging apply to the page query only.
type Descriptor struct {
	Where  []option.QueryOption
	Order  option.QueryOption
	Paging option.QueryOption
	Page   pagination.Page
}

// Build composes a Descriptor. It assumes enum fields were validated upstream
// and only rejects inconsistent ranges.
func Build(opts Options) (Descriptor, error) {
	if opts.MinPrice != nil && opts.MaxPrice != nil && *opts.MinPrice > *opts.MaxPrice {
		return Descriptor{}, ErrPriceRange
	}
	if opts.StartDate != nil && opts.EndDate != nil && opts.StartDate.After(*opts.EndDate) {
		return Descriptor{}, ErrDateRange
	}

	where := make([]option.QueryOption, 0, 8)

	if opts.Search != "" && opts.SearchColumn != "" {
		where = append(where, option.Search(opts.SearchColumn, opts.Search))
	}
	if opts.IsActive != nil {
		where = append(where, option.BoolEq("is_active", opts.IsActive))
	}
	if opts.InStock != nil {
		if *opts.InStock {
			where = append(where, option.Where("stock > 0"))
		} else {
			where = append(where, option.Where("stock <= 0"))
		}
	}
	if opts.IsOnSale != nil {
		where = append(where, option.BoolEq("is_on_sale", opts.IsOnSale))
	}
	if opts.PriceColumn != "" && (opts.MinPrice != nil || opts.MaxPrice != nil) {
		where = append(where, option.Int64Between(opts.PriceColumn, opts.MinPrice, opts.MaxPrice))
	}
	if opts.Status != "" && opts.StatusColumn != "" {
		where = append(where, option.Eq(opts.StatusColumn, opts.Status))
	}
	if opts.PaymentStatus != "" && opts.PaymentColumn != "" {
		where = append(where, option.Eq(opts.PaymentColumn, opts.PaymentStatus))
	}
	if opts.DateColumn != "" && (opts.StartDate != nil || opts.EndDate != nil) {
		where = append(where, option.TimeBetween(opts.DateColumn, opts.StartDate, opts.EndDate))
	}
	if relOpt := relationOption(opts); relOpt != nil {
		where = append(where, relOpt)
	}
	if len(opts.ExtraWhere) > 0 {
		where = append(where, option.ExtraWhere(opts.ExtraWhere))
	}

	page := pagination.Normalize(opts.Page, opts.Limit, opts.DefaultLimit)

	return Descriptor{
		Where:  where,
		Order:  option.WithSortBy(opts.SortBy, opts.OrderBy, opts.SortColumns),
		Paging: option.Paginate(page.Skip, page.Take),
		Page:   page,
	}, nil
}

func relationOption(opts Options) option.QueryOption {
	if opts.Mode == "" || opts.Mode == ModeAll {
		return nil
	}
	rel := opts.Relation
	if rel.Table == "" || rel.ForeignKey == "" || rel.ParentTable == "" {
		return nil
	}

	nested := make(map[string]any, len(rel.Nested)+1)
	for column, value := range rel.Nested {
		nested[column] = value
	}
	if opts.NestedActive != nil {
		nested["is_active"] = *opts.NestedActive
	}

	return option.Exists(opts.Mode == ModeWithout, rel.Table, rel.ForeignKey, rel.ParentTable, nested)
}
