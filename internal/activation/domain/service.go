package domain

import (
	"context"

	"gorm.io/gorm"
)

// Service keeps Category.is_active and Product.is_active consistent with the
// existence of active children. Every method runs against the caller's
// transaction handle so the recount and the ancestor writes commit atomically
// with the mutation that triggered them.
type Service interface {
	// ReactivateAncestors flips an inactive parent product and its inactive
	// category back to active. Variant creation represents new sellable
	// inventory, so the flip is unconditional regardless of the new
	// variant's own active flag.
	ReactivateAncestors(ctx context.Context, tx *gorm.DB, productID int64) error

	// ReconcileProduct recomputes the product's active-variant count and
	// flips the product when the count contradicts its flag, then
	// reconciles the parent category. Stable: a second run with no
	// intervening mutation changes nothing.
	ReconcileProduct(ctx context.Context, tx *gorm.DB, productID int64) error

	// ReconcileCategory recomputes the category's active-product count and
	// flips the category when the count contradicts its flag.
	ReconcileCategory(ctx context.Context, tx *gorm.DB, categoryID int64) error
}
