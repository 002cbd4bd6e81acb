package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/lokapasar/internal/activation/domain"
	categorydomain "github.com/smallbiznis/lokapasar/internal/category/domain"
	"github.com/smallbiznis/lokapasar/internal/clock"
	productdomain "github.com/smallbiznis/lokapasar/internal/product/domain"
	variantdomain "github.com/smallbiznis/lokapasar/internal/variant/domain"
	"github.com/smallbiznis/lokapasar/pkg/db"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&categorydomain.Category{},
		&productdomain.Product{},
		&productdomain.ProductImage{},
		&variantdomain.Variant{},
	))

	svc := New(Params{
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	})
	return svc, conn
}

func seedCatalog(t *testing.T, conn *gorm.DB, categoryActive, productActive, variantActive bool) (int64, int64, int64) {
	t.Helper()
	now := time.Now().UTC()

	category := categorydomain.Category{
		ID: 1, Name: "Coffee", Slug: "coffee", IsActive: categoryActive,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, conn.Create(&category).Error)

	product := productdomain.Product{
		ID: 10, CategoryID: category.ID, Title: "House Blend", Slug: "house-blend",
		Type: productdomain.TypeAmount, IsActive: productActive,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, conn.Create(&product).Error)

	variant := variantdomain.Variant{
		ID: 100, ProductID: product.ID, SKU: "HB-250", Name: "House Blend 250 g",
		Attribute: "250 g", Price: 899, Stock: 10, IsActive: variantActive,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, conn.Create(&variant).Error)

	return category.ID, product.ID, variant.ID
}

func fetchActive(t *testing.T, conn *gorm.DB, categoryID, productID int64) (bool, bool) {
	t.Helper()
	var category categorydomain.Category
	require.NoError(t, conn.First(&category, "id = ?", categoryID).Error)
	var product productdomain.Product
	require.NoError(t, conn.First(&product, "id = ?", productID).Error)
	return category.IsActive, product.IsActive
}

func TestReconcileProduct_DeactivatesCascade(t *testing.T) {
	svc, conn := newTestService(t)
	categoryID, productID, variantID := seedCatalog(t, conn, true, true, true)
	ctx := context.Background()

	// Deactivate the only variant, then reconcile.
	require.NoError(t, conn.Model(&variantdomain.Variant{}).
		Where("id = ?", variantID).
		Update("is_active", false).Error)
	require.NoError(t, svc.ReconcileProduct(ctx, conn, productID))

	categoryActive, productActive := fetchActive(t, conn, categoryID, productID)
	assert.False(t, productActive, "product with no active variants must deactivate")
	assert.False(t, categoryActive, "category with no active products must deactivate")
}

func TestReconcileProduct_ReactivatesCascade(t *testing.T) {
	svc, conn := newTestService(t)
	categoryID, productID, variantID := seedCatalog(t, conn, false, false, false)
	ctx := context.Background()

	require.NoError(t, conn.Model(&variantdomain.Variant{}).
		Where("id = ?", variantID).
		Update("is_active", true).Error)
	require.NoError(t, svc.ReconcileProduct(ctx, conn, productID))

	categoryActive, productActive := fetchActive(t, conn, categoryID, productID)
	assert.True(t, productActive)
	assert.True(t, categoryActive)
}

func TestReconcileProduct_Idempotent(t *testing.T) {
	svc, conn := newTestService(t)
	categoryID, productID, _ := seedCatalog(t, conn, true, true, true)
	ctx := context.Background()

	require.NoError(t, svc.ReconcileProduct(ctx, conn, productID))
	require.NoError(t, svc.ReconcileProduct(ctx, conn, productID))

	categoryActive, productActive := fetchActive(t, conn, categoryID, productID)
	assert.True(t, productActive)
	assert.True(t, categoryActive)
}

func TestReconcileProduct_OtherActiveProductKeepsCategory(t *testing.T) {
	svc, conn := newTestService(t)
	categoryID, productID, variantID := seedCatalog(t, conn, true, true, true)
	ctx := context.Background()

	now := time.Now().UTC()
	other := productdomain.Product{
		ID: 11, CategoryID: categoryID, Title: "Dark Roast", Slug: "dark-roast",
		Type: productdomain.TypeAmount, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, conn.Create(&other).Error)

	require.NoError(t, conn.Model(&variantdomain.Variant{}).
		Where("id = ?", variantID).
		Update("is_active", false).Error)
	require.NoError(t, svc.ReconcileProduct(ctx, conn, productID))

	categoryActive, productActive := fetchActive(t, conn, categoryID, productID)
	assert.False(t, productActive)
	assert.True(t, categoryActive, "a sibling active product keeps the category active")
}

func TestReactivateAncestors(t *testing.T) {
	svc, conn := newTestService(t)
	categoryID, productID, _ := seedCatalog(t, conn, false, false, false)
	ctx := context.Background()

	// New inventory forces ancestors active even while the stored variant
	// row is still inactive.
	require.NoError(t, svc.ReactivateAncestors(ctx, conn, productID))

	categoryActive, productActive := fetchActive(t, conn, categoryID, productID)
	assert.True(t, productActive)
	assert.True(t, categoryActive)
}

func TestReconcileProduct_MissingProduct(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	err := svc.ReconcileProduct(ctx, conn, 999)
	assert.ErrorIs(t, err, productdomain.ErrNotFound)
}

func TestReconcileCategory_MissingCategory(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	err := svc.ReconcileCategory(ctx, conn, 999)
	assert.ErrorIs(t, err, categorydomain.ErrNotFound)
}
