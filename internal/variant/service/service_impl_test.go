package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	activationservice "github.com/smallbiznis/lokapasar/internal/activation/service"
	categorydomain "github.com/smallbiznis/lokapasar/internal/category/domain"
	"github.com/smallbiznis/lokapasar/internal/clock"
	productdomain "github.com/smallbiznis/lokapasar/internal/product/domain"
	productrepository "github.com/smallbiznis/lokapasar/internal/product/repository"
	"github.com/smallbiznis/lokapasar/internal/variant/domain"
	"github.com/smallbiznis/lokapasar/internal/variant/repository"
	"github.com/smallbiznis/lokapasar/pkg/db"
)

var skuPattern = regexp.MustCompile(`^[A-Z0-9-]+-[0-9A-F]{6}$`)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	return newTestServiceWithRepo(t, repository.Provide())
}

func newTestServiceWithRepo(t *testing.T, repo domain.Repository) (domain.Service, *gorm.DB) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&categorydomain.Category{},
		&productdomain.Product{},
		&productdomain.ProductImage{},
		&domain.Variant{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	activation := activationservice.New(activationservice.Params{
		Log:   zap.NewNop(),
		Clock: clk,
	})

	svc := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		Clock:       clk,
		GenID:       node,
		Repo:        repo,
		ProductRepo: productrepository.Provide(),
		Activation:  activation,
	})
	return svc, conn
}

func seedProduct(t *testing.T, conn *gorm.DB, productType string, active bool) (int64, int64) {
	t.Helper()
	now := time.Now().UTC()

	category := categorydomain.Category{
		ID: 1, Name: "Apparel", Slug: "apparel", IsActive: active,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, conn.Create(&category).Error)

	product := productdomain.Product{
		ID: 10, CategoryID: category.ID, Title: "Logo T-Shirt", Slug: "logo-t-shirt",
		Type: productType, IsActive: active,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, conn.Create(&product).Error)

	return category.ID, product.ID
}

func strPtr(v string) *string { return &v }
func i64Ptr(v int64) *int64   { return &v }
func intPtr(v int) *int       { return &v }

func TestCreate_SizeVariant(t *testing.T) {
	svc, conn := newTestService(t)
	categoryID, productID := seedProduct(t, conn, productdomain.TypeSize, false)
	ctx := context.Background()

	resp, err := svc.Create(ctx, domain.CreateRequest{
		ProductID:   snowflake.ID(productID).String(),
		Size:        strPtr("m"),
		Price:       1899,
		Stock:       25,
		WeightGrams: 200,
	})
	require.NoError(t, err)

	assert.Equal(t, "m", resp.Attribute)
	assert.Equal(t, "Logo T-Shirt m", resp.Name)
	assert.True(t, resp.IsActive)
	assert.False(t, resp.IsOnSale)
	assert.Regexp(t, skuPattern, resp.SKU)

	// Creating sellable inventory reactivates the inactive ancestors.
	var product productdomain.Product
	require.NoError(t, conn.First(&product, "id = ?", productID).Error)
	assert.True(t, product.IsActive)
	var category categorydomain.Category
	require.NoError(t, conn.First(&category, "id = ?", categoryID).Error)
	assert.True(t, category.IsActive)
}

func TestCreate_AmountVariant(t *testing.T) {
	svc, conn := newTestService(t)
	_, productID := seedProduct(t, conn, productdomain.TypeAmount, true)
	ctx := context.Background()

	resp, err := svc.Create(ctx, domain.CreateRequest{
		ProductID:   snowflake.ID(productID).String(),
		Amount:      i64Ptr(250),
		Unit:        strPtr("g"),
		Price:       899,
		Stock:       10,
		WeightGrams: 250,
	})
	require.NoError(t, err)
	assert.Equal(t, "250 g", resp.Attribute)
}

func TestCreate_ZeroStockStaysInactive(t *testing.T) {
	svc, conn := newTestService(t)
	_, productID := seedProduct(t, conn, productdomain.TypeSize, false)
	ctx := context.Background()

	resp, err := svc.Create(ctx, domain.CreateRequest{
		ProductID: snowflake.ID(productID).String(),
		Size:      strPtr("s"),
		Price:     1000,
		Stock:     0,
	})
	require.NoError(t, err)
	assert.False(t, resp.IsActive, "zero stock can never be active")

	// Reactivation of ancestors is unconditional on create.
	var product productdomain.Product
	require.NoError(t, conn.First(&product, "id = ?", productID).Error)
	assert.True(t, product.IsActive)
}

func TestCreate_ValidationErrors(t *testing.T) {
	svc, conn := newTestService(t)
	_, productID := seedProduct(t, conn, productdomain.TypeSize, true)
	ctx := context.Background()
	id := snowflake.ID(productID).String()

	_, err := svc.Create(ctx, domain.CreateRequest{ProductID: id, Price: 1000, Stock: 1})
	assert.ErrorIs(t, err, domain.ErrMissingSize)

	_, err = svc.Create(ctx, domain.CreateRequest{ProductID: id, Size: strPtr("m"), Price: 0, Stock: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.Create(ctx, domain.CreateRequest{
		ProductID: id, Size: strPtr("m"), Price: 1000, Stock: 1,
		DiscountPrice: i64Ptr(1000),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDiscount)

	_, err = svc.Create(ctx, domain.CreateRequest{
		ProductID: id, Size: strPtr("m"), Price: 1000, Stock: 1,
		DiscountPercentage: intPtr(100),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDiscount)

	_, err = svc.Create(ctx, domain.CreateRequest{ProductID: "not-a-number", Size: strPtr("m"), Price: 1000})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestCreate_AmountVariantRequiresUnit(t *testing.T) {
	svc, conn := newTestService(t)
	_, productID := seedProduct(t, conn, productdomain.TypeAmount, true)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{
		ProductID: snowflake.ID(productID).String(),
		Amount:    i64Ptr(250),
		Price:     899,
		Stock:     5,
	})
	assert.ErrorIs(t, err, domain.ErrMissingAmount)
}

func TestCreate_DuplicateAttribute(t *testing.T) {
	svc, conn := newTestService(t)
	_, productID := seedProduct(t, conn, productdomain.TypeSize, true)
	ctx := context.Background()
	id := snowflake.ID(productID).String()

	_, err := svc.Create(ctx, domain.CreateRequest{ProductID: id, Size: strPtr("m"), Price: 1000, Stock: 5})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateRequest{ProductID: id, Size: strPtr("m"), Price: 1200, Stock: 5})
	assert.ErrorIs(t, err, domain.ErrDuplicateAttribute)
}

// blindRepo swallows the first attribute lookup, so the service behaves as if
// a concurrent request inserted the same attribute between the pre-check and
// the insert. The unique index then has to catch the conflict.
type blindRepo struct {
	domain.Repository
	lookups int
}

func (r *blindRepo) FindByAttribute(ctx context.Context, db *gorm.DB, productID int64, attribute string) (*domain.Variant, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, nil
	}
	return r.Repository.FindByAttribute(ctx, db, productID, attribute)
}

func TestCreate_AttributeRaceLoserGetsConflict(t *testing.T) {
	repo := &blindRepo{Repository: repository.Provide()}
	svc, conn := newTestServiceWithRepo(t, repo)
	_, productID := seedProduct(t, conn, productdomain.TypeSize, true)
	ctx := context.Background()

	now := time.Now().UTC()
	winner := domain.Variant{
		ID: 999, ProductID: productID, SKU: "LOGO-T-SHIRT-M-0F0F0F",
		Name: "Logo T-Shirt m", Attribute: "m", Size: strPtr("m"),
		Price: 1000, Stock: 3, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, conn.Create(&winner).Error)

	_, err := svc.Create(ctx, domain.CreateRequest{
		ProductID: snowflake.ID(productID).String(),
		Size:      strPtr("m"),
		Price:     1200,
		Stock:     5,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateAttribute)
	assert.Equal(t, 2, repo.lookups, "index violation must trigger a fresh lookup")

	var count int64
	require.NoError(t, conn.Model(&domain.Variant{}).Where("product_id = ?", productID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "only the first insert may survive")
}

// collidingSKURepo forces the first insert to reuse an existing SKU, so the
// create path has to regenerate the suffix and insert again.
type collidingSKURepo struct {
	domain.Repository
	sku     string
	creates int
}

func (r *collidingSKURepo) Create(ctx context.Context, db *gorm.DB, v *domain.Variant) error {
	r.creates++
	if r.creates == 1 {
		v.SKU = r.sku
	}
	return r.Repository.Create(ctx, db, v)
}

func TestCreate_SKUCollisionRetriesOnce(t *testing.T) {
	const takenSKU = "LOGO-T-SHIRT-S-ABCDEF"
	repo := &collidingSKURepo{Repository: repository.Provide(), sku: takenSKU}
	svc, conn := newTestServiceWithRepo(t, repo)
	_, productID := seedProduct(t, conn, productdomain.TypeSize, true)
	ctx := context.Background()

	now := time.Now().UTC()
	holder := domain.Variant{
		ID: 998, ProductID: productID, SKU: takenSKU,
		Name: "Logo T-Shirt s", Attribute: "s", Size: strPtr("s"),
		Price: 900, Stock: 2, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, conn.Create(&holder).Error)

	resp, err := svc.Create(ctx, domain.CreateRequest{
		ProductID: snowflake.ID(productID).String(),
		Size:      strPtr("m"),
		Price:     1200,
		Stock:     5,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.creates, "exactly one retry after the collision")
	assert.NotEqual(t, takenSKU, resp.SKU)
	assert.Regexp(t, skuPattern, resp.SKU)
}

func TestUpdate_DepletedStockDeactivatesCascade(t *testing.T) {
	svc, conn := newTestService(t)
	categoryID, productID := seedProduct(t, conn, productdomain.TypeSize, false)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{
		ProductID: snowflake.ID(productID).String(),
		Size:      strPtr("m"),
		Price:     1000,
		Stock:     5,
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, domain.UpdateRequest{ID: created.ID, Stock: intPtr(0)})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	var product productdomain.Product
	require.NoError(t, conn.First(&product, "id = ?", productID).Error)
	assert.False(t, product.IsActive, "sole variant depleted must deactivate the product")
	var category categorydomain.Category
	require.NoError(t, conn.First(&category, "id = ?", categoryID).Error)
	assert.False(t, category.IsActive)
}

func TestUpdate_DiscountLifecycle(t *testing.T) {
	svc, conn := newTestService(t)
	_, productID := seedProduct(t, conn, productdomain.TypeSize, true)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{
		ProductID: snowflake.ID(productID).String(),
		Size:      strPtr("l"),
		Price:     2000,
		Stock:     5,
	})
	require.NoError(t, err)

	discounted, err := svc.Update(ctx, domain.UpdateRequest{ID: created.ID, DiscountPrice: i64Ptr(1500)})
	require.NoError(t, err)
	assert.True(t, discounted.IsOnSale)

	cleared, err := svc.Update(ctx, domain.UpdateRequest{ID: created.ID, ClearDiscount: true})
	require.NoError(t, err)
	assert.False(t, cleared.IsOnSale)
	assert.Nil(t, cleared.DiscountPrice)
}

func TestDelete_LastVariantDeactivatesProduct(t *testing.T) {
	svc, conn := newTestService(t)
	_, productID := seedProduct(t, conn, productdomain.TypeSize, false)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{
		ProductID: snowflake.ID(productID).String(),
		Size:      strPtr("m"),
		Price:     1000,
		Stock:     5,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	var product productdomain.Product
	require.NoError(t, conn.First(&product, "id = ?", productID).Error)
	assert.False(t, product.IsActive)

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
