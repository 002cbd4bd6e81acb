package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/lokapasar/internal/category/domain"
	"github.com/smallbiznis/lokapasar/internal/category/repository"
	"github.com/smallbiznis/lokapasar/internal/clock"
	productdomain "github.com/smallbiznis/lokapasar/internal/product/domain"
	"github.com/smallbiznis/lokapasar/pkg/db"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.Category{},
		&productdomain.Product{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, conn
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, domain.CreateRequest{Name: "  Specialty Coffee  "})
	require.NoError(t, err)
	assert.Equal(t, "Specialty Coffee", resp.Name)
	assert.Equal(t, "specialty-coffee", resp.Slug)
	assert.False(t, resp.IsActive, "new categories start inactive until a product activates them")

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Specialty Coffee"})
	assert.ErrorIs(t, err, domain.ErrNameTaken)
}

func TestGetBySlug(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Specialty Coffee"})
	require.NoError(t, err)

	got, err := svc.GetBySlug(ctx, "specialty-coffee")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetBySlug(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_RenameRegeneratesSlug(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Coffee"})
	require.NoError(t, err)

	name := "Tea & Coffee"
	got, err := svc.Update(ctx, domain.UpdateRequest{ID: created.ID, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Tea & Coffee", got.Name)
	assert.Equal(t, "tea-and-coffee", got.Slug)
}

func TestDelete_GuardedByProducts(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Coffee"})
	require.NoError(t, err)
	categoryID, err := snowflake.ParseString(created.ID)
	require.NoError(t, err)

	now := time.Now().UTC()
	product := productdomain.Product{
		ID: 10, CategoryID: categoryID.Int64(), Title: "House Blend", Slug: "house-blend",
		Type: productdomain.TypeAmount, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, conn.Create(&product).Error)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), domain.ErrHasProducts)

	require.NoError(t, conn.Delete(&product).Error)
	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_RelationModes(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	withProducts, err := svc.Create(ctx, domain.CreateRequest{Name: "Coffee"})
	require.NoError(t, err)
	empty, err := svc.Create(ctx, domain.CreateRequest{Name: "Apparel"})
	require.NoError(t, err)

	categoryID, err := snowflake.ParseString(withProducts.ID)
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, conn.Create(&productdomain.Product{
		ID: 10, CategoryID: categoryID.Int64(), Title: "House Blend", Slug: "house-blend",
		Type: productdomain.TypeAmount, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}).Error)

	items, meta, err := svc.List(ctx, domain.ListRequest{Page: 1, Limit: 10, Mode: "with"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, withProducts.ID, items[0].ID)
	assert.EqualValues(t, 1, meta.Total)

	items, _, err = svc.List(ctx, domain.ListRequest{Page: 1, Limit: 10, Mode: "without"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, empty.ID, items[0].ID)

	items, _, err = svc.List(ctx, domain.ListRequest{Page: 1, Limit: 10, Mode: "all"})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestList_SearchAndActiveFilter(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	coffee, err := svc.Create(ctx, domain.CreateRequest{Name: "Specialty Coffee"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Apparel"})
	require.NoError(t, err)

	items, _, err := svc.List(ctx, domain.ListRequest{Page: 1, Limit: 10, Search: "coffee"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, coffee.ID, items[0].ID)

	require.NoError(t, conn.Model(&domain.Category{}).
		Where("slug = ?", "apparel").
		Update("is_active", true).Error)

	active := true
	items, _, err = svc.List(ctx, domain.ListRequest{Page: 1, Limit: 10, IsActive: &active})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "apparel", items[0].Slug)
}
