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

	categorydomain "github.com/smallbiznis/lokapasar/internal/category/domain"
	"github.com/smallbiznis/lokapasar/internal/clock"
	productdomain "github.com/smallbiznis/lokapasar/internal/product/domain"
	productrepository "github.com/smallbiznis/lokapasar/internal/product/repository"
	"github.com/smallbiznis/lokapasar/internal/review/domain"
	"github.com/smallbiznis/lokapasar/internal/review/repository"
	"github.com/smallbiznis/lokapasar/internal/usercontext"
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
		&domain.Review{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		Clock:       clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		GenID:       node,
		Repo:        repository.Provide(),
		ProductRepo: productrepository.Provide(),
	})
	return svc, conn
}

func seedProduct(t *testing.T, conn *gorm.DB) string {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, conn.Create(&categorydomain.Category{
		ID: 1, Name: "Coffee", Slug: "coffee", IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}).Error)
	require.NoError(t, conn.Create(&productdomain.Product{
		ID: 10, CategoryID: 1, Title: "House Blend", Slug: "house-blend",
		Type: productdomain.TypeAmount, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}).Error)
	return snowflake.ID(10).String()
}

func userCtx(id int64) context.Context {
	return usercontext.WithUserID(context.Background(), snowflake.ID(id))
}

func strPtr(v string) *string { return &v }

func TestCreate(t *testing.T) {
	svc, conn := newTestService(t)
	productID := seedProduct(t, conn)

	resp, err := svc.Create(userCtx(777), domain.CreateRequest{
		ProductID: productID,
		Rating:    5,
		Title:     strPtr("  Great beans  "),
		Comment:   strPtr("Would buy again."),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Rating)
	assert.Equal(t, "Great beans", *resp.Title)
	assert.Equal(t, snowflake.ID(777).String(), resp.UserID)
}

func TestCreate_Errors(t *testing.T) {
	svc, conn := newTestService(t)
	productID := seedProduct(t, conn)

	_, err := svc.Create(context.Background(), domain.CreateRequest{ProductID: productID, Rating: 5})
	assert.ErrorIs(t, err, domain.ErrNoUser)

	_, err = svc.Create(userCtx(777), domain.CreateRequest{ProductID: productID, Rating: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidRating)

	_, err = svc.Create(userCtx(777), domain.CreateRequest{ProductID: productID, Rating: 6})
	assert.ErrorIs(t, err, domain.ErrInvalidRating)

	_, err = svc.Create(userCtx(777), domain.CreateRequest{ProductID: "999", Rating: 4})
	assert.ErrorIs(t, err, productdomain.ErrNotFound)
}

func TestCreate_OneReviewPerUser(t *testing.T) {
	svc, conn := newTestService(t)
	productID := seedProduct(t, conn)

	_, err := svc.Create(userCtx(777), domain.CreateRequest{ProductID: productID, Rating: 4})
	require.NoError(t, err)

	_, err = svc.Create(userCtx(777), domain.CreateRequest{ProductID: productID, Rating: 2})
	assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)

	// A different user reviewing the same product is fine.
	_, err = svc.Create(userCtx(888), domain.CreateRequest{ProductID: productID, Rating: 3})
	assert.NoError(t, err)
}

func TestListByProduct(t *testing.T) {
	svc, conn := newTestService(t)
	productID := seedProduct(t, conn)

	_, err := svc.Create(userCtx(777), domain.CreateRequest{ProductID: productID, Rating: 2})
	require.NoError(t, err)
	_, err = svc.Create(userCtx(888), domain.CreateRequest{ProductID: productID, Rating: 5})
	require.NoError(t, err)

	items, meta, err := svc.ListByProduct(context.Background(), domain.ListRequest{
		ProductID: productID, Page: 1, Limit: 10,
		SortBy: "rating", OrderBy: "desc",
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 5, items[0].Rating)
	assert.EqualValues(t, 2, meta.Total)
}

func TestDelete_OwnerOnly(t *testing.T) {
	svc, conn := newTestService(t)
	productID := seedProduct(t, conn)

	created, err := svc.Create(userCtx(777), domain.CreateRequest{ProductID: productID, Rating: 4})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(userCtx(888), created.ID), domain.ErrNotOwner)
	assert.ErrorIs(t, svc.Delete(context.Background(), created.ID), domain.ErrNoUser)
	require.NoError(t, svc.Delete(userCtx(777), created.ID))
	assert.ErrorIs(t, svc.Delete(userCtx(777), created.ID), domain.ErrNotFound)
}
