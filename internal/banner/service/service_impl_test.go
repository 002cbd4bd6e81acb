package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/lokapasar/internal/banner/domain"
	"github.com/smallbiznis/lokapasar/internal/banner/repository"
	"github.com/smallbiznis/lokapasar/internal/clock"
	"github.com/smallbiznis/lokapasar/internal/providers/storage"
	"github.com/smallbiznis/lokapasar/pkg/db"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *storageSpy, *clock.FakeClock) {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Banner{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	spy := &storageSpy{}
	clk := clock.NewFakeClock(testNow)
	svc := New(Params{
		DB:      conn,
		Log:     zap.NewNop(),
		Clock:   clk,
		GenID:   node,
		Repo:    repository.Provide(),
		Storage: spy,
	})
	return svc, conn, spy, clk
}

type storageSpy struct {
	deleted []string
}

func (s *storageSpy) Upload(_ context.Context, filename string, _ io.Reader) (*storage.Upload, error) {
	return &storage.Upload{URL: "https://img.example/" + filename, PublicID: "banners/" + filename}, nil
}

func (s *storageSpy) Delete(_ context.Context, publicID string) error {
	s.deleted = append(s.deleted, publicID)
	return nil
}

func timePtr(v time.Time) *time.Time { return &v }

func TestCreate(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, domain.CreateRequest{
		Title:         "  Spring Sale  ",
		Position:      1,
		ImageFilename: "spring.jpg",
		ImageContent:  strings.NewReader("jpeg bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Spring Sale", resp.Title)
	assert.Equal(t, "https://img.example/spring.jpg", resp.ImageURL)
	assert.True(t, resp.IsActive)

	_, err = svc.Create(ctx, domain.CreateRequest{Title: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)

	_, err = svc.Create(ctx, domain.CreateRequest{
		Title:    "Backwards",
		StartsAt: timePtr(testNow.Add(time.Hour)),
		EndsAt:   timePtr(testNow),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}

func TestListLive_WindowAndOrdering(t *testing.T) {
	svc, _, _, clk := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Title: "Always On", Position: 2})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{
		Title:    "Running",
		Position: 1,
		StartsAt: timePtr(testNow.Add(-time.Hour)),
		EndsAt:   timePtr(testNow.Add(time.Hour)),
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{
		Title:    "Expired",
		StartsAt: timePtr(testNow.Add(-48 * time.Hour)),
		EndsAt:   timePtr(testNow.Add(-24 * time.Hour)),
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{
		Title:    "Upcoming",
		StartsAt: timePtr(testNow.Add(24 * time.Hour)),
	})
	require.NoError(t, err)
	hidden, err := svc.Create(ctx, domain.CreateRequest{Title: "Disabled"})
	require.NoError(t, err)
	off := false
	_, err = svc.Update(ctx, domain.UpdateRequest{ID: hidden.ID, IsActive: &off})
	require.NoError(t, err)

	live, err := svc.ListLive(ctx)
	require.NoError(t, err)
	require.Len(t, live, 2)
	assert.Equal(t, "Running", live[0].Title, "live banners come back in position order")
	assert.Equal(t, "Always On", live[1].Title)

	// Two hours later the running window has closed on its own.
	clk.Advance(2 * time.Hour)
	live, err = svc.ListLive(ctx)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "Always On", live[0].Title)
}

func TestList_Filters(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Title: "Spring Sale"})
	require.NoError(t, err)
	created, err := svc.Create(ctx, domain.CreateRequest{Title: "Winter Clearance"})
	require.NoError(t, err)
	off := false
	_, err = svc.Update(ctx, domain.UpdateRequest{ID: created.ID, IsActive: &off})
	require.NoError(t, err)

	items, meta, err := svc.List(ctx, domain.ListRequest{Page: 1, Limit: 10, Search: "winter"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Winter Clearance", items[0].Title)
	assert.EqualValues(t, 1, meta.Total)

	active := true
	items, _, err = svc.List(ctx, domain.ListRequest{Page: 1, Limit: 10, IsActive: &active})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Spring Sale", items[0].Title)
}

func TestUpdate_WindowValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{
		Title:    "Scheduled",
		StartsAt: timePtr(testNow),
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, domain.UpdateRequest{
		ID:     created.ID,
		EndsAt: timePtr(testNow.Add(-time.Hour)),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)

	got, err := svc.Update(ctx, domain.UpdateRequest{
		ID:     created.ID,
		EndsAt: timePtr(testNow.Add(time.Hour)),
	})
	require.NoError(t, err)
	require.NotNil(t, got.EndsAt)
}

func TestDelete_CleansUpImage(t *testing.T) {
	svc, _, spy, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{
		Title:         "Spring Sale",
		ImageFilename: "spring.jpg",
		ImageContent:  strings.NewReader("jpeg bytes"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Equal(t, []string{"banners/spring.jpg"}, spy.deleted)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), domain.ErrNotFound)
}
