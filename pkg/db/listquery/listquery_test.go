package listquery

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/smallbiznis/lokapasar/pkg/db/option"
)

type lqParent struct {
	ID        int64 `gorm:"primaryKey"`
	Name      string
	IsActive  bool
	Price     int64
	Stock     int
	IsOnSale  bool `gorm:"column:is_on_sale"`
	CreatedAt time.Time
}

func (lqParent) TableName() string { return "lq_parents" }

type lqChild struct {
	ID       int64 `gorm:"primaryKey"`
	ParentID int64 `gorm:"column:parent_id"`
	IsActive bool
}

func (lqChild) TableName() string { return "lq_children" }

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&lqParent{}, &lqChild{}))
	return conn
}

func seedRelations(t *testing.T, conn *gorm.DB) {
	t.Helper()
	now := time.Now().UTC()
	parents := []lqParent{
		{ID: 1, Name: "With Active Child", IsActive: true, Price: 1000, Stock: 4, IsOnSale: true, CreatedAt: now},
		{ID: 2, Name: "With Inactive Child", IsActive: true, Price: 2000, Stock: 0, CreatedAt: now.Add(time.Second)},
		{ID: 3, Name: "Childless", IsActive: false, Price: 3000, Stock: 7, CreatedAt: now.Add(2 * time.Second)},
	}
	require.NoError(t, conn.Create(&parents).Error)
	children := []lqChild{
		{ID: 10, ParentID: 1, IsActive: true},
		{ID: 11, ParentID: 2, IsActive: false},
	}
	require.NoError(t, conn.Create(&children).Error)
}

func runDescriptor(t *testing.T, conn *gorm.DB, desc Descriptor) ([]lqParent, int64) {
	t.Helper()
	base := conn.Model(&lqParent{})
	base = option.Apply(base, desc.Where...)

	var total int64
	require.NoError(t, base.Session(&gorm.Session{}).Count(&total).Error)

	var items []lqParent
	require.NoError(t, option.Apply(base.Session(&gorm.Session{}), desc.Order, desc.Paging).Find(&items).Error)
	return items, total
}

func TestParseMode(t *testing.T) {
	mode, ok := ParseMode("")
	assert.True(t, ok)
	assert.Equal(t, ModeAll, mode)

	mode, ok = ParseMode("with")
	assert.True(t, ok)
	assert.Equal(t, ModeWith, mode)

	mode, ok = ParseMode("without")
	assert.True(t, ok)
	assert.Equal(t, ModeWithout, mode)

	_, ok = ParseMode("sideways")
	assert.False(t, ok)
}

func TestBuildRejectsInvertedRanges(t *testing.T) {
	minPrice, maxPrice := int64(500), int64(100)
	_, err := Build(Options{MinPrice: &minPrice, MaxPrice: &maxPrice, PriceColumn: "price"})
	assert.ErrorIs(t, err, ErrPriceRange)

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-24 * time.Hour)
	_, err = Build(Options{StartDate: &start, EndDate: &end, DateColumn: "created_at"})
	assert.ErrorIs(t, err, ErrDateRange)

	// Equal bounds are a valid single-point range.
	_, err = Build(Options{MinPrice: &maxPrice, MaxPrice: &maxPrice, PriceColumn: "price"})
	assert.NoError(t, err)
}

func TestBuildRelationModes(t *testing.T) {
	conn := openTestDB(t)
	seedRelations(t, conn)

	relation := Relation{
		Table:       "lq_children",
		ForeignKey:  "parent_id",
		ParentTable: "lq_parents",
	}
	nestedActive := true

	tests := []struct {
		name    string
		mode    Mode
		wantIDs []int64
	}{
		{name: "with active child", mode: ModeWith, wantIDs: []int64{1}},
		{name: "without active child", mode: ModeWithout, wantIDs: []int64{2, 3}},
		{name: "all", mode: ModeAll, wantIDs: []int64{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := Build(Options{
				Mode:         tt.mode,
				Relation:     relation,
				NestedActive: &nestedActive,
				SortBy:       "created_at",
				OrderBy:      "asc",
				SortColumns:  map[string]bool{"created_at": true},
			})
			require.NoError(t, err)

			items, total := runDescriptor(t, conn, desc)
			assert.Equal(t, int64(len(tt.wantIDs)), total)
			ids := make([]int64, 0, len(items))
			for _, item := range items {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestBuildFilters(t *testing.T) {
	conn := openTestDB(t)
	seedRelations(t, conn)

	t.Run("search is case-insensitive", func(t *testing.T) {
		desc, err := Build(Options{Search: "childless", SearchColumn: "name"})
		require.NoError(t, err)
		items, total := runDescriptor(t, conn, desc)
		require.Equal(t, int64(1), total)
		assert.Equal(t, int64(3), items[0].ID)
	})

	t.Run("is_active filter", func(t *testing.T) {
		active := false
		desc, err := Build(Options{IsActive: &active})
		require.NoError(t, err)
		_, total := runDescriptor(t, conn, desc)
		assert.Equal(t, int64(1), total)
	})

	t.Run("price bounds", func(t *testing.T) {
		minPrice, maxPrice := int64(1500), int64(2500)
		desc, err := Build(Options{MinPrice: &minPrice, MaxPrice: &maxPrice, PriceColumn: "price"})
		require.NoError(t, err)
		items, total := runDescriptor(t, conn, desc)
		require.Equal(t, int64(1), total)
		assert.Equal(t, int64(2), items[0].ID)
	})

	t.Run("in_stock", func(t *testing.T) {
		inStock := true
		desc, err := Build(Options{InStock: &inStock})
		require.NoError(t, err)
		_, total := runDescriptor(t, conn, desc)
		assert.Equal(t, int64(2), total)

		inStock = false
		desc, err = Build(Options{InStock: &inStock})
		require.NoError(t, err)
		items, total := runDescriptor(t, conn, desc)
		require.Equal(t, int64(1), total)
		assert.Equal(t, int64(2), items[0].ID)
	})

	t.Run("is_on_sale", func(t *testing.T) {
		onSale := true
		desc, err := Build(Options{IsOnSale: &onSale})
		require.NoError(t, err)
		items, total := runDescriptor(t, conn, desc)
		require.Equal(t, int64(1), total)
		assert.Equal(t, int64(1), items[0].ID)
	})

	t.Run("extra where", func(t *testing.T) {
		desc, err := Build(Options{ExtraWhere: map[string]any{"name": "Childless"}})
		require.NoError(t, err)
		_, total := runDescriptor(t, conn, desc)
		assert.Equal(t, int64(1), total)
	})
}

func TestBuildPagingSharesWhereWithCount(t *testing.T) {
	conn := openTestDB(t)
	seedRelations(t, conn)

	desc, err := Build(Options{
		Page:         2,
		Limit:        2,
		DefaultLimit: 5,
		SortBy:       "created_at",
		OrderBy:      "asc",
		SortColumns:  map[string]bool{"created_at": true},
	})
	require.NoError(t, err)

	items, total := runDescriptor(t, conn, desc)
	// Count ignores paging; the page query honors it.
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), items[0].ID)
	assert.Equal(t, 2, desc.Page.Page)
	assert.Equal(t, 2, desc.Page.Skip)
}
