package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		limit    int
		def      int
		wantPage int
		wantTake int
		wantSkip int
	}{
		{name: "defaults", page: 0, limit: 0, def: 5, wantPage: 1, wantTake: 5, wantSkip: 0},
		{name: "negative input", page: -3, limit: -1, def: 10, wantPage: 1, wantTake: 10, wantSkip: 0},
		{name: "second page", page: 2, limit: 5, def: 5, wantPage: 2, wantTake: 5, wantSkip: 5},
		{name: "deep page", page: 7, limit: 20, def: 5, wantPage: 7, wantTake: 20, wantSkip: 120},
		{name: "limit capped", page: 1, limit: 500, def: 5, wantPage: 1, wantTake: MaxLimit, wantSkip: 0},
		{name: "zero default falls back", page: 1, limit: 0, def: 0, wantPage: 1, wantTake: DefaultStorefrontLimit, wantSkip: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.page, tt.limit, tt.def)
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantTake, got.Take)
			assert.Equal(t, tt.wantTake, got.Limit)
			assert.Equal(t, tt.wantSkip, got.Skip)
		})
	}
}

func TestCalculateLastPage(t *testing.T) {
	assert.Equal(t, 0, CalculateLastPage(0, 5))
	assert.Equal(t, 1, CalculateLastPage(1, 5))
	assert.Equal(t, 1, CalculateLastPage(5, 5))
	assert.Equal(t, 2, CalculateLastPage(6, 5))
	// 12 rows at 5 per page is 3 pages, not 2.
	assert.Equal(t, 3, CalculateLastPage(12, 5))
	assert.Equal(t, 12, CalculateLastPage(12, 0))
}

func TestNewMeta(t *testing.T) {
	page := Normalize(2, 5, 5)
	meta := NewMeta(page, 12)

	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 5, meta.Limit)
	assert.Equal(t, int64(12), meta.Total)
	assert.Equal(t, 3, meta.LastPage)
}
