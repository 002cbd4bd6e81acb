package option

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

// QueryOption is a composable piece of a query. Options combine with logical
// AND when applied to the same statement.
type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type queryOptionFn func(*gorm.DB) *gorm.DB

func (f queryOptionFn) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// Apply runs every option against the statement in order.
func Apply(db *gorm.DB, opts ...QueryOption) *gorm.DB {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		db = opt.Apply(db)
	}
	return db
}

// Noop leaves the statement unchanged.
func Noop() QueryOption {
	return queryOptionFn(func(db *gorm.DB) *gorm.DB { return db })
}

// Where adds a raw condition.
func Where(query any, args ...any) QueryOption {
	return queryOptionFn(func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	})
}

// Search adds a case-insensitive substring match on column.
func Search(column, term string) QueryOption {
	term = strings.TrimSpace(term)
	if term == "" {
		return Noop()
	}
	pattern := "%" + strings.ToLower(term) + "%"
	return queryOptionFn(func(db *gorm.DB) *gorm.DB {
		return db.Where(fmt.Sprintf("LOWER(%s) LIKE ?", column), pattern)
	})
}

// BoolEq filters column by value when value is set. A nil value means
// "no filter", not false.
func BoolEq(column string, value *bool) QueryOption {
	if value == nil {
		return Noop()
	}
	return queryOptionFn(func(db *gorm.DB) *gorm.DB {
		return db.Where(fmt.Sprintf("%s = ?", column), *value)
	})
}

// Eq filters column by an exact value.
func Eq(column string, value any) QueryOption {
	return queryOptionFn(func(db *gorm.DB) *gorm.DB {
		return db.Where(fmt.Sprintf("%s = ?", column), value)
	})
}

// Int64Between bounds column by the provided optional limits.
func Int64Between(column string, min, max *int64) QueryOption {
	return queryOptionFn(func(db *gorm.DB) *gorm.DB {
		if min != nil {
			db = db.Where(fmt.Sprintf("%s >= ?", column), *min)
		}
		if max != nil {
			db = db.Where(fmt.Sprintf("%s <= ?", column), *max)
		}
		return db
	})
}

// TimeBetween bounds column by the provided optional instants.
func TimeBetween(column string, start, end *time.Time) QueryOption {
	return queryOptionFn(func(db *gorm.DB) *gorm.DB {
		if start != nil {
			db = db.Where(fmt.Sprintf("%s >= ?", column), *start)
		}
		if end != nil {
			db = db.Where(fmt.Sprintf("%s <= ?", column), *end)
		}
		return db
	})
}

// ExtraWhere adds exact-match conditions from a caller-supplied map. Keys are
// sorted so the generated SQL is deterministic.
func ExtraWhere(conditions map[string]any) QueryOption {
	if len(conditions) == 0 {
		return Noop()
	}
	columns := make([]string, 0, len(conditions))
	for column := range conditions {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return queryOptionFn(func(db *gorm.DB) *gorm.DB {
		for _, column := range columns {
			db = db.Where(fmt.Sprintf("%s = ?", column), conditions[column])
		}
		return db
	})
}

// Exists requires at least one row of the related table matching the nested
// conditions. Negated, it requires zero matching rows.
func Exists(negate bool, relatedTable, foreignKey, parentTable string, nested map[string]any) QueryOption {
	var sb strings.Builder
	args := make([]any, 0, len(nested))

	sb.WriteString("SELECT 1 FROM ")
	sb.WriteString(relatedTable)
	sb.WriteString(" WHERE ")
	sb.WriteString(relatedTable)
	sb.WriteString(".")
	sb.WriteString(foreignKey)
	sb.WriteString(" = ")
	sb.WriteString(parentTable)
	sb.WriteString(".id")

	columns := make([]string, 0, len(nested))
	for column := range nested {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	for _, column := range columns {
		sb.WriteString(" AND ")
		sb.WriteString(relatedTable)
		sb.WriteString(".")
		sb.WriteString(column)
		sb.WriteString(" = ?")
		args = append(args, nested[column])
	}

	keyword := "EXISTS"
	if negate {
		keyword = "NOT EXISTS"
	}
	condition := fmt.Sprintf("%s (%s)", keyword, sb.String())

	return queryOptionFn(func(db *gorm.DB) *gorm.DB {
		return db.Where(condition, args...)
	})
}

// WithSortBy orders by sortBy/orderBy when sortBy is in the allow-list,
// falling back to created_at DESC.
func WithSortBy(sortBy, orderBy string, allowed map[string]bool) QueryOption {
	sortBy = strings.TrimSpace(sortBy)
	if sortBy == "" || !allowed[sortBy] {
		sortBy = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(strings.TrimSpace(orderBy), "asc") {
		direction = "ASC"
	}
	order := fmt.Sprintf("%s %s", sortBy, direction)
	return queryOptionFn(func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	})
}

// Paginate applies offset pagination.
func Paginate(skip, take int) QueryOption {
	return queryOptionFn(func(db *gorm.DB) *gorm.DB {
		if skip > 0 {
			db = db.Offset(skip)
		}
		if take > 0 {
			db = db.Limit(take)
		}
		return db
	})
}
