package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	categorydomain "github.com/smallbiznis/lokapasar/internal/category/domain"
	productdomain "github.com/smallbiznis/lokapasar/internal/product/domain"
	variantdomain "github.com/smallbiznis/lokapasar/internal/variant/domain"
)

const defaultCategoryName = "General"

// EnsureDefaultCategory seeds the fallback category products land in when no
// explicit category exists yet.
func EnsureDefaultCategory(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := ensureCategoryTx(ctx, tx, node, defaultCategoryName)
		return err
	})
}

// EnsureDemoCatalog seeds a small browsable catalog for local development.
// Every demo product starts with at least one active variant so the listing
// endpoints return data out of the box.
func EnsureDemoCatalog(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		coffee, err := ensureCategoryTx(ctx, tx, node, "Coffee")
		if err != nil {
			return err
		}
		apparel, err := ensureCategoryTx(ctx, tx, node, "Apparel")
		if err != nil {
			return err
		}

		size := func(v string) *string { return &v }
		amount := func(v int64) *int64 { return &v }
		unit := func(v string) *string { return &v }

		if err := ensureProductTx(ctx, tx, node, demoProduct{
			Category: coffee,
			Title:    "House Blend Beans",
			Type:     productdomain.TypeAmount,
			Variants: []demoVariant{
				{Attribute: "250 g", Amount: amount(250), Unit: unit("g"), Price: 899, Stock: 40, WeightGrams: 250},
				{Attribute: "1000 g", Amount: amount(1000), Unit: unit("g"), Price: 2999, Stock: 15, WeightGrams: 1000},
			},
		}); err != nil {
			return err
		}

		return ensureProductTx(ctx, tx, node, demoProduct{
			Category: apparel,
			Title:    "Logo T-Shirt",
			Type:     productdomain.TypeSize,
			Variants: []demoVariant{
				{Attribute: "m", Size: size("m"), Price: 1899, Stock: 25, WeightGrams: 200},
				{Attribute: "l", Size: size("l"), Price: 1899, Stock: 25, WeightGrams: 220},
			},
		})
	})
}

type demoVariant struct {
	Attribute   string
	Size        *string
	Amount      *int64
	Unit        *string
	Price       int64
	Stock       int
	WeightGrams int
}

type demoProduct struct {
	Category *categorydomain.Category
	Title    string
	Type     string
	Variants []demoVariant
}

func ensureCategoryTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, name string) (*categorydomain.Category, error) {
	var category categorydomain.Category
	err := tx.WithContext(ctx).Where("name = ?", name).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	category = categorydomain.Category{
		ID:        node.Generate().Int64(),
		Name:      name,
		Slug:      slug.Make(name),
		IsActive:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func ensureProductTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, demo demoProduct) error {
	productSlug := slug.Make(demo.Title)

	var existing productdomain.Product
	err := tx.WithContext(ctx).Where("slug = ?", productSlug).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	product := productdomain.Product{
		ID:         node.Generate().Int64(),
		CategoryID: demo.Category.ID,
		Title:      demo.Title,
		Slug:       productSlug,
		Type:       demo.Type,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.WithContext(ctx).Create(&product).Error; err != nil {
		return err
	}

	for _, dv := range demo.Variants {
		variant := variantdomain.Variant{
			ID:          node.Generate().Int64(),
			ProductID:   product.ID,
			SKU:         productSlug + "-" + slug.Make(dv.Attribute),
			Name:        demo.Title + " " + dv.Attribute,
			Attribute:   dv.Attribute,
			Size:        dv.Size,
			Amount:      dv.Amount,
			Unit:        dv.Unit,
			Price:       dv.Price,
			Stock:       dv.Stock,
			WeightGrams: dv.WeightGrams,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.WithContext(ctx).Create(&variant).Error; err != nil {
			return err
		}
	}

	// Seeded products ship with active variants, so the category is live too.
	return tx.WithContext(ctx).
		Model(&categorydomain.Category{}).
		Where("id = ?", demo.Category.ID).
		Updates(map[string]any{"is_active": true, "updated_at": now}).Error
}
