package domain

import "time"

type Variant struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	ProductID int64  `json:"product_id" gorm:"column:product_id;not null;uniqueIndex:ux_variants_product_attribute,priority:1"`
	SKU       string `json:"sku" gorm:"column:sku;type:text;not null;uniqueIndex:ux_variants_sku"`
	Name      string `json:"name" gorm:"type:text;not null"`

	// Attribute is the normalized distinguishing value: the size for
	// size-based products, "<amount> <unit>" for amount-based ones. The
	// composite index backs the one-variant-per-attribute rule.
	Attribute string  `json:"attribute" gorm:"type:text;not null;uniqueIndex:ux_variants_product_attribute,priority:2"`
	Size      *string `json:"size,omitempty" gorm:"type:text"`
	Amount    *int64  `json:"amount,omitempty"`
	Unit      *string `json:"unit,omitempty" gorm:"type:text"`

	Price              int64  `json:"price" gorm:"not null"`
	DiscountPrice      *int64 `json:"discount_price,omitempty"`
	DiscountPercentage *int   `json:"discount_percentage,omitempty"`
	IsOnSale           bool   `json:"is_on_sale" gorm:"column:is_on_sale;not null;default:false"`

	Stock    int  `json:"stock" gorm:"not null;default:0"`
	IsActive bool `json:"is_active" gorm:"column:is_active;not null;default:true"`

	// WeightGrams feeds shipping quotes at checkout. Zero means unknown.
	WeightGrams int `json:"weight_grams" gorm:"column:weight_grams;not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Variant) TableName() string { return "product_variants" }
