package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Type selects the distinguishing attribute variants of this product carry:
// size-based products key variants by size, amount-based products by
// amount and unit.
const (
	TypeSize   = "size"
	TypeAmount = "amount"
)

type Product struct {
	ID          int64             `json:"id" gorm:"primaryKey"`
	CategoryID  int64             `json:"category_id" gorm:"column:category_id;not null;index"`
	Title       string            `json:"title" gorm:"type:text;not null"`
	Slug        string            `json:"slug" gorm:"type:text;not null;uniqueIndex:ux_products_slug"`
	Description *string           `json:"description,omitempty" gorm:"type:text"`
	Type        string            `json:"type" gorm:"type:text;not null;default:size"`
	IsActive    bool              `json:"is_active" gorm:"column:is_active;not null;default:true"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	Images      []ProductImage    `json:"images,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }

type ProductImage struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	ProductID int64     `json:"product_id" gorm:"column:product_id;not null;index"`
	URL       string    `json:"url" gorm:"type:text;not null"`
	PublicID  string    `json:"-" gorm:"column:public_id;type:text;not null;default:''"`
	Position  int       `json:"position" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ProductImage) TableName() string { return "product_images" }
