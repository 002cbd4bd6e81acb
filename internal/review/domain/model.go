package domain

import "time"

type Review struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	ProductID int64     `json:"product_id" gorm:"column:product_id;not null;uniqueIndex:ux_reviews_product_user,priority:1"`
	UserID    int64     `json:"user_id" gorm:"column:user_id;not null;uniqueIndex:ux_reviews_product_user,priority:2"`
	Rating    int       `json:"rating" gorm:"not null"`
	Title     *string   `json:"title,omitempty" gorm:"type:text"`
	Comment   *string   `json:"comment,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Review) TableName() string { return "reviews" }
