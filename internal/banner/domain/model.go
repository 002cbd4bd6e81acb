package domain

import "time"

type Banner struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	Title     string     `json:"title" gorm:"type:text;not null"`
	ImageURL  string     `json:"image_url" gorm:"column:image_url;type:text;not null;default:''"`
	PublicID  string     `json:"-" gorm:"column:public_id;type:text;not null;default:''"`
	TargetURL *string    `json:"target_url,omitempty" gorm:"column:target_url;type:text"`
	Position  int        `json:"position" gorm:"not null;default:0"`
	IsActive  bool       `json:"is_active" gorm:"column:is_active;not null;default:true"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Banner) TableName() string { return "banners" }
