package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a single micro-blog entry. The author is set at creation
// and never changes; posts are not edited or deleted through the app.
type Post struct {
	ID        uint           `gorm:"primaryKey"`
	Body      string         `gorm:"type:text;not null"`
	UserID    uint           `gorm:"not null;index"`
	User      User           `gorm:"foreignKey:UserID"`
	CreatedAt time.Time      `gorm:"index"`
	UpdatedAt time.Time      ``
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
