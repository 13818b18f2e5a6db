package models

import "time"

// BaseModel is gorm.Model without soft deletes: deleted rows are gone, so
// unique keys can be reused and cascades are real.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
