package models

import (
	"time"

	"gorm.io/gorm"
)

// Notice is an admin-managed announcement shown on the public site.
type Notice struct {
	ID        string         `gorm:"primaryKey;type:uuid" json:"id"`
	Title     string         `gorm:"not null" json:"title"`
	Body      string         `gorm:"type:text" json:"body"`
	Active    bool           `gorm:"default:true" json:"active"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
