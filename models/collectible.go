package models

import (
	"time"

	"gorm.io/gorm"
)

// Collectible is a self-service purchasable virtual item, tracked
// per-instance so a unit can later be marked "used" at a physical booth.
type Collectible struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"type:text" json:"image_url"`

	Cost           int  `gorm:"not null" json:"cost"`
	DiscountedCost *int `json:"discounted_cost,omitempty"`

	Purchasable bool `gorm:"default:true" json:"purchasable"`
	Limited     bool `gorm:"default:false" json:"limited"`
	Remaining   int  `gorm:"not null;default:0" json:"remaining"`

	Active          bool       `gorm:"default:true" json:"active"`
	ActivationStart *time.Time `json:"activation_start,omitempty"`
	ActivationEnd   *time.Time `json:"activation_end,omitempty"`

	ClaimCount int `gorm:"not null;default:0" json:"claim_count"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CollectibleInstance is one acquired unit with its own identity, distinct
// from the collectible definition.
type CollectibleInstance struct {
	ID            string     `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string     `gorm:"index;not null" json:"user_id"`
	CollectibleID string     `gorm:"index;not null" json:"collectible_id"`
	Used          bool       `gorm:"not null;default:false" json:"used"`
	UsedAt        *time.Time `json:"used_at,omitempty"`
	AddedAt       time.Time  `gorm:"not null" json:"added_at"`
}
