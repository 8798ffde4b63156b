package models

import (
	"time"

	"gorm.io/gorm"
)

// ShopItem is a physical-prize catalog entry, redeemed in person by a
// volunteer or admin on behalf of an attendee.
type ShopItem struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"type:text" json:"image_url"`

	Cost           int  `gorm:"not null" json:"cost"`
	DiscountedCost *int `json:"discounted_cost,omitempty"`

	// Remaining is only meaningful while Limited is set; it never drops
	// below zero.
	Limited   bool `gorm:"default:false" json:"limited"`
	Remaining int  `gorm:"not null;default:0" json:"remaining"`

	Active          bool       `gorm:"default:true" json:"active"`
	ActivationStart *time.Time `json:"activation_start,omitempty"`
	ActivationEnd   *time.Time `json:"activation_end,omitempty"`

	ClaimCount int `gorm:"not null;default:0" json:"claim_count"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ShopPrizeInstance is one redeemed unit. The same item can appear N times
// for the same user — instances are never deduplicated.
type ShopPrizeInstance struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     string    `gorm:"index;not null" json:"user_id"`
	ShopItemID string    `gorm:"index;not null" json:"shop_item_id"`
	RedeemedBy string    `gorm:"not null" json:"redeemed_by"` // operator email
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}
