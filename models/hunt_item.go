package models

import (
	"time"

	"gorm.io/gorm"
)

// HuntItem is a discoverable QR/code target worth a fixed point value.
// Identifier is the scanned/typed code — unique and immutable after creation.
type HuntItem struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Identifier  string `gorm:"uniqueIndex;not null" json:"identifier"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Points      int    `gorm:"not null;default:0" json:"points"`

	// ClaimCount is a denormalized counter bumped only by admin grants —
	// self-service claims leave it alone (observed behavior, kept as-is).
	ClaimCount int `gorm:"not null;default:0" json:"claim_count"`

	// Gating fields. Present on the model but not checked by the
	// self-service claim path; collectible/shop redemption does check its
	// own equivalents.
	MaxClaims       *int       `json:"max_claims,omitempty"`
	Active          bool       `gorm:"default:true" json:"active"`
	ActivationStart *time.Time `json:"activation_start,omitempty"`
	ActivationEnd   *time.Time `json:"activation_end,omitempty"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
