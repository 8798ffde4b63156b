package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the authoritative attendee record. Identity key is the email
// forwarded by the gateway; the row is created lazily on first authenticated
// contact.
type User struct {
	ID             string  `gorm:"primaryKey;type:uuid" json:"id"`
	Email          string  `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName    string  `json:"display_name"`
	SecondaryEmail *string `gorm:"uniqueIndex" json:"secondary_email,omitempty"` // settable exactly once
	ChatHandle     string  `json:"chat_handle,omitempty"`

	// Points is the authoritative balance for redemption eligibility.
	// Mutated only via claim, redeem and the audited admin paths; never
	// allowed below zero.
	Points int `gorm:"not null;default:0" json:"points"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserClaim is one entry of a user's claimed-item set. The composite unique
// index enforces claim-once per (user, hunt item) — the database rejects the
// second insert even when two identical requests race.
type UserClaim struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     string    `gorm:"not null;uniqueIndex:idx_user_hunt_item" json:"user_id"`
	HuntItemID string    `gorm:"not null;uniqueIndex:idx_user_hunt_item" json:"hunt_item_id"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}
