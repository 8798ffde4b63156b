package models

import "time"

// ClaimAttempt records every claim call, successful or not. Append-only;
// never pruned by normal flow (admins may clear a user's log explicitly).
// HuntItemID is nil when the identifier resolved to nothing.
type ClaimAttempt struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     string    `gorm:"index;not null" json:"user_id"`
	Identifier string    `gorm:"not null" json:"identifier"`
	Success    bool      `gorm:"not null;default:false" json:"success"`
	HuntItemID *string   `json:"hunt_item_id,omitempty"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
