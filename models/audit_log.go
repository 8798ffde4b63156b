package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditAction is the taxonomy of privileged operation names.
type AuditAction string

const (
	AuditActionCreate           AuditAction = "create"
	AuditActionUpdate           AuditAction = "update"
	AuditActionDelete           AuditAction = "delete"
	AuditActionGrantHuntItem    AuditAction = "grant_hunt_item"
	AuditActionRedeemShopItem   AuditAction = "redeem_shop_item"
	AuditActionRemovePrize      AuditAction = "remove_prize_instance"
	AuditActionUseCollectible   AuditAction = "use_collectible"
	AuditActionRedeemPoints     AuditAction = "redeem_points"
	AuditActionSetPoints        AuditAction = "set_points"
	AuditActionMassAdjustPoints AuditAction = "mass_adjust_points"
	AuditActionClearAttempts    AuditAction = "clear_claim_attempts"
)

// AuditResourceType names the entity a privileged mutation touched.
type AuditResourceType string

const (
	AuditResourceUser        AuditResourceType = "user"
	AuditResourceHuntItem    AuditResourceType = "hunt_item"
	AuditResourceShopItem    AuditResourceType = "shop_item"
	AuditResourceCollectible AuditResourceType = "collectible"
	AuditResourceNotice      AuditResourceType = "notice"
)

// AdminAuditLog is the append-only record of every privileged mutation.
// Details/PreviousData/NewData are schema-less JSON blobs keyed by
// action + resource type; they are sanitized before persistence. Rows are
// never updated or deleted by normal flow.
type AdminAuditLog struct {
	ID              string            `gorm:"primaryKey;type:uuid" json:"id"`
	AdminEmail      string            `gorm:"index;not null" json:"admin_email"`
	TargetUserEmail *string           `gorm:"index" json:"target_user_email,omitempty"`
	Action          AuditAction       `gorm:"index;not null" json:"action"`
	ResourceType    AuditResourceType `gorm:"index;not null" json:"resource_type"`
	ResourceID      *string           `json:"resource_id,omitempty"`
	Details         datatypes.JSON    `json:"details,omitempty"`
	PreviousData    datatypes.JSON    `json:"previous_data,omitempty"`
	NewData         datatypes.JSON    `json:"new_data,omitempty"`
	IPAddress       string            `json:"ip_address"`
	UserAgent       string            `json:"user_agent"`
	CreatedAt       time.Time         `json:"created_at" gorm:"autoCreateTime;index"`
}
