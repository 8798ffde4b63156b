package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"hunt-points-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RedemptionService struct {
	DB    *gorm.DB
	Audit *AuditService
}

func NewRedemptionService(db *gorm.DB, audit *AuditService) *RedemptionService {
	return &RedemptionService{DB: db, Audit: audit}
}

// RedemptionResult is returned by both redemption paths.
type RedemptionResult struct {
	InstanceID string `json:"instance_id"`
	ItemID     string `json:"item_id"`
	ItemName   string `json:"item_name"`
	Cost       int    `json:"cost"`
	NewBalance int    `json:"new_balance"`
}

// chargedCost is the amount the user is actually charged: the discounted
// cost when one is set, the base cost otherwise. The balance check uses the
// same amount.
func chargedCost(cost int, discounted *int) int {
	if discounted != nil && *discounted >= 0 {
		return *discounted
	}
	return cost
}

var (
	errInsufficientPoints = errors.New("insufficient points")
	errSoldOut            = errors.New("sold out")
)

// deductPoints performs the conditional balance deduction inside tx:
// "subtract cost only if points >= cost" as a single statement. Zero rows
// affected means the balance was too low (or raced to too low).
func deductPoints(tx *gorm.DB, userID string, cost int) error {
	res := tx.Model(&models.User{}).
		Where("id = ? AND points >= ?", userID, cost).
		UpdateColumn("points", gorm.Expr("points - ?", cost))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errInsufficientPoints
	}
	return nil
}

// RedeemCollectible performs a self-service collectible purchase. Validation
// order is fixed; the first failing check wins. No audit entry is written on
// this path (only operator-driven shop redemptions are audited).
func (s *RedemptionService) RedeemCollectible(userEmail, collectibleID string) (*RedemptionResult, error) {
	var col models.Collectible
	if err := s.DB.Where("id = ?", collectibleID).First(&col).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("collectible not found")
		}
		return nil, Internal("failed to load collectible")
	}
	if !col.Purchasable {
		return nil, Validation("collectible is not purchasable")
	}
	if !col.Active {
		return nil, Validation("collectible is not active")
	}
	if col.ActivationStart != nil && col.ActivationEnd != nil {
		now := time.Now()
		if now.Before(*col.ActivationStart) || now.After(*col.ActivationEnd) {
			return nil, Validation("collectible is not available right now")
		}
	}
	if col.Limited && col.Remaining <= 0 {
		return nil, Validation("collectible is sold out")
	}

	var user models.User
	if err := s.DB.Where("email = ?", strings.ToLower(userEmail)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("user not found")
		}
		return nil, Internal("failed to load user")
	}

	cost := chargedCost(col.Cost, col.DiscountedCost)
	instanceID := uuid.NewString()

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := deductPoints(tx, user.ID, cost); err != nil {
			return err
		}
		instance := models.CollectibleInstance{
			ID:            instanceID,
			UserID:        user.ID,
			CollectibleID: col.ID,
			Used:          false,
			AddedAt:       time.Now(),
		}
		if err := tx.Create(&instance).Error; err != nil {
			return err
		}
		return decrementStock(tx, &models.Collectible{}, col.ID, col.Limited)
	})
	if txErr != nil {
		switch {
		case errors.Is(txErr, errInsufficientPoints):
			return nil, Validation("insufficient points")
		case errors.Is(txErr, errSoldOut):
			return nil, Validation("collectible is sold out")
		default:
			log.Printf("❌ collectible redemption failed for %s / %s: %v", user.Email, col.ID, txErr)
			return nil, Internal("failed to redeem collectible")
		}
	}

	newBalance, err := s.balance(user.ID)
	if err != nil {
		return nil, err
	}
	log.Printf("🛍️ %s redeemed collectible %q (-%d pts, balance %d)", user.Email, col.Name, cost, newBalance)
	return &RedemptionResult{
		InstanceID: instanceID,
		ItemID:     col.ID,
		ItemName:   col.Name,
		Cost:       cost,
		NewBalance: newBalance,
	}, nil
}

// RedeemShopItem is the operator-driven (volunteer/admin) redemption of a
// physical prize on behalf of a target user. Unlike the collectible path it
// performs no activation-window check, and it always writes an audit entry
// with before/after points.
func (s *RedemptionService) RedeemShopItem(operator Actor, shopItemID, targetUserID string) (*RedemptionResult, error) {
	var item models.ShopItem
	if err := s.DB.Where("id = ?", shopItemID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("shop item not found")
		}
		return nil, Internal("failed to load shop item")
	}
	if !item.Active {
		return nil, Validation("shop item is not active")
	}
	if item.Limited && item.Remaining <= 0 {
		return nil, Validation("shop item is sold out")
	}

	var user models.User
	if err := s.DB.Where("id = ?", targetUserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("target user not found")
		}
		return nil, Internal("failed to load target user")
	}

	cost := chargedCost(item.Cost, item.DiscountedCost)
	pointsBefore := user.Points
	instanceID := uuid.NewString()

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := deductPoints(tx, user.ID, cost); err != nil {
			return err
		}
		instance := models.ShopPrizeInstance{
			ID:         instanceID,
			UserID:     user.ID,
			ShopItemID: item.ID,
			RedeemedBy: operator.Email,
		}
		if err := tx.Create(&instance).Error; err != nil {
			return err
		}
		return decrementStock(tx, &models.ShopItem{}, item.ID, item.Limited)
	})
	if txErr != nil {
		switch {
		case errors.Is(txErr, errInsufficientPoints):
			return nil, Validation("insufficient points")
		case errors.Is(txErr, errSoldOut):
			return nil, Validation("shop item is sold out")
		default:
			log.Printf("❌ shop redemption failed for %s / %s: %v", user.Email, item.ID, txErr)
			return nil, Internal("failed to redeem shop item")
		}
	}

	newBalance, err := s.balance(user.ID)
	if err != nil {
		return nil, err
	}

	s.Audit.LogAdminAction(AuditEntry{
		Actor:           operator,
		TargetUserEmail: &user.Email,
		Action:          models.AuditActionRedeemShopItem,
		ResourceType:    models.AuditResourceShopItem,
		ResourceID:      &item.ID,
		Details: map[string]interface{}{
			"instance_id": instanceID,
			"item_name":   item.Name,
			"cost":        cost,
		},
		PreviousData: map[string]interface{}{"points": pointsBefore},
		NewData:      map[string]interface{}{"points": newBalance},
	})

	log.Printf("🎁 %s redeemed shop item %q for %s (-%d pts)", operator.Email, item.Name, user.Email, cost)
	return &RedemptionResult{
		InstanceID: instanceID,
		ItemID:     item.ID,
		ItemName:   item.Name,
		Cost:       cost,
		NewBalance: newBalance,
	}, nil
}

// RemoveShopPrizeInstance removes exactly one redeemed unit from a user and
// restores the item's counters. Points are deliberately not refunded.
func (s *RedemptionService) RemoveShopPrizeInstance(admin Actor, userID, instanceID string) error {
	var instance models.ShopPrizeInstance
	if err := s.DB.Where("id = ? AND user_id = ?", instanceID, userID).First(&instance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("prize instance not found")
		}
		return Internal("failed to load prize instance")
	}

	var user models.User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return Internal("failed to load user")
	}

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&instance).Error; err != nil {
			return err
		}
		var item models.ShopItem
		if err := tx.Where("id = ?", instance.ShopItemID).First(&item).Error; err != nil {
			// Item may have been deleted since redemption; the instance
			// removal still stands.
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if item.Limited {
			item.Remaining++
		}
		if item.ClaimCount > 0 {
			item.ClaimCount--
		}
		return tx.Save(&item).Error
	})
	if txErr != nil {
		log.Printf("❌ prize instance removal failed (%s): %v", instanceID, txErr)
		return Internal("failed to remove prize instance")
	}

	s.Audit.LogAdminAction(AuditEntry{
		Actor:           admin,
		TargetUserEmail: &user.Email,
		Action:          models.AuditActionRemovePrize,
		ResourceType:    models.AuditResourceShopItem,
		ResourceID:      &instance.ShopItemID,
		Details: map[string]interface{}{
			"instance_id":     instanceID,
			"points_refunded": false,
		},
	})
	return nil
}

// UseCollectibleInstance marks one of a user's collectible units as used at
// the booth. Operator-driven and audited.
func (s *RedemptionService) UseCollectibleInstance(operator Actor, userID, instanceID string) error {
	var instance models.CollectibleInstance
	if err := s.DB.Where("id = ? AND user_id = ?", instanceID, userID).First(&instance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("collectible instance not found")
		}
		return Internal("failed to load collectible instance")
	}
	if instance.Used {
		return Validation("collectible has already been used")
	}

	var user models.User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return Internal("failed to load user")
	}

	now := time.Now()
	instance.Used = true
	instance.UsedAt = &now
	if err := s.DB.Save(&instance).Error; err != nil {
		return Internal("failed to mark collectible as used")
	}

	s.Audit.LogAdminAction(AuditEntry{
		Actor:           operator,
		TargetUserEmail: &user.Email,
		Action:          models.AuditActionUseCollectible,
		ResourceType:    models.AuditResourceCollectible,
		ResourceID:      &instance.CollectibleID,
		Details:         map[string]interface{}{"instance_id": instanceID},
	})
	return nil
}

// decrementStock bumps claim_count and, for limited items, decrements
// remaining guarded by remaining > 0 so stock can never go negative. A
// raced-out decrement surfaces as errSoldOut and rolls the transaction back.
func decrementStock(tx *gorm.DB, model interface{}, id string, limited bool) error {
	query := tx.Model(model).Where("id = ?", id)
	if limited {
		res := query.Where("remaining > 0").UpdateColumns(map[string]interface{}{
			"remaining":   gorm.Expr("remaining - 1"),
			"claim_count": gorm.Expr("claim_count + 1"),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errSoldOut
		}
		return nil
	}
	return query.UpdateColumn("claim_count", gorm.Expr("claim_count + 1")).Error
}

func (s *RedemptionService) balance(userID string) (int, error) {
	var points int
	if err := s.DB.Model(&models.User{}).Where("id = ?", userID).Pluck("points", &points).Error; err != nil {
		return 0, Internal("failed to read balance")
	}
	return points, nil
}
