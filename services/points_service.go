package services

import (
	"errors"
	"log"

	"hunt-points-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PointsService holds the privileged ledger mutations: admin grants, admin
// deductions, mass adjustments and the direct overwrite. Every path keeps
// points >= 0 and writes an audit entry.
type PointsService struct {
	DB    *gorm.DB
	Audit *AuditService
}

func NewPointsService(db *gorm.DB, audit *AuditService) *PointsService {
	return &PointsService{DB: db, Audit: audit}
}

func (s *PointsService) loadUser(userID string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("user not found")
		}
		return nil, Internal("failed to load user")
	}
	return &user, nil
}

// GrantHuntItem attaches a hunt item to a user's claim set without touching
// points. Unlike self-service claims it bumps the item's claim counter. No
// claim attempt is recorded: attempts log claim calls, and a synthetic one
// here would make back-to-back grants look like suspicious scanning.
func (s *PointsService) GrantHuntItem(admin Actor, userID, huntItemID string) error {
	user, err := s.loadUser(userID)
	if err != nil {
		return err
	}

	var item models.HuntItem
	if err := s.DB.Where("id = ?", huntItemID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("hunt item not found")
		}
		return Internal("failed to load hunt item")
	}

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		claim := models.UserClaim{
			ID:         uuid.NewString(),
			UserID:     user.ID,
			HuntItemID: item.ID,
		}
		if err := tx.Create(&claim).Error; err != nil {
			return err
		}
		return tx.Model(&models.HuntItem{}).
			Where("id = ?", item.ID).
			UpdateColumn("claim_count", gorm.Expr("claim_count + 1")).Error
	})
	if txErr != nil {
		if isDuplicateKey(txErr) {
			return Validation("item already claimed by this user")
		}
		log.Printf("❌ hunt item grant failed (%s → %s): %v", item.ID, user.Email, txErr)
		return Internal("failed to grant hunt item")
	}

	s.Audit.LogAdminAction(AuditEntry{
		Actor:           admin,
		TargetUserEmail: &user.Email,
		Action:          models.AuditActionGrantHuntItem,
		ResourceType:    models.AuditResourceHuntItem,
		ResourceID:      &item.ID,
		Details: map[string]interface{}{
			"item_name":      item.Name,
			"points_updated": false, // grant does not award points
		},
	})
	log.Printf("🎖️ %s granted %q to %s (no points)", admin.Email, item.Name, user.Email)
	return nil
}

// RedeemPoints is the admin deduction path: it can only subtract, and clamps
// the balance at zero instead of erroring. The clamp runs as one conditional
// statement so a claim committing concurrently is never overwritten by a
// stale read.
func (s *PointsService) RedeemPoints(admin Actor, userID string, amount int) (int, error) {
	if amount <= 0 {
		return 0, Validation("amount must be a positive number of points")
	}
	user, err := s.loadUser(userID)
	if err != nil {
		return 0, err
	}

	before := user.Points
	if err := s.DB.Model(&models.User{}).
		Where("id = ?", user.ID).
		UpdateColumn("points", gorm.Expr(
			"CASE WHEN points - ? < 0 THEN 0 ELSE points - ? END", amount, amount,
		)).Error; err != nil {
		return 0, Internal("failed to redeem points")
	}

	var after int
	if err := s.DB.Model(&models.User{}).
		Where("id = ?", user.ID).
		Pluck("points", &after).Error; err != nil {
		return 0, Internal("failed to read new balance")
	}

	s.Audit.LogAdminAction(AuditEntry{
		Actor:           admin,
		TargetUserEmail: &user.Email,
		Action:          models.AuditActionRedeemPoints,
		ResourceType:    models.AuditResourceUser,
		ResourceID:      &user.ID,
		Details:         map[string]interface{}{"amount": amount},
		PreviousData:    map[string]interface{}{"points": before},
		NewData:         map[string]interface{}{"points": after},
	})
	return after, nil
}

// SetPoints is the privileged direct overwrite of a user's balance.
func (s *PointsService) SetPoints(admin Actor, userID string, points int) error {
	if points < 0 {
		return Validation("points cannot be negative")
	}
	user, err := s.loadUser(userID)
	if err != nil {
		return err
	}

	before := user.Points
	if err := s.DB.Model(&models.User{}).
		Where("id = ?", user.ID).
		UpdateColumn("points", points).Error; err != nil {
		return Internal("failed to set points")
	}

	s.Audit.LogAdminAction(AuditEntry{
		Actor:           admin,
		TargetUserEmail: &user.Email,
		Action:          models.AuditActionSetPoints,
		ResourceType:    models.AuditResourceUser,
		ResourceID:      &user.ID,
		PreviousData:    map[string]interface{}{"points": before},
		NewData:         map[string]interface{}{"points": points},
	})
	return nil
}

// MassAdjustResult summarizes one mass adjustment run.
type MassAdjustResult struct {
	UsersAffected int `json:"users_affected"`
	Delta         int `json:"delta"`
}

// MassAdjustPoints applies a signed delta to every claimant of a hunt item,
// clamping each balance at floor zero. One audit entry per affected user.
func (s *PointsService) MassAdjustPoints(admin Actor, huntItemID string, delta int) (*MassAdjustResult, error) {
	if delta == 0 {
		return nil, Validation("delta must be non-zero")
	}

	var item models.HuntItem
	if err := s.DB.Where("id = ?", huntItemID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("hunt item not found")
		}
		return nil, Internal("failed to load hunt item")
	}

	var claims []models.UserClaim
	if err := s.DB.Where("hunt_item_id = ?", item.ID).Find(&claims).Error; err != nil {
		return nil, Internal("failed to load claimants")
	}

	affected := 0
	for _, claim := range claims {
		var user models.User
		if err := s.DB.Where("id = ?", claim.UserID).First(&user).Error; err != nil {
			log.Printf("⚠️ mass adjust: skipping missing user %s: %v", claim.UserID, err)
			continue
		}
		before := user.Points
		if err := s.DB.Model(&models.User{}).
			Where("id = ?", user.ID).
			UpdateColumn("points", gorm.Expr(
				"CASE WHEN points + ? < 0 THEN 0 ELSE points + ? END", delta, delta,
			)).Error; err != nil {
			log.Printf("⚠️ mass adjust: update failed for %s: %v", user.Email, err)
			continue
		}
		var after int
		if err := s.DB.Model(&models.User{}).
			Where("id = ?", user.ID).
			Pluck("points", &after).Error; err != nil {
			log.Printf("⚠️ mass adjust: balance read failed for %s: %v", user.Email, err)
			continue
		}
		affected++

		s.Audit.LogAdminAction(AuditEntry{
			Actor:           admin,
			TargetUserEmail: &user.Email,
			Action:          models.AuditActionMassAdjustPoints,
			ResourceType:    models.AuditResourceUser,
			ResourceID:      &user.ID,
			Details: map[string]interface{}{
				"hunt_item_id": item.ID,
				"delta":        delta,
			},
			PreviousData: map[string]interface{}{"points": before},
			NewData:      map[string]interface{}{"points": after},
		})
	}

	log.Printf("⚖️ %s mass-adjusted %d claimant(s) of %q by %+d", admin.Email, affected, item.Name, delta)
	return &MassAdjustResult{UsersAffected: affected, Delta: delta}, nil
}

// ClearClaimAttempts wipes a user's attempt log. This is the one sanctioned
// way attempts ever leave the table.
func (s *PointsService) ClearClaimAttempts(admin Actor, userID string) (int64, error) {
	user, err := s.loadUser(userID)
	if err != nil {
		return 0, err
	}

	res := s.DB.Where("user_id = ?", user.ID).Delete(&models.ClaimAttempt{})
	if res.Error != nil {
		return 0, Internal("failed to clear claim attempts")
	}

	s.Audit.LogAdminAction(AuditEntry{
		Actor:           admin,
		TargetUserEmail: &user.Email,
		Action:          models.AuditActionClearAttempts,
		ResourceType:    models.AuditResourceUser,
		ResourceID:      &user.ID,
		Details:         map[string]interface{}{"attempts_removed": res.RowsAffected},
	})
	return res.RowsAffected, nil
}
