package services

import (
	"errors"
	"log"
	"strings"

	"hunt-points-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClaimService struct {
	DB *gorm.DB
}

func NewClaimService(db *gorm.DB) *ClaimService {
	return &ClaimService{DB: db}
}

// ClaimResult is what a successful claim returns to the caller.
type ClaimResult struct {
	ItemName    string `json:"item_name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	TotalPoints int    `json:"total_points"`
}

// ClaimHuntItem resolves an identifier and claims the item for the user.
// Every call, success or failure, appends exactly one claim attempt.
// Claim-once is enforced by the unique (user, item) index, so two identical
// requests racing on the same pair produce at most one success.
//
// Self-service claims deliberately do not bump HuntItem.ClaimCount; only
// admin grants do.
func (s *ClaimService) ClaimHuntItem(userEmail, identifier string) (*ClaimResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, Validation("identifier is required")
	}

	var user models.User
	if err := s.DB.Where("email = ?", strings.ToLower(userEmail)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("user not found")
		}
		return nil, Internal("failed to load user")
	}

	var item models.HuntItem
	err := s.DB.Where("identifier = ?", identifier).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.recordAttempt(user.ID, identifier, false, nil)
		return nil, NotFound("no hunt item matches that identifier")
	}
	if err != nil {
		return nil, Internal("failed to look up hunt item")
	}

	// Fast duplicate check for the common repeat-scan case. The unique
	// index below still decides the outcome under concurrent duplicates.
	var existing int64
	if err := s.DB.Model(&models.UserClaim{}).
		Where("user_id = ? AND hunt_item_id = ?", user.ID, item.ID).
		Count(&existing).Error; err != nil {
		return nil, Internal("failed to check claim history")
	}
	if existing > 0 {
		s.recordAttempt(user.ID, identifier, false, &item.ID)
		return nil, Validation("item already claimed")
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
		attempt := models.ClaimAttempt{
			ID:         uuid.NewString(),
			UserID:     user.ID,
			Identifier: identifier,
			Success:    true,
			HuntItemID: &item.ID,
		}
		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", user.ID).
			UpdateColumn("points", gorm.Expr("points + ?", item.Points)).Error
	})
	if txErr != nil {
		if isDuplicateKey(txErr) {
			s.recordAttempt(user.ID, identifier, false, &item.ID)
			return nil, Validation("item already claimed")
		}
		log.Printf("❌ claim transaction failed for %s / %s: %v", user.Email, identifier, txErr)
		return nil, Internal("failed to record claim")
	}

	var total int
	if err := s.DB.Model(&models.User{}).
		Where("id = ?", user.ID).
		Pluck("points", &total).Error; err != nil {
		return nil, Internal("failed to read new balance")
	}

	log.Printf("🎯 %s claimed %q (+%d pts, total %d)", user.Email, item.Name, item.Points, total)
	return &ClaimResult{
		ItemName:    item.Name,
		Description: item.Description,
		Points:      item.Points,
		TotalPoints: total,
	}, nil
}

// recordAttempt persists a failed attempt. Attempt recording must never mask
// the business outcome, so write failures are logged and swallowed.
func (s *ClaimService) recordAttempt(userID, identifier string, success bool, itemID *string) {
	attempt := models.ClaimAttempt{
		ID:         uuid.NewString(),
		UserID:     userID,
		Identifier: identifier,
		Success:    success,
		HuntItemID: itemID,
	}
	if err := s.DB.Create(&attempt).Error; err != nil {
		log.Printf("⚠️ failed to record claim attempt for user %s: %v", userID, err)
	}
}
