package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"hunt-points-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// CatalogService owns the admin CRUD for hunt items, shop items and
// collectibles. Every mutation writes an audit entry with sanitized
// before/after snapshots.
type CatalogService struct {
	DB    *gorm.DB
	Audit *AuditService
}

func NewCatalogService(db *gorm.DB, audit *AuditService) *CatalogService {
	return &CatalogService{DB: db, Audit: audit}
}

// --- Hunt items ---

type HuntItemInput struct {
	Identifier      string     `json:"identifier"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Points          int        `json:"points"`
	MaxClaims       *int       `json:"max_claims"`
	Active          *bool      `json:"active"`
	ActivationStart *time.Time `json:"activation_start"`
	ActivationEnd   *time.Time `json:"activation_end"`
}

// CreateHuntItem creates a hunt item. When no identifier is supplied one is
// derived from the name plus a short random suffix so codes stay guessable
// only by scanning.
func (s *CatalogService) CreateHuntItem(admin Actor, input HuntItemInput) (*models.HuntItem, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, Validation("name is required")
	}
	if input.Points < 0 {
		return nil, Validation("points cannot be negative")
	}

	identifier := strings.TrimSpace(input.Identifier)
	if identifier == "" {
		identifier = fmt.Sprintf("%s-%s", slug.Make(input.Name), uuid.NewString()[:8])
	}

	item := models.HuntItem{
		ID:              uuid.NewString(),
		Identifier:      identifier,
		Name:            input.Name,
		Description:     input.Description,
		Points:          input.Points,
		MaxClaims:       input.MaxClaims,
		Active:          true,
		ActivationStart: input.ActivationStart,
		ActivationEnd:   input.ActivationEnd,
	}
	if input.Active != nil {
		item.Active = *input.Active
	}

	if err := s.DB.Create(&item).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, Conflict("a hunt item with that identifier already exists")
		}
		log.Printf("❌ DB error creating hunt item: %v", err)
		return nil, Internal("failed to create hunt item")
	}

	s.Audit.LogAdminAction(AuditEntry{
		Actor:        admin,
		Action:       models.AuditActionCreate,
		ResourceType: models.AuditResourceHuntItem,
		ResourceID:   &item.ID,
		NewData:      huntItemSnapshot(&item),
	})
	return &item, nil
}

// HuntItemPatch is a partial update; nil fields are left alone.
type HuntItemPatch struct {
	Name            *string    `json:"name"`
	Description     *string    `json:"description"`
	Points          *int       `json:"points"`
	MaxClaims       *int       `json:"max_claims"`
	Active          *bool      `json:"active"`
	ActivationStart *time.Time `json:"activation_start"`
	ActivationEnd   *time.Time `json:"activation_end"`
}

// UpdateHuntItem applies a partial update. The identifier is immutable and
// cannot be patched.
func (s *CatalogService) UpdateHuntItem(admin Actor, id string, patch HuntItemPatch) (*models.HuntItem, error) {
	var item models.HuntItem
	if err := s.DB.Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("hunt item not found")
		}
		return nil, Internal("failed to load hunt item")
	}

	prev := huntItemSnapshot(&item)

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, Validation("name cannot be empty")
		}
		item.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Points != nil {
		if *patch.Points < 0 {
			return nil, Validation("points cannot be negative")
		}
		item.Points = *patch.Points
	}
	if patch.MaxClaims != nil {
		item.MaxClaims = patch.MaxClaims
	}
	if patch.Active != nil {
		item.Active = *patch.Active
	}
	if patch.ActivationStart != nil {
		item.ActivationStart = patch.ActivationStart
	}
	if patch.ActivationEnd != nil {
		item.ActivationEnd = patch.ActivationEnd
	}

	if err := s.DB.Save(&item).Error; err != nil {
		log.Printf("❌ DB error updating hunt item %s: %v", id, err)
		return nil, Internal("failed to update hunt item")
	}

	s.Audit.LogAdminAction(AuditEntry{
		Actor:        admin,
		Action:       models.AuditActionUpdate,
		ResourceType: models.AuditResourceHuntItem,
		ResourceID:   &item.ID,
		PreviousData: prev,
		NewData:      huntItemSnapshot(&item),
	})
	return &item, nil
}

// DeleteHuntItem removes a hunt item. Existing user claims are left in
// place; the leaderboard and analyzer simply stop counting the item.
func (s *CatalogService) DeleteHuntItem(admin Actor, id string) error {
	var item models.HuntItem
	if err := s.DB.Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("hunt item not found")
		}
		return Internal("failed to load hunt item")
	}

	if err := s.DB.Delete(&item).Error; err != nil {
		return Internal("failed to delete hunt item")
	}

	s.Audit.LogAdminAction(AuditEntry{
		Actor:        admin,
		Action:       models.AuditActionDelete,
		ResourceType: models.AuditResourceHuntItem,
		ResourceID:   &item.ID,
		PreviousData: huntItemSnapshot(&item),
	})
	return nil
}

func (s *CatalogService) ListHuntItems() ([]models.HuntItem, error) {
	var items []models.HuntItem
	if err := s.DB.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, Internal("failed to list hunt items")
	}
	return items, nil
}

func huntItemSnapshot(item *models.HuntItem) map[string]interface{} {
	return map[string]interface{}{
		"identifier":  item.Identifier,
		"name":        item.Name,
		"description": item.Description,
		"points":      item.Points,
		"active":      item.Active,
		"claim_count": item.ClaimCount,
	}
}

// --- Shop items ---

type ShopItemInput struct {
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	ImageURL        string     `json:"image_url"`
	Cost            int        `json:"cost"`
	DiscountedCost  *int       `json:"discounted_cost"`
	Limited         *bool      `json:"limited"`
	Remaining       *int       `json:"remaining"`
	Active          *bool      `json:"active"`
	ActivationStart *time.Time `json:"activation_start"`
	ActivationEnd   *time.Time `json:"activation_end"`
}

func (s *CatalogService) CreateShopItem(admin Actor, input ShopItemInput) (*models.ShopItem, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, Validation("name is required")
	}
	if input.Cost < 0 {
		return nil, Validation("cost cannot be negative")
	}

	item := models.ShopItem{
		ID:              uuid.NewString(),
		Name:            input.Name,
		Description:     input.Description,
		ImageURL:        input.ImageURL,
		Cost:            input.Cost,
		DiscountedCost:  input.DiscountedCost,
		Active:          true,
		ActivationStart: input.ActivationStart,
		ActivationEnd:   input.ActivationEnd,
	}
	if input.Limited != nil {
		item.Limited = *input.Limited
	}
	if input.Remaining != nil {
		if *input.Remaining < 0 {
			return nil, Validation("remaining stock cannot be negative")
		}
		item.Remaining = *input.Remaining
	}
	if input.Active != nil {
		item.Active = *input.Active
	}

	if err := s.DB.Create(&item).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, Conflict("a shop item with that name already exists")
		}
		return nil, Internal("failed to create shop item")
	}

	s.Audit.LogAdminAction(AuditEntry{
		Actor:        admin,
		Action:       models.AuditActionCreate,
		ResourceType: models.AuditResourceShopItem,
		ResourceID:   &item.ID,
		NewData:      shopItemSnapshot(&item),
	})
	return &item, nil
}

// ShopItemPatch is a partial update; nil fields are left alone.
type ShopItemPatch struct {
	Name            *string    `json:"name"`
	Description     *string    `json:"description"`
	ImageURL        *string    `json:"image_url"`
	Cost            *int       `json:"cost"`
	DiscountedCost  *int       `json:"discounted_cost"`
	Limited         *bool      `json:"limited"`
	Remaining       *int       `json:"remaining"`
	Active          *bool      `json:"active"`
	ActivationStart *time.Time `json:"activation_start"`
	ActivationEnd   *time.Time `json:"activation_end"`
}

func (s *CatalogService) UpdateShopItem(admin Actor, id string, patch ShopItemPatch) (*models.ShopItem, error) {
	var item models.ShopItem
	if err := s.DB.Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("shop item not found")
		}
		return nil, Internal("failed to load shop item")
	}

	prev := shopItemSnapshot(&item)

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, Validation("name cannot be empty")
		}
		item.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.ImageURL != nil {
		item.ImageURL = *patch.ImageURL
	}
	if patch.Cost != nil {
		if *patch.Cost < 0 {
			return nil, Validation("cost cannot be negative")
		}
		item.Cost = *patch.Cost
	}
	if patch.DiscountedCost != nil {
		item.DiscountedCost = patch.DiscountedCost
	}
	if patch.Limited != nil {
		item.Limited = *patch.Limited
	}
	if patch.Remaining != nil {
		if *patch.Remaining < 0 {
			return nil, Validation("remaining stock cannot be negative")
		}
		item.Remaining = *patch.Remaining
	}
	if patch.Active != nil {
		item.Active = *patch.Active
	}
	if patch.ActivationStart != nil {
		item.ActivationStart = patch.ActivationStart
	}
	if patch.ActivationEnd != nil {
		item.ActivationEnd = patch.ActivationEnd
	}

	if err := s.DB.Save(&item).Error; err != nil {
		return nil, Internal("failed to update shop item")
	}

	s.Audit.LogAdminAction(AuditEntry{
		Actor:        admin,
		Action:       models.AuditActionUpdate,
		ResourceType: models.AuditResourceShopItem,
		ResourceID:   &item.ID,
		PreviousData: prev,
		NewData:      shopItemSnapshot(&item),
	})
	return &item, nil
}

// DeleteShopItem refuses to delete a prize any user still holds, so
// inventory records never orphan.
func (s *CatalogService) DeleteShopItem(admin Actor, id string) error {
	var item models.ShopItem
	if err := s.DB.Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("shop item not found")
		}
		return Internal("failed to load shop item")
	}

	var held int64
	if err := s.DB.Model(&models.ShopPrizeInstance{}).
		Where("shop_item_id = ?", item.ID).
		Count(&held).Error; err != nil {
		return Internal("failed to check prize holders")
	}
	if held > 0 {
		return Conflict("shop item is held by users and cannot be deleted")
	}

	if err := s.DB.Delete(&item).Error; err != nil {
		return Internal("failed to delete shop item")
	}

	s.Audit.LogAdminAction(AuditEntry{
		Actor:        admin,
		Action:       models.AuditActionDelete,
		ResourceType: models.AuditResourceShopItem,
		ResourceID:   &item.ID,
		PreviousData: shopItemSnapshot(&item),
	})
	return nil
}

func (s *CatalogService) ListShopItems(activeOnly bool) ([]models.ShopItem, error) {
	query := s.DB.Order("created_at ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var items []models.ShopItem
	if err := query.Find(&items).Error; err != nil {
		return nil, Internal("failed to list shop items")
	}
	return items, nil
}

func shopItemSnapshot(item *models.ShopItem) map[string]interface{} {
	return map[string]interface{}{
		"name":            item.Name,
		"cost":            item.Cost,
		"discounted_cost": item.DiscountedCost,
		"limited":         item.Limited,
		"remaining":       item.Remaining,
		"active":          item.Active,
		"claim_count":     item.ClaimCount,
	}
}

// --- Collectibles ---

type CollectibleInput struct {
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	ImageURL        string     `json:"image_url"`
	Cost            int        `json:"cost"`
	DiscountedCost  *int       `json:"discounted_cost"`
	Purchasable     *bool      `json:"purchasable"`
	Limited         *bool      `json:"limited"`
	Remaining       *int       `json:"remaining"`
	Active          *bool      `json:"active"`
	ActivationStart *time.Time `json:"activation_start"`
	ActivationEnd   *time.Time `json:"activation_end"`
}

func (s *CatalogService) CreateCollectible(admin Actor, input CollectibleInput) (*models.Collectible, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, Validation("name is required")
	}
	if input.Cost < 0 {
		return nil, Validation("cost cannot be negative")
	}

	col := models.Collectible{
		ID:              uuid.NewString(),
		Name:            input.Name,
		Description:     input.Description,
		ImageURL:        input.ImageURL,
		Cost:            input.Cost,
		DiscountedCost:  input.DiscountedCost,
		Purchasable:     true,
		Active:          true,
		ActivationStart: input.ActivationStart,
		ActivationEnd:   input.ActivationEnd,
	}
	if input.Purchasable != nil {
		col.Purchasable = *input.Purchasable
	}
	if input.Limited != nil {
		col.Limited = *input.Limited
	}
	if input.Remaining != nil {
		if *input.Remaining < 0 {
			return nil, Validation("remaining stock cannot be negative")
		}
		col.Remaining = *input.Remaining
	}
	if input.Active != nil {
		col.Active = *input.Active
	}

	if err := s.DB.Create(&col).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, Conflict("a collectible with that name already exists")
		}
		return nil, Internal("failed to create collectible")
	}

	s.Audit.LogAdminAction(AuditEntry{
		Actor:        admin,
		Action:       models.AuditActionCreate,
		ResourceType: models.AuditResourceCollectible,
		ResourceID:   &col.ID,
		NewData:      collectibleSnapshot(&col),
	})
	return &col, nil
}

// CollectiblePatch is a partial update; nil fields are left alone.
type CollectiblePatch struct {
	Name            *string    `json:"name"`
	Description     *string    `json:"description"`
	ImageURL        *string    `json:"image_url"`
	Cost            *int       `json:"cost"`
	DiscountedCost  *int       `json:"discounted_cost"`
	Purchasable     *bool      `json:"purchasable"`
	Limited         *bool      `json:"limited"`
	Remaining       *int       `json:"remaining"`
	Active          *bool      `json:"active"`
	ActivationStart *time.Time `json:"activation_start"`
	ActivationEnd   *time.Time `json:"activation_end"`
}

func (s *CatalogService) UpdateCollectible(admin Actor, id string, patch CollectiblePatch) (*models.Collectible, error) {
	var col models.Collectible
	if err := s.DB.Where("id = ?", id).First(&col).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("collectible not found")
		}
		return nil, Internal("failed to load collectible")
	}

	prev := collectibleSnapshot(&col)

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, Validation("name cannot be empty")
		}
		col.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		col.Description = *patch.Description
	}
	if patch.ImageURL != nil {
		col.ImageURL = *patch.ImageURL
	}
	if patch.Cost != nil {
		if *patch.Cost < 0 {
			return nil, Validation("cost cannot be negative")
		}
		col.Cost = *patch.Cost
	}
	if patch.DiscountedCost != nil {
		col.DiscountedCost = patch.DiscountedCost
	}
	if patch.Purchasable != nil {
		col.Purchasable = *patch.Purchasable
	}
	if patch.Limited != nil {
		col.Limited = *patch.Limited
	}
	if patch.Remaining != nil {
		if *patch.Remaining < 0 {
			return nil, Validation("remaining stock cannot be negative")
		}
		col.Remaining = *patch.Remaining
	}
	if patch.Active != nil {
		col.Active = *patch.Active
	}
	if patch.ActivationStart != nil {
		col.ActivationStart = patch.ActivationStart
	}
	if patch.ActivationEnd != nil {
		col.ActivationEnd = patch.ActivationEnd
	}

	if err := s.DB.Save(&col).Error; err != nil {
		return nil, Internal("failed to update collectible")
	}

	s.Audit.LogAdminAction(AuditEntry{
		Actor:        admin,
		Action:       models.AuditActionUpdate,
		ResourceType: models.AuditResourceCollectible,
		ResourceID:   &col.ID,
		PreviousData: prev,
		NewData:      collectibleSnapshot(&col),
	})
	return &col, nil
}

func (s *CatalogService) DeleteCollectible(admin Actor, id string) error {
	var col models.Collectible
	if err := s.DB.Where("id = ?", id).First(&col).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("collectible not found")
		}
		return Internal("failed to load collectible")
	}

	var held int64
	if err := s.DB.Model(&models.CollectibleInstance{}).
		Where("collectible_id = ?", col.ID).
		Count(&held).Error; err != nil {
		return Internal("failed to check collectible holders")
	}
	if held > 0 {
		return Conflict("collectible is held by users and cannot be deleted")
	}

	if err := s.DB.Delete(&col).Error; err != nil {
		return Internal("failed to delete collectible")
	}

	s.Audit.LogAdminAction(AuditEntry{
		Actor:        admin,
		Action:       models.AuditActionDelete,
		ResourceType: models.AuditResourceCollectible,
		ResourceID:   &col.ID,
		PreviousData: collectibleSnapshot(&col),
	})
	return nil
}

func (s *CatalogService) ListCollectibles(activeOnly bool) ([]models.Collectible, error) {
	query := s.DB.Order("created_at ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var cols []models.Collectible
	if err := query.Find(&cols).Error; err != nil {
		return nil, Internal("failed to list collectibles")
	}
	return cols, nil
}

func collectibleSnapshot(col *models.Collectible) map[string]interface{} {
	return map[string]interface{}{
		"name":            col.Name,
		"cost":            col.Cost,
		"discounted_cost": col.DiscountedCost,
		"purchasable":     col.Purchasable,
		"limited":         col.Limited,
		"remaining":       col.Remaining,
		"active":          col.Active,
		"claim_count":     col.ClaimCount,
	}
}
