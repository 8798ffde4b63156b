package services

import (
	"errors"
	"log"
	"strings"

	"hunt-points-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// EnsureUser fetches the user row for an authenticated email, creating it on
// first contact (idempotent).
func (s *UserService) EnsureUser(email, displayName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, Unauthorized("missing caller identity")
	}

	var user models.User
	err := s.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			ID:          uuid.NewString(),
			Email:       email,
			DisplayName: displayName,
		}
		if err := s.DB.Create(&user).Error; err != nil {
			if isDuplicateKey(err) {
				// Lost a first-contact race; the row exists now.
				if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
					return nil, Internal("failed to load user")
				}
				return &user, nil
			}
			log.Printf("❌ DB error creating user %s: %v", email, err)
			return nil, Internal("failed to create user")
		}
		log.Printf("👤 New user registered: %s", email)
		return &user, nil
	}
	if err != nil {
		return nil, Internal("failed to load user")
	}
	return &user, nil
}

// Profile is the account view: balance plus everything the user holds.
type Profile struct {
	User         models.User                  `json:"user"`
	ClaimedItems []models.HuntItem            `json:"claimed_items"`
	ShopPrizes   []models.ShopPrizeInstance   `json:"shop_prizes"`
	Collectibles []models.CollectibleInstance `json:"collectibles"`
}

func (s *UserService) GetProfile(email string) (*Profile, error) {
	user, err := s.EnsureUser(email, "")
	if err != nil {
		return nil, err
	}

	var claims []models.UserClaim
	if err := s.DB.Where("user_id = ?", user.ID).Find(&claims).Error; err != nil {
		return nil, Internal("failed to load claims")
	}
	itemIDs := make([]string, len(claims))
	for i, c := range claims {
		itemIDs[i] = c.HuntItemID
	}
	var items []models.HuntItem
	if len(itemIDs) > 0 {
		if err := s.DB.Where("id IN ?", itemIDs).Find(&items).Error; err != nil {
			return nil, Internal("failed to load claimed items")
		}
	}

	var prizes []models.ShopPrizeInstance
	if err := s.DB.Where("user_id = ?", user.ID).Order("created_at ASC").Find(&prizes).Error; err != nil {
		return nil, Internal("failed to load shop prizes")
	}

	var collectibles []models.CollectibleInstance
	if err := s.DB.Where("user_id = ?", user.ID).Order("added_at ASC").Find(&collectibles).Error; err != nil {
		return nil, Internal("failed to load collectibles")
	}

	return &Profile{
		User:         *user,
		ClaimedItems: items,
		ShopPrizes:   prizes,
		Collectibles: collectibles,
	}, nil
}

// LinkSecondaryEmail sets the user's secondary email. It can be set exactly
// once; any later attempt is a conflict, even with the same value.
func (s *UserService) LinkSecondaryEmail(email, secondary string) (*models.User, error) {
	secondary = strings.ToLower(strings.TrimSpace(secondary))
	if secondary == "" || !strings.Contains(secondary, "@") {
		return nil, Validation("a valid secondary email is required")
	}

	user, err := s.EnsureUser(email, "")
	if err != nil {
		return nil, err
	}
	if secondary == user.Email {
		return nil, Validation("secondary email must differ from primary email")
	}
	if user.SecondaryEmail != nil {
		return nil, Conflict("secondary email is already linked")
	}

	user.SecondaryEmail = &secondary
	if err := s.DB.Save(user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, Conflict("that email is already linked to another account")
		}
		return nil, Internal("failed to link secondary email")
	}
	return user, nil
}

func (s *UserService) SetDisplayName(email, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Validation("display name is required")
	}
	user, err := s.EnsureUser(email, "")
	if err != nil {
		return nil, err
	}
	user.DisplayName = name
	if err := s.DB.Save(user).Error; err != nil {
		return nil, Internal("failed to update display name")
	}
	return user, nil
}

// SearchUsers matches email, secondary email or display name, for the admin
// console's user picker.
func (s *UserService) SearchUsers(query string, limit int) ([]models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	db := s.DB.Model(&models.User{}).Limit(limit).Order("email ASC")
	if query != "" {
		searchTerm := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
		db = db.Where(
			"LOWER(email) LIKE ? OR LOWER(secondary_email) LIKE ? OR LOWER(display_name) LIKE ?",
			searchTerm, searchTerm, searchTerm,
		)
	}

	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return nil, Internal("user search failed")
	}
	return users, nil
}

func (s *UserService) SetChatHandle(email, handle string) (*models.User, error) {
	user, err := s.EnsureUser(email, "")
	if err != nil {
		return nil, err
	}
	user.ChatHandle = strings.TrimSpace(handle)
	if err := s.DB.Save(user).Error; err != nil {
		return nil, Internal("failed to update chat handle")
	}
	return user, nil
}
