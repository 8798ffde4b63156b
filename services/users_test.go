package services

import (
	"testing"
	"time"

	"hunt-points-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureUser_Idempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	first, err := svc.EnsureUser("Alice@Example.com", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", first.Email)
	assert.Equal(t, "Alice", first.DisplayName)
	assert.Equal(t, 0, first.Points)

	second, err := svc.EnsureUser("alice@example.com", "ignored on revisit")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Alice", second.DisplayName)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEnsureUser_MissingEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.EnsureUser("   ", "Nobody")
	var op *OpError
	require.ErrorAs(t, err, &op)
	assert.Equal(t, fiber.StatusUnauthorized, op.Status)
}

func TestLinkSecondaryEmail_SetOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user, err := svc.LinkSecondaryEmail("alice@example.com", "Alice.Personal@Gmail.com")
	require.NoError(t, err)
	require.NotNil(t, user.SecondaryEmail)
	assert.Equal(t, "alice.personal@gmail.com", *user.SecondaryEmail)

	// Re-linking is a conflict even with the identical value.
	_, err = svc.LinkSecondaryEmail("alice@example.com", "alice.personal@gmail.com")
	var op *OpError
	require.ErrorAs(t, err, &op)
	assert.Equal(t, fiber.StatusConflict, op.Status)

	_, err = svc.LinkSecondaryEmail("alice@example.com", "other@gmail.com")
	require.ErrorAs(t, err, &op)
	assert.Equal(t, fiber.StatusConflict, op.Status)
}

func TestLinkSecondaryEmail_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.LinkSecondaryEmail("alice@example.com", "not-an-email")
	var op *OpError
	require.ErrorAs(t, err, &op)
	assert.Equal(t, fiber.StatusBadRequest, op.Status)

	_, err = svc.LinkSecondaryEmail("alice@example.com", "alice@example.com")
	require.ErrorAs(t, err, &op)
	assert.Contains(t, op.Message, "differ from primary")
}

func TestSearchUsers(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	alice := seedUser(t, db, "alice@example.com", 0)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", alice.ID).
		Update("display_name", "Alice Wonderland").Error)
	seedUser(t, db, "bob@example.com", 0)

	users, err := svc.SearchUsers("wonder", 50)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, alice.ID, users[0].ID)

	users, err = svc.SearchUsers("example.com", 50)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = svc.SearchUsers("", 1)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestGetProfile(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	claims := NewClaimService(db)
	redemptions := NewRedemptionService(db, NewAuditService(db))

	user := seedUser(t, db, "alice@example.com", 100)
	seedHuntItem(t, db, "booth-a", 10)
	col := seedCollectible(t, db, "Pin", 20, false, 0)

	_, err := claims.ClaimHuntItem(user.Email, "booth-a")
	require.NoError(t, err)
	_, err = redemptions.RedeemCollectible(user.Email, col.ID)
	require.NoError(t, err)

	profile, err := users.GetProfile(user.Email)
	require.NoError(t, err)
	assert.Equal(t, 90, profile.User.Points)
	require.Len(t, profile.ClaimedItems, 1)
	assert.Equal(t, "booth-a", profile.ClaimedItems[0].Identifier)
	assert.Len(t, profile.Collectibles, 1)
	assert.Empty(t, profile.ShopPrizes)
}

func TestSetDisplayNameAndChatHandle(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user, err := svc.SetDisplayName("alice@example.com", "  Alice W.  ")
	require.NoError(t, err)
	assert.Equal(t, "Alice W.", user.DisplayName)

	_, err = svc.SetDisplayName("alice@example.com", "   ")
	var op *OpError
	require.ErrorAs(t, err, &op)
	assert.Equal(t, fiber.StatusBadRequest, op.Status)

	user, err = svc.SetChatHandle("alice@example.com", "@alice")
	require.NoError(t, err)
	assert.Equal(t, "@alice", user.ChatHandle)

	var fresh models.User
	require.NoError(t, db.Where("id = ?", user.ID).First(&fresh).Error)
	assert.Equal(t, "Alice W.", fresh.DisplayName)
	assert.Equal(t, "@alice", fresh.ChatHandle)
	assert.WithinDuration(t, time.Now(), fresh.UpdatedAt, time.Minute)
}
