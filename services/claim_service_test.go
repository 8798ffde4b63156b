package services

import (
	"testing"

	"hunt-points-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimHuntItem_Success(t *testing.T) {
	db := newTestDB(t)
	svc := NewClaimService(db)

	user := seedUser(t, db, "alice@example.com", 0)
	seedHuntItem(t, db, "CUSEC-2026-BOOTH-1", 50)

	result, err := svc.ClaimHuntItem(user.Email, "CUSEC-2026-BOOTH-1")
	require.NoError(t, err)
	assert.Equal(t, 50, result.Points)
	assert.Equal(t, 50, result.TotalPoints)

	assert.Equal(t, 50, userPoints(t, db, user.ID))

	var claims []models.UserClaim
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&claims).Error)
	assert.Len(t, claims, 1)

	assert.EqualValues(t, 1, countAttempts(t, db, user.ID, true))
	assert.EqualValues(t, 0, countAttempts(t, db, user.ID, false))
}

func TestClaimHuntItem_DuplicateFails(t *testing.T) {
	db := newTestDB(t)
	svc := NewClaimService(db)

	user := seedUser(t, db, "alice@example.com", 0)
	seedHuntItem(t, db, "booth-2", 25)

	_, err := svc.ClaimHuntItem(user.Email, "booth-2")
	require.NoError(t, err)

	_, err = svc.ClaimHuntItem(user.Email, "booth-2")
	require.Error(t, err)
	var op *OpError
	require.ErrorAs(t, err, &op)
	assert.Equal(t, fiber.StatusBadRequest, op.Status)
	assert.Contains(t, op.Message, "already claimed")

	// Points awarded exactly once, both attempts on record.
	assert.Equal(t, 25, userPoints(t, db, user.ID))
	assert.EqualValues(t, 1, countAttempts(t, db, user.ID, true))
	assert.EqualValues(t, 1, countAttempts(t, db, user.ID, false))

	var claims int64
	require.NoError(t, db.Model(&models.UserClaim{}).Where("user_id = ?", user.ID).Count(&claims).Error)
	assert.EqualValues(t, 1, claims)
}

func TestClaimHuntItem_UnknownIdentifier(t *testing.T) {
	db := newTestDB(t)
	svc := NewClaimService(db)

	user := seedUser(t, db, "bob@example.com", 10)

	_, err := svc.ClaimHuntItem(user.Email, "no-such-code")
	var op *OpError
	require.ErrorAs(t, err, &op)
	assert.Equal(t, fiber.StatusNotFound, op.Status)

	// Exactly one failed attempt; nothing else moved.
	assert.EqualValues(t, 1, countAttempts(t, db, user.ID, false))
	assert.Equal(t, 10, userPoints(t, db, user.ID))

	var claims int64
	require.NoError(t, db.Model(&models.UserClaim{}).Where("user_id = ?", user.ID).Count(&claims).Error)
	assert.EqualValues(t, 0, claims)

	var attempt models.ClaimAttempt
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&attempt).Error)
	assert.Equal(t, "no-such-code", attempt.Identifier)
	assert.Nil(t, attempt.HuntItemID)
}

func TestClaimHuntItem_EmptyIdentifier(t *testing.T) {
	db := newTestDB(t)
	svc := NewClaimService(db)

	seedUser(t, db, "bob@example.com", 0)

	_, err := svc.ClaimHuntItem("bob@example.com", "   ")
	var op *OpError
	require.ErrorAs(t, err, &op)
	assert.Equal(t, fiber.StatusBadRequest, op.Status)
}

func TestClaimHuntItem_SelfClaimDoesNotBumpClaimCount(t *testing.T) {
	db := newTestDB(t)
	svc := NewClaimService(db)

	user := seedUser(t, db, "alice@example.com", 0)
	item := seedHuntItem(t, db, "booth-3", 5)

	_, err := svc.ClaimHuntItem(user.Email, "booth-3")
	require.NoError(t, err)

	var fresh models.HuntItem
	require.NoError(t, db.Where("id = ?", item.ID).First(&fresh).Error)
	assert.Equal(t, 0, fresh.ClaimCount)
}

func TestClaimHuntItem_ConcurrentDuplicateYieldsOneSuccess(t *testing.T) {
	db := newTestDB(t)
	svc := NewClaimService(db)

	user := seedUser(t, db, "racer@example.com", 0)
	seedHuntItem(t, db, "booth-race", 40)

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.ClaimHuntItem(user.Email, "booth-race")
			results <- err
		}()
	}

	var successes, failures int
	for i := 0; i < 2; i++ {
		if err := <-results; err == nil {
			successes++
		} else {
			failures++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, failures)
	assert.Equal(t, 40, userPoints(t, db, user.ID))
}
