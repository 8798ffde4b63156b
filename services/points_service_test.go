package services

import (
	"testing"

	"hunt-points-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantHuntItem(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db, NewAuditService(db))

	user := seedUser(t, db, "grantee@example.com", 0)
	item := seedHuntItem(t, db, "workshop-a", 75)

	require.NoError(t, svc.GrantHuntItem(testAdmin, user.ID, item.ID))

	// Grant records the claim but never awards points.
	assert.Equal(t, 0, userPoints(t, db, user.ID))

	var claims int64
	require.NoError(t, db.Model(&models.UserClaim{}).Where("user_id = ?", user.ID).Count(&claims).Error)
	assert.EqualValues(t, 1, claims)

	// Grants are not claim calls; the attempt log stays empty.
	assert.EqualValues(t, 0, countAttempts(t, db, user.ID, true))

	// Admin grants bump the item counter (self-claims do not).
	var fresh models.HuntItem
	require.NoError(t, db.Where("id = ?", item.ID).First(&fresh).Error)
	assert.Equal(t, 1, fresh.ClaimCount)

	var entry models.AdminAuditLog
	require.NoError(t, db.Where("action = ?", models.AuditActionGrantHuntItem).First(&entry).Error)
	assert.Contains(t, string(entry.Details), `"points_updated":false`)
}

func TestGrantHuntItem_DuplicateRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db, NewAuditService(db))

	user := seedUser(t, db, "grantee@example.com", 0)
	item := seedHuntItem(t, db, "workshop-b", 10)

	require.NoError(t, svc.GrantHuntItem(testAdmin, user.ID, item.ID))

	err := svc.GrantHuntItem(testAdmin, user.ID, item.ID)
	var op *OpError
	require.ErrorAs(t, err, &op)
	assert.Contains(t, op.Message, "already claimed")

	var fresh models.HuntItem
	require.NoError(t, db.Where("id = ?", item.ID).First(&fresh).Error)
	assert.Equal(t, 1, fresh.ClaimCount)
}

func TestGrantHuntItem_DoesNotTripSuspiciousSweep(t *testing.T) {
	db := newTestDB(t)
	points := NewPointsService(db, NewAuditService(db))
	analysis := NewAnalysisService(db)

	user := seedUser(t, db, "lucky@example.com", 0)
	itemA := seedHuntItem(t, db, "booth-a", 10)
	itemB := seedHuntItem(t, db, "booth-b", 20)

	// Two grants in quick succession must not read as rapid scanning.
	require.NoError(t, points.GrantHuntItem(testAdmin, user.ID, itemA.ID))
	require.NoError(t, points.GrantHuntItem(testAdmin, user.ID, itemB.ID))

	report, err := analysis.AnalyzeClaims()
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalFlaggedPairs)
	assert.Equal(t, 0, report.TotalFlaggedUsers)

	// The granted items still count toward the recomputed total.
	require.Len(t, report.Users, 1)
	assert.Equal(t, 30, report.Users[0].CalculatedPoints)
}

func TestRedeemPoints_ClampsAtZero(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db, NewAuditService(db))

	user := seedUser(t, db, "spender@example.com", 30)

	balance, err := svc.RedeemPoints(testAdmin, user.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
	assert.Equal(t, 0, userPoints(t, db, user.ID))

	var entry models.AdminAuditLog
	require.NoError(t, db.Where("action = ?", models.AuditActionRedeemPoints).First(&entry).Error)
	assert.JSONEq(t, `{"points": 30}`, string(entry.PreviousData))
	assert.JSONEq(t, `{"points": 0}`, string(entry.NewData))
}

func TestRedeemPoints_RejectsNonPositiveAmount(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db, NewAuditService(db))
	user := seedUser(t, db, "spender@example.com", 30)

	for _, amount := range []int{0, -5} {
		_, err := svc.RedeemPoints(testAdmin, user.ID, amount)
		var op *OpError
		require.ErrorAs(t, err, &op)
		assert.Contains(t, op.Message, "positive")
	}
	assert.Equal(t, 30, userPoints(t, db, user.ID))
}

func TestRedeemPoints_ConcurrentClaimNotLost(t *testing.T) {
	db := newTestDB(t)
	points := NewPointsService(db, NewAuditService(db))
	claims := NewClaimService(db)

	user := seedUser(t, db, "busy@example.com", 100)
	seedHuntItem(t, db, "booth-live", 50)

	// A claim landing while the admin deducts must not be overwritten:
	// the deduction is a relative conditional update, so either order
	// leaves 100 + 50 - 60 = 90 on the ledger.
	done := make(chan error, 2)
	go func() {
		_, err := claims.ClaimHuntItem(user.Email, "booth-live")
		done <- err
	}()
	go func() {
		_, err := points.RedeemPoints(testAdmin, user.ID, 60)
		done <- err
	}()
	for i := 0; i < 2; i++ {
		require.NoError(t, <-done)
	}

	assert.Equal(t, 90, userPoints(t, db, user.ID))
}

func TestSetPoints(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db, NewAuditService(db))
	user := seedUser(t, db, "target@example.com", 12)

	require.NoError(t, svc.SetPoints(testAdmin, user.ID, 500))
	assert.Equal(t, 500, userPoints(t, db, user.ID))

	err := svc.SetPoints(testAdmin, user.ID, -1)
	var op *OpError
	require.ErrorAs(t, err, &op)
	assert.Contains(t, op.Message, "negative")
	assert.Equal(t, 500, userPoints(t, db, user.ID))
}

func TestMassAdjustPoints(t *testing.T) {
	db := newTestDB(t)
	points := NewPointsService(db, NewAuditService(db))
	claims := NewClaimService(db)

	item := seedHuntItem(t, db, "overvalued-booth", 200)
	users := []*models.User{
		seedUser(t, db, "a@example.com", 0),
		seedUser(t, db, "b@example.com", 0),
		seedUser(t, db, "c@example.com", 0),
	}
	for _, u := range users {
		_, err := claims.ClaimHuntItem(u.Email, item.Identifier)
		require.NoError(t, err)
	}
	// A bystander who never claimed the item is untouched.
	bystander := seedUser(t, db, "d@example.com", 40)

	result, err := points.MassAdjustPoints(testAdmin, item.ID, -1000)
	require.NoError(t, err)
	assert.Equal(t, 3, result.UsersAffected)
	assert.Equal(t, -1000, result.Delta)

	// Each claimant had 200 and clamps at zero.
	for _, u := range users {
		assert.Equal(t, 0, userPoints(t, db, u.ID))
	}
	assert.Equal(t, 40, userPoints(t, db, bystander.ID))

	var entries []models.AdminAuditLog
	require.NoError(t, db.Where("action = ?", models.AuditActionMassAdjustPoints).Find(&entries).Error)
	require.Len(t, entries, 3)
	for _, entry := range entries {
		assert.JSONEq(t, `{"points": 200}`, string(entry.PreviousData))
		assert.JSONEq(t, `{"points": 0}`, string(entry.NewData))
	}
}

func TestMassAdjustPoints_ZeroDelta(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db, NewAuditService(db))
	item := seedHuntItem(t, db, "booth", 10)

	_, err := svc.MassAdjustPoints(testAdmin, item.ID, 0)
	var op *OpError
	require.ErrorAs(t, err, &op)
	assert.Contains(t, op.Message, "non-zero")
}

func TestClearClaimAttempts(t *testing.T) {
	db := newTestDB(t)
	points := NewPointsService(db, NewAuditService(db))
	claims := NewClaimService(db)

	user := seedUser(t, db, "noisy@example.com", 0)
	seedHuntItem(t, db, "booth-x", 10)

	_, err := claims.ClaimHuntItem(user.Email, "booth-x")
	require.NoError(t, err)
	_, err = claims.ClaimHuntItem(user.Email, "does-not-exist")
	require.Error(t, err)

	removed, err := points.ClearClaimAttempts(testAdmin, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	assert.EqualValues(t, 0, countAttempts(t, db, user.ID, true))
	assert.EqualValues(t, 0, countAttempts(t, db, user.ID, false))

	// Claims and points survive; only the attempt log is wiped.
	var userClaims int64
	require.NoError(t, db.Model(&models.UserClaim{}).Where("user_id = ?", user.ID).Count(&userClaims).Error)
	assert.EqualValues(t, 1, userClaims)
	assert.Equal(t, 10, userPoints(t, db, user.ID))
}
