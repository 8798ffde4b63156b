package services

import (
	"fmt"
	"testing"

	"hunt-points-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testAdmin = Actor{Email: "admin@conference.dev", IPAddress: "127.0.0.1", UserAgent: "test"}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// sqlite allows one writer; a single connection serializes concurrent
	// transactions instead of surfacing SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.UserClaim{},
		&models.HuntItem{},
		&models.ClaimAttempt{},
		&models.ShopItem{},
		&models.ShopPrizeInstance{},
		&models.Collectible{},
		&models.CollectibleInstance{},
		&models.AdminAuditLog{},
		&models.Notice{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string, points int) *models.User {
	t.Helper()
	user := models.User{
		ID:          uuid.NewString(),
		Email:       email,
		DisplayName: email,
		Points:      points,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedHuntItem(t *testing.T, db *gorm.DB, identifier string, points int) *models.HuntItem {
	t.Helper()
	item := models.HuntItem{
		ID:         uuid.NewString(),
		Identifier: identifier,
		Name:       "Item " + identifier,
		Points:     points,
		Active:     true,
	}
	require.NoError(t, db.Create(&item).Error)
	return &item
}

func seedCollectible(t *testing.T, db *gorm.DB, name string, cost int, limited bool, remaining int) *models.Collectible {
	t.Helper()
	col := models.Collectible{
		ID:          uuid.NewString(),
		Name:        name,
		Cost:        cost,
		Purchasable: true,
		Limited:     limited,
		Remaining:   remaining,
		Active:      true,
	}
	require.NoError(t, db.Create(&col).Error)
	return &col
}

func seedShopItem(t *testing.T, db *gorm.DB, name string, cost int, limited bool, remaining int) *models.ShopItem {
	t.Helper()
	item := models.ShopItem{
		ID:        uuid.NewString(),
		Name:      name,
		Cost:      cost,
		Limited:   limited,
		Remaining: remaining,
		Active:    true,
	}
	require.NoError(t, db.Create(&item).Error)
	return &item
}

func userPoints(t *testing.T, db *gorm.DB, userID string) int {
	t.Helper()
	var points int
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", userID).Pluck("points", &points).Error)
	return points
}

func countAttempts(t *testing.T, db *gorm.DB, userID string, success bool) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.ClaimAttempt{}).
		Where("user_id = ? AND success = ?", userID, success).
		Count(&n).Error)
	return n
}
