package services

import (
	"testing"

	"hunt-points-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	input := map[string]interface{}{
		"item_name": "T-Shirt",
		"Password":  "hunter2",
		"api_key":   "sk-123",
		"nested": map[string]interface{}{
			"token": "abc",
			"cost":  50,
		},
	}

	out := Sanitize(input)
	assert.Equal(t, "T-Shirt", out["item_name"])
	assert.Equal(t, "[REDACTED]", out["Password"])
	assert.Equal(t, "[REDACTED]", out["api_key"])
	nested := out["nested"].(map[string]interface{})
	assert.Equal(t, "[REDACTED]", nested["token"])
	assert.Equal(t, 50, nested["cost"])

	// Input untouched.
	assert.Equal(t, "hunter2", input["Password"])
	assert.Nil(t, Sanitize(nil))
}

func TestLogAdminAction_Persists(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuditService(db)

	target := "target@example.com"
	resource := "item-1"
	svc.LogAdminAction(AuditEntry{
		Actor:           testAdmin,
		TargetUserEmail: &target,
		Action:          models.AuditActionUpdate,
		ResourceType:    models.AuditResourceHuntItem,
		ResourceID:      &resource,
		Details:         map[string]interface{}{"field": "points", "password": "oops"},
		PreviousData:    map[string]interface{}{"points": 10},
		NewData:         map[string]interface{}{"points": 20},
	})

	var rec models.AdminAuditLog
	require.NoError(t, db.First(&rec).Error)
	assert.Equal(t, testAdmin.Email, rec.AdminEmail)
	assert.Equal(t, testAdmin.IPAddress, rec.IPAddress)
	assert.Equal(t, models.AuditActionUpdate, rec.Action)
	assert.Contains(t, string(rec.Details), `"password":"[REDACTED]"`)
	assert.JSONEq(t, `{"points": 10}`, string(rec.PreviousData))
	assert.JSONEq(t, `{"points": 20}`, string(rec.NewData))
}

func TestListAuditLogs_FiltersAndPaginates(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuditService(db)

	other := Actor{Email: "other@conference.dev"}
	for i := 0; i < 3; i++ {
		svc.LogAdminAction(AuditEntry{
			Actor:        testAdmin,
			Action:       models.AuditActionUpdate,
			ResourceType: models.AuditResourceHuntItem,
		})
	}
	svc.LogAdminAction(AuditEntry{
		Actor:        other,
		Action:       models.AuditActionDelete,
		ResourceType: models.AuditResourceShopItem,
	})

	logs, total, err := svc.ListAuditLogs(AuditLogFilter{AdminEmail: testAdmin.Email}, 1, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, logs, 3)

	logs, total, err = svc.ListAuditLogs(AuditLogFilter{Action: string(models.AuditActionDelete)}, 1, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, logs, 1)
	assert.Equal(t, other.Email, logs[0].AdminEmail)

	// Pagination: page 2 of size 2 holds the remainder.
	logs, total, err = svc.ListAuditLogs(AuditLogFilter{}, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, logs, 2)
}
