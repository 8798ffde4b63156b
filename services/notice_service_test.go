package services

import (
	"testing"

	"hunt-points-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoticeLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewNoticeService(db, NewAuditService(db))

	notice, err := svc.CreateNotice(testAdmin, NoticeInput{Title: "Shop opens at noon", Body: "Day 2 only"})
	require.NoError(t, err)
	assert.True(t, notice.Active)

	inactive := false
	updated, err := svc.UpdateNotice(testAdmin, notice.ID, NoticeInput{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	// Empty title/body in the update leave the originals alone.
	assert.Equal(t, "Shop opens at noon", updated.Title)
	assert.Equal(t, "Day 2 only", updated.Body)

	public, err := svc.ListNotices(true)
	require.NoError(t, err)
	assert.Empty(t, public)

	all, err := svc.ListNotices(false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.DeleteNotice(testAdmin, notice.ID))

	var audits int64
	require.NoError(t, db.Model(&models.AdminAuditLog{}).
		Where("resource_type = ?", models.AuditResourceNotice).Count(&audits).Error)
	assert.EqualValues(t, 3, audits)
}

func TestCreateNotice_RequiresTitle(t *testing.T) {
	db := newTestDB(t)
	svc := NewNoticeService(db, NewAuditService(db))

	_, err := svc.CreateNotice(testAdmin, NoticeInput{Title: "  "})
	var op *OpError
	require.ErrorAs(t, err, &op)
	assert.Contains(t, op.Message, "title is required")
}
