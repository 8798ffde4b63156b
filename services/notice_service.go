package services

import (
	"errors"
	"strings"

	"hunt-points-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoticeService struct {
	DB    *gorm.DB
	Audit *AuditService
}

func NewNoticeService(db *gorm.DB, audit *AuditService) *NoticeService {
	return &NoticeService{DB: db, Audit: audit}
}

type NoticeInput struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Active *bool  `json:"active"`
}

func (s *NoticeService) CreateNotice(admin Actor, input NoticeInput) (*models.Notice, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, Validation("title is required")
	}

	notice := models.Notice{
		ID:     uuid.NewString(),
		Title:  input.Title,
		Body:   input.Body,
		Active: true,
	}
	if input.Active != nil {
		notice.Active = *input.Active
	}

	if err := s.DB.Create(&notice).Error; err != nil {
		return nil, Internal("failed to create notice")
	}

	s.Audit.LogAdminAction(AuditEntry{
		Actor:        admin,
		Action:       models.AuditActionCreate,
		ResourceType: models.AuditResourceNotice,
		ResourceID:   &notice.ID,
		NewData:      map[string]interface{}{"title": notice.Title, "active": notice.Active},
	})
	return &notice, nil
}

func (s *NoticeService) UpdateNotice(admin Actor, id string, input NoticeInput) (*models.Notice, error) {
	var notice models.Notice
	if err := s.DB.Where("id = ?", id).First(&notice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("notice not found")
		}
		return nil, Internal("failed to load notice")
	}

	prev := map[string]interface{}{"title": notice.Title, "body": notice.Body, "active": notice.Active}

	if title := strings.TrimSpace(input.Title); title != "" {
		notice.Title = title
	}
	if input.Body != "" {
		notice.Body = input.Body
	}
	if input.Active != nil {
		notice.Active = *input.Active
	}

	if err := s.DB.Save(&notice).Error; err != nil {
		return nil, Internal("failed to update notice")
	}

	s.Audit.LogAdminAction(AuditEntry{
		Actor:        admin,
		Action:       models.AuditActionUpdate,
		ResourceType: models.AuditResourceNotice,
		ResourceID:   &notice.ID,
		PreviousData: prev,
		NewData:      map[string]interface{}{"title": notice.Title, "body": notice.Body, "active": notice.Active},
	})
	return &notice, nil
}

func (s *NoticeService) DeleteNotice(admin Actor, id string) error {
	var notice models.Notice
	if err := s.DB.Where("id = ?", id).First(&notice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("notice not found")
		}
		return Internal("failed to load notice")
	}

	if err := s.DB.Delete(&notice).Error; err != nil {
		return Internal("failed to delete notice")
	}

	s.Audit.LogAdminAction(AuditEntry{
		Actor:        admin,
		Action:       models.AuditActionDelete,
		ResourceType: models.AuditResourceNotice,
		ResourceID:   &notice.ID,
		PreviousData: map[string]interface{}{"title": notice.Title, "active": notice.Active},
	})
	return nil
}

// ListNotices returns notices newest first; publicOnly limits to active ones.
func (s *NoticeService) ListNotices(publicOnly bool) ([]models.Notice, error) {
	query := s.DB.Order("created_at DESC")
	if publicOnly {
		query = query.Where("active = ?", true)
	}
	var notices []models.Notice
	if err := query.Find(&notices).Error; err != nil {
		return nil, Internal("failed to list notices")
	}
	return notices, nil
}
