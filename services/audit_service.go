package services

import (
	"encoding/json"
	"log"
	"strings"

	"hunt-points-system/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Actor identifies the privileged caller of an audited operation, together
// with the request metadata the audit trail records.
type Actor struct {
	Email     string
	IPAddress string
	UserAgent string
}

type AuditService struct {
	DB *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{DB: db}
}

// AuditEntry is the schema-less input to the writer; Details/PreviousData/
// NewData carry whatever the calling operation finds worth recording.
type AuditEntry struct {
	Actor           Actor
	TargetUserEmail *string
	Action          models.AuditAction
	ResourceType    models.AuditResourceType
	ResourceID      *string
	Details         map[string]interface{}
	PreviousData    map[string]interface{}
	NewData         map[string]interface{}
}

// sensitiveKeys are redacted from audit payloads before persistence.
var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"token":         {},
	"secret":        {},
	"authorization": {},
	"session":       {},
	"api_key":       {},
}

// Sanitize redacts sensitive fields from an audit payload, recursing into
// nested objects. The input is not modified.
func Sanitize(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		if _, bad := sensitiveKeys[strings.ToLower(k)]; bad {
			out[k] = "[REDACTED]"
			continue
		}
		if nested, ok := v.(map[string]interface{}); ok {
			out[k] = Sanitize(nested)
			continue
		}
		out[k] = v
	}
	return out
}

func toJSON(data map[string]interface{}) datatypes.JSON {
	if data == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("⚠️ failed to marshal audit payload: %v", err)
		return nil
	}
	return datatypes.JSON(raw)
}

// LogAdminAction appends one audit record. A write failure never fails the
// primary operation being documented: it is logged and swallowed.
func (s *AuditService) LogAdminAction(e AuditEntry) {
	rec := models.AdminAuditLog{
		ID:              uuid.NewString(),
		AdminEmail:      e.Actor.Email,
		TargetUserEmail: e.TargetUserEmail,
		Action:          e.Action,
		ResourceType:    e.ResourceType,
		ResourceID:      e.ResourceID,
		Details:         toJSON(Sanitize(e.Details)),
		PreviousData:    toJSON(Sanitize(e.PreviousData)),
		NewData:         toJSON(Sanitize(e.NewData)),
		IPAddress:       e.Actor.IPAddress,
		UserAgent:       e.Actor.UserAgent,
	}
	if err := s.DB.Create(&rec).Error; err != nil {
		log.Printf("⚠️ audit log write failed (action=%s resource=%s): %v", e.Action, e.ResourceType, err)
	}
}

// AuditLogFilter narrows ListAuditLogs output.
type AuditLogFilter struct {
	AdminEmail      string
	TargetUserEmail string
	Action          string
	ResourceType    string
}

// ListAuditLogs returns audit records newest first, paginated.
func (s *AuditService) ListAuditLogs(filter AuditLogFilter, page, size int) ([]models.AdminAuditLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 200 {
		size = 50
	}

	query := s.DB.Model(&models.AdminAuditLog{})
	if filter.AdminEmail != "" {
		query = query.Where("admin_email = ?", filter.AdminEmail)
	}
	if filter.TargetUserEmail != "" {
		query = query.Where("target_user_email = ?", filter.TargetUserEmail)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, Internal("failed to count audit logs")
	}

	var logs []models.AdminAuditLog
	if err := query.Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&logs).Error; err != nil {
		return nil, 0, Internal("failed to fetch audit logs")
	}
	return logs, total, nil
}
