package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"hunt-points-system/models"
	"hunt-points-system/utils"

	"gorm.io/gorm"
)

// AuditArchiveClient exports completed days of the audit trail to R2 object
// storage. Rows are never mutated or deleted: the export is a copy, keyed by
// UTC day, safe to re-run.
type AuditArchiveClient struct {
	DB *gorm.DB
}

func NewAuditArchiveClient(db *gorm.DB) *AuditArchiveClient {
	return &AuditArchiveClient{DB: db}
}

// ExportDay uploads every audit entry created on the given UTC day. Returns
// the number of entries exported (zero-entry days are skipped).
func (c *AuditArchiveClient) ExportDay(ctx context.Context, day time.Time) (int, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	var entries []models.AdminAuditLog
	if err := c.DB.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return 0, fmt.Errorf("failed to load audit entries for %s: %w", start.Format("2006-01-02"), err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	body, err := json.Marshal(entries)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal audit archive: %w", err)
	}

	key := fmt.Sprintf("audit/%s.json", start.Format("2006-01-02"))
	if err := utils.UploadAuditArchive(ctx, key, body); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// PollAuditArchive exports the previous UTC day once per tick. The last
// exported day is tracked in memory; a restart re-exports one day, which the
// idempotent object key makes harmless.
func PollAuditArchive(ctx context.Context, client *AuditArchiveClient, pollInterval time.Duration) {
	log.Println("Starting audit archive polling...")

	var lastExported string

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Audit archive polling stopped.")
			return
		case <-ticker.C:
			yesterday := time.Now().UTC().AddDate(0, 0, -1)
			dayKey := yesterday.Format("2006-01-02")
			if dayKey == lastExported {
				continue
			}

			count, err := client.ExportDay(ctx, yesterday)
			if err != nil {
				log.Printf("❌ Audit archive export failed for %s: %v", dayKey, err)
				// Retry on the next tick.
				continue
			}
			lastExported = dayKey
			if count == 0 {
				log.Printf("➡️ No audit entries to archive for %s.", dayKey)
				continue
			}
			log.Printf("✅ Archived %d audit entrie(s) for %s to R2.", count, dayKey)
		}
	}
}
