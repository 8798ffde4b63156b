package services

import (
	"os"
	"sort"
	"strings"
	"time"

	"hunt-points-system/models"

	"gorm.io/gorm"
)

// DefaultExcludedIdentifiers are items legitimately claimable back-to-back
// (codes handed out at the same table), so close pairs involving them are
// not suspicious. Overridable via EXCLUDED_IDENTIFIERS.
var DefaultExcludedIdentifiers = []string{
	"registration-desk",
	"welcome-booth",
}

// suspiciousGapMinutes is the threshold below which two consecutive
// successful claims count as a flagged pair.
const suspiciousGapMinutes = 5.0

type AnalysisService struct {
	DB       *gorm.DB
	excluded map[string]struct{}
}

func NewAnalysisService(db *gorm.DB) *AnalysisService {
	identifiers := DefaultExcludedIdentifiers
	if env := os.Getenv("EXCLUDED_IDENTIFIERS"); env != "" {
		identifiers = strings.Split(env, ",")
	}
	excluded := make(map[string]struct{}, len(identifiers))
	for _, id := range identifiers {
		id = strings.TrimSpace(id)
		if id != "" {
			excluded[id] = struct{}{}
		}
	}
	return &AnalysisService{DB: db, excluded: excluded}
}

// SuspiciousPair is one temporally-close pair of successful claims.
type SuspiciousPair struct {
	FirstIdentifier  string    `json:"first_identifier"`
	SecondIdentifier string    `json:"second_identifier"`
	FirstAt          time.Time `json:"first_at"`
	SecondAt         time.Time `json:"second_at"`
	TimeDiffMinutes  float64   `json:"time_diff_minutes"`
}

// UserAnalysis holds per-user findings. CalculatedPoints is re-derived from
// claimed items; DisplayedPoints is the cached ledger balance — divergence
// between the two is itself a signal worth surfacing.
type UserAnalysis struct {
	UserID           string           `json:"user_id"`
	Email            string           `json:"email"`
	DisplayName      string           `json:"display_name"`
	CalculatedPoints int              `json:"calculated_points"`
	DisplayedPoints  int              `json:"displayed_points"`
	SuspiciousPairs  []SuspiciousPair `json:"suspicious_pairs,omitempty"`
}

type AnalysisReport struct {
	Users              []UserAnalysis `json:"users"`
	TotalUsersAnalyzed int            `json:"total_users_analyzed"`
	TotalFlaggedUsers  int            `json:"total_flagged_users"`
	TotalFlaggedPairs  int            `json:"total_flagged_pairs"`
	GeneratedAt        time.Time      `json:"generated_at"`
}

// AnalyzeClaims runs the read-only batch sweep: recompute every claimant's
// point total from their claimed items, flag consecutive successful claims
// closer than the gap threshold (net of the exclusion list), then rank the
// top 100 by calculated points with suspicious users sorted first.
func (s *AnalysisService) AnalyzeClaims() (*AnalysisReport, error) {
	var items []models.HuntItem
	if err := s.DB.Find(&items).Error; err != nil {
		return nil, Internal("failed to load hunt items")
	}
	pointsByItem := make(map[string]int, len(items))
	for _, item := range items {
		pointsByItem[item.ID] = item.Points
	}

	var claims []models.UserClaim
	if err := s.DB.Find(&claims).Error; err != nil {
		return nil, Internal("failed to load claims")
	}
	claimsByUser := make(map[string][]models.UserClaim)
	for _, c := range claims {
		claimsByUser[c.UserID] = append(claimsByUser[c.UserID], c)
	}
	if len(claimsByUser) == 0 {
		return &AnalysisReport{Users: []UserAnalysis{}, GeneratedAt: time.Now()}, nil
	}

	userIDs := make([]string, 0, len(claimsByUser))
	for id := range claimsByUser {
		userIDs = append(userIDs, id)
	}
	var users []models.User
	if err := s.DB.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, Internal("failed to load users")
	}

	var attempts []models.ClaimAttempt
	if err := s.DB.Where("success = ? AND user_id IN ?", true, userIDs).
		Order("created_at ASC").
		Find(&attempts).Error; err != nil {
		return nil, Internal("failed to load claim attempts")
	}
	attemptsByUser := make(map[string][]models.ClaimAttempt)
	for _, a := range attempts {
		attemptsByUser[a.UserID] = append(attemptsByUser[a.UserID], a)
	}

	analyses := make([]UserAnalysis, 0, len(users))
	totalPairs := 0
	for _, user := range users {
		calculated := 0
		for _, c := range claimsByUser[user.ID] {
			calculated += pointsByItem[c.HuntItemID]
		}

		ua := UserAnalysis{
			UserID:           user.ID,
			Email:            user.Email,
			DisplayName:      user.DisplayName,
			CalculatedPoints: calculated,
			DisplayedPoints:  user.Points,
		}

		succeeded := attemptsByUser[user.ID]
		for i := 1; i < len(succeeded); i++ {
			prev, cur := succeeded[i-1], succeeded[i]
			if s.isExcluded(prev.Identifier) || s.isExcluded(cur.Identifier) {
				continue
			}
			gap := cur.CreatedAt.Sub(prev.CreatedAt).Minutes()
			if gap < suspiciousGapMinutes {
				ua.SuspiciousPairs = append(ua.SuspiciousPairs, SuspiciousPair{
					FirstIdentifier:  prev.Identifier,
					SecondIdentifier: cur.Identifier,
					FirstAt:          prev.CreatedAt,
					SecondAt:         cur.CreatedAt,
					TimeDiffMinutes:  gap,
				})
			}
		}
		totalPairs += len(ua.SuspiciousPairs)
		analyses = append(analyses, ua)
	}

	// Top 100 by calculated points, then suspicious users first within
	// that window.
	sort.SliceStable(analyses, func(i, j int) bool {
		return analyses[i].CalculatedPoints > analyses[j].CalculatedPoints
	})
	if len(analyses) > 100 {
		analyses = analyses[:100]
	}
	sort.SliceStable(analyses, func(i, j int) bool {
		fi, fj := len(analyses[i].SuspiciousPairs), len(analyses[j].SuspiciousPairs)
		if fi != fj {
			return fi > fj
		}
		return analyses[i].CalculatedPoints > analyses[j].CalculatedPoints
	})

	flaggedUsers := 0
	for _, ua := range analyses {
		if len(ua.SuspiciousPairs) > 0 {
			flaggedUsers++
		}
	}

	return &AnalysisReport{
		Users:              analyses,
		TotalUsersAnalyzed: len(analyses),
		TotalFlaggedUsers:  flaggedUsers,
		TotalFlaggedPairs:  totalPairs,
		GeneratedAt:        time.Now(),
	}, nil
}

func (s *AnalysisService) isExcluded(identifier string) bool {
	_, ok := s.excluded[identifier]
	return ok
}
