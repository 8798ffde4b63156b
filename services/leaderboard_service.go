package services

import (
	"sort"

	"hunt-points-system/models"

	"gorm.io/gorm"
)

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
}

// GetLeaderboard returns the public top 10. Scores are recomputed from
// claimed-item point values, never read from the cached points field, so
// retroactive edits to an item's value take effect immediately.
func (s *LeaderboardService) GetLeaderboard() ([]LeaderboardEntry, error) {
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
	scoreByUser := make(map[string]int)
	for _, c := range claims {
		scoreByUser[c.UserID] += pointsByItem[c.HuntItemID]
	}
	if len(scoreByUser) == 0 {
		return []LeaderboardEntry{}, nil
	}

	userIDs := make([]string, 0, len(scoreByUser))
	for id := range scoreByUser {
		userIDs = append(userIDs, id)
	}
	var users []models.User
	if err := s.DB.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, Internal("failed to load users")
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, user := range users {
		// Only named users appear publicly.
		if user.DisplayName == "" {
			continue
		}
		score := scoreByUser[user.ID]
		if score <= 0 {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			DisplayName: user.DisplayName,
			Score:       score,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].DisplayName < entries[j].DisplayName
	})
	if len(entries) > 10 {
		entries = entries[:10]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
