package services

import (
	"airdrop-rewards-system/models"
)

const (
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 100
)

type LeaderboardService struct {
	Ledger
}

func NewLeaderboardService(l Ledger) *LeaderboardService {
	return &LeaderboardService{Ledger: l}
}

type LeaderboardEntry struct {
	Username    string `json:"username"`
	TotalTokens int64  `json:"total_tokens"`
	Rank        int    `json:"rank"`
}

// TopN ranks accounts by balance, ties broken by join time then id.
// n <= 0 means the default size; n is capped at MaxLeaderboardSize.
func (s *LeaderboardService) TopN(n int) ([]LeaderboardEntry, error) {
	if n <= 0 {
		n = DefaultLeaderboardSize
	}
	if n > MaxLeaderboardSize {
		n = MaxLeaderboardSize
	}

	var accounts []models.Account
	if err := s.DB.Select("id", "username", "total_tokens", "joined_at").
		Order("total_tokens DESC").
		Order("joined_at ASC").
		Order("id ASC").
		Limit(n).
		Find(&accounts).Error; err != nil {
		return nil, observe("leaderboard", err)
	}

	out := make([]LeaderboardEntry, len(accounts))
	for i := range accounts {
		out[i] = LeaderboardEntry{
			Username:    accounts[i].DisplayName(),
			TotalTokens: accounts[i].TotalTokens,
			Rank:        i + 1,
		}
	}
	return out, nil
}
