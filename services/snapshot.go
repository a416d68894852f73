package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"airdrop-rewards-system/models"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"
)

// SnapshotSink stores an exported snapshot and returns where it ended up.
type SnapshotSink interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type SnapshotEntry struct {
	TelegramID    string  `json:"telegram_id"`
	Username      *string `json:"username,omitempty"`
	WalletAddress string  `json:"wallet_address"`
	WalletTag     *string `json:"wallet_tag,omitempty"`
	TotalTokens   int64   `json:"total_tokens"`
}

// Snapshot is the airdrop allocation at one point in time.
type Snapshot struct {
	Campaign    string          `json:"campaign"`
	GeneratedAt time.Time       `json:"generated_at"`
	TotalTokens int64           `json:"total_tokens"`
	Entries     []SnapshotEntry `json:"entries"`
}

type SnapshotService struct {
	Ledger
}

func NewSnapshotService(l Ledger) *SnapshotService {
	return &SnapshotService{Ledger: l}
}

// Build collects every account that registered a payout wallet, highest balance first.
func (s *SnapshotService) Build() (*Snapshot, error) {
	var accounts []models.Account
	if err := s.DB.
		Where("wallet_address IS NOT NULL AND wallet_address <> ''").
		Order("total_tokens DESC").
		Order("joined_at ASC").
		Find(&accounts).Error; err != nil {
		return nil, observe("snapshot", err)
	}

	snap := &Snapshot{
		Campaign:    s.Settings.CampaignName,
		GeneratedAt: s.now(),
		Entries:     make([]SnapshotEntry, 0, len(accounts)),
	}
	for _, a := range accounts {
		snap.Entries = append(snap.Entries, SnapshotEntry{
			TelegramID:    a.ExternalID,
			Username:      a.Username,
			WalletAddress: *a.WalletAddress,
			WalletTag:     a.WalletTag,
			TotalTokens:   a.TotalTokens,
		})
		snap.TotalTokens += a.TotalTokens
	}
	return snap, nil
}

// Key names the object a snapshot is stored under.
func (s *SnapshotService) Key(snap *Snapshot) string {
	return fmt.Sprintf("snapshots/%s-%s.json", slug.Make(snap.Campaign), snap.GeneratedAt.Format("20060102T150405Z"))
}

// Export builds a snapshot and hands it to sink.
func (s *SnapshotService) Export(ctx context.Context, sink SnapshotSink) (string, *Snapshot, error) {
	snap, err := s.Build()
	if err != nil {
		return "", nil, err
	}
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("encode snapshot: %w", err)
	}

	location, err := sink.Put(ctx, s.Key(snap), body, "application/json")
	if err != nil {
		return "", nil, observe("snapshot_export", fmt.Errorf("store snapshot: %w", err))
	}

	log.Info().
		Str("location", location).
		Int("wallets", len(snap.Entries)).
		Int64("total_tokens", snap.TotalTokens).
		Msg("📦 Snapshot exported")
	return location, snap, nil
}
