package services

import (
	"errors"
	"fmt"
	"strings"

	"airdrop-rewards-system/models"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DonationService struct {
	Ledger
}

func NewDonationService(l Ledger) *DonationService {
	return &DonationService{Ledger: l}
}

// RecordDonation appends a claimed donation. The balance is not touched and
// neither amount nor hash is checked against any chain.
func (s *DonationService) RecordDonation(externalID string, amount decimal.Decimal, txHash string) (*models.Donation, error) {
	txHash = strings.TrimSpace(txHash)

	var donation models.Donation
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		acct, err := lockAccount(tx, externalID)
		if err != nil {
			return err
		}
		if !amount.IsPositive() {
			return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
		}

		donation = models.Donation{
			AccountID:       acct.ID,
			Amount:          amount,
			TransactionHash: txHash,
			Message:         fmt.Sprintf("Thank you for the coffee! Transaction: %s", txHash),
			CreatedAt:       s.now(),
		}
		return tx.Create(&donation).Error
	})
	if err != nil {
		return nil, observe("record_donation", err)
	}

	log.Info().
		Str("telegram_id", externalID).
		Str("amount", amount.String()).
		Str("tx_hash", txHash).
		Msg("☕ Donation recorded")
	return &donation, nil
}

// Donations lists an account's claims, newest first.
func (s *DonationService) Donations(externalID string) ([]models.Donation, error) {
	var acct models.Account
	if err := s.DB.Select("id").Where("external_id = ?", externalID).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, observe("list_donations", ErrNotFound)
		}
		return nil, observe("list_donations", err)
	}
	var out []models.Donation
	err := s.DB.Where("account_id = ?", acct.ID).Order("created_at DESC").Find(&out).Error
	return out, observe("list_donations", err)
}
