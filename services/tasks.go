package services

import (
	"errors"

	"airdrop-rewards-system/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskService struct {
	Ledger
}

func NewTaskService(l Ledger) *TaskService {
	return &TaskService{Ledger: l}
}

type TaskResult struct {
	Reward     int64 `json:"tokens_earned"`
	NewBalance int64 `json:"total_tokens"`
}

// TaskStatus is a catalog entry as seen by one account.
type TaskStatus struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Reward    int64  `json:"reward"`
	URL       string `json:"url,omitempty"`
	Completed bool   `json:"completed"`
}

// CompleteTask credits the catalog reward once per (account, task title).
// Checks run in order: account exists, title is in the catalog, not yet completed.
func (s *TaskService) CompleteTask(externalID, title string) (*TaskResult, error) {
	var result TaskResult
	var credited credit

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		acct, err := lockAccount(tx, externalID)
		if err != nil {
			return err
		}

		reward, ok := s.Settings.Tasks.Reward(title)
		if !ok {
			return ErrInvalidTask
		}

		var done int64
		if err := tx.Model(&models.CompletedTask{}).
			Where("account_id = ? AND task_title = ?", acct.ID, title).
			Count(&done).Error; err != nil {
			return err
		}
		if done > 0 {
			return ErrAlreadyCompleted
		}

		now := s.now()
		row := models.CompletedTask{
			AccountID:   acct.ID,
			TaskTitle:   title,
			Reward:      reward,
			CompletedAt: now,
		}
		// The unique (account_id, task_title) index is the last word if the lock was bypassed.
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyCompleted
		}

		if credited, err = applyCredit(tx, acct, models.RewardCategoryTask, reward, title, now); err != nil {
			return err
		}
		result = TaskResult{Reward: reward, NewBalance: acct.TotalTokens}
		return nil
	})
	if err != nil {
		return nil, observe("complete_task", err)
	}

	reportCredits(credited)
	log.Info().
		Str("telegram_id", externalID).
		Str("task", title).
		Int64("reward", result.Reward).
		Int64("balance", result.NewBalance).
		Msg("✅ Task completed")
	return &result, nil
}

// ListTasks returns the catalog; with an externalID the entries carry completion flags.
func (s *TaskService) ListTasks(externalID string) ([]TaskStatus, error) {
	completed := map[string]bool{}
	if externalID != "" {
		var acct models.Account
		if err := s.DB.Where("external_id = ?", externalID).First(&acct).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, observe("list_tasks", ErrNotFound)
			}
			return nil, observe("list_tasks", err)
		}

		var titles []string
		if err := s.DB.Model(&models.CompletedTask{}).
			Where("account_id = ?", acct.ID).
			Pluck("task_title", &titles).Error; err != nil {
			return nil, observe("list_tasks", err)
		}
		for _, t := range titles {
			completed[t] = true
		}
	}

	defs := s.Settings.Tasks.Tasks()
	out := make([]TaskStatus, 0, len(defs))
	for _, d := range defs {
		out = append(out, TaskStatus{
			Title:     d.Title,
			Slug:      d.Slug,
			Reward:    d.Reward,
			URL:       d.URL,
			Completed: completed[d.Title],
		})
	}
	return out, nil
}
