// handlers/reward_routes.go
package handlers

import (
	"fmt"

	"airdrop-rewards-system/config"
	"airdrop-rewards-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type taskRequest struct {
	TelegramID string `json:"telegram_id"`
	TaskTitle  string `json:"task_title"`
}

type referralRequest struct {
	TelegramID   string `json:"telegram_id"`
	ReferralCode string `json:"referral_code"`
}

type donationRequest struct {
	TelegramID      string          `json:"telegram_id"`
	AmountEGLD      decimal.Decimal `json:"amount_egld"`
	TransactionHash string          `json:"transaction_hash"`
}

func SetupRewardRoutes(app *fiber.App, svc *services.Services, settings *config.Settings) {
	api := app.Group("/api")

	api.Get("/tasks", func(c *fiber.Ctx) error {
		tasks, err := svc.Tasks.ListTasks(callerID(c, c.Query("telegram_id")))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(tasks)
	})

	api.Post("/complete-task", func(c *fiber.Ctx) error {
		var req taskRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		res, err := svc.Tasks.CompleteTask(callerID(c, req.TelegramID), req.TaskTitle)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"status":        "success",
			"tokens_earned": res.Reward,
			"total_tokens":  res.NewBalance,
		})
	})

	api.Post("/use-referral", func(c *fiber.Ctx) error {
		var req referralRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		res, err := svc.Referrals.ApplyReferral(callerID(c, req.TelegramID), req.ReferralCode)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"status":        "success",
			"tokens_earned": res.Bonus,
			"total_tokens":  res.NewBalance,
		})
	})

	api.Post("/daily-check-in/:telegram_id", func(c *fiber.Ctx) error {
		res, err := svc.CheckIns.CheckIn(c.Params("telegram_id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"status":        "success",
			"streak":        res.Streak,
			"tokens_earned": res.Reward,
			"total_tokens":  res.NewBalance,
		})
	})

	api.Get("/leaderboard", func(c *fiber.Ctx) error {
		top, err := svc.Leaderboard.TopN(c.QueryInt("limit", services.DefaultLeaderboardSize))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(top)
	})

	api.Post("/record-donation", func(c *fiber.Ctx) error {
		var req donationRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if _, err := svc.Donations.RecordDonation(callerID(c, req.TelegramID), req.AmountEGLD, req.TransactionHash); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Thank you for your donation!",
		})
	})

	api.Get("/user/:telegram_id/donations", func(c *fiber.Ctx) error {
		list, err := svc.Donations.Donations(c.Params("telegram_id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	api.Get("/project-wallet", func(c *fiber.Ctx) error {
		if settings.ProjectWallet == "" {
			return respondError(c, fiber.NewError(fiber.StatusNotFound, "no project wallet configured"))
		}
		return c.JSON(fiber.Map{
			"wallet_address": settings.ProjectWallet,
			"wallet_tag":     settings.WalletTag,
		})
	})

	// Presentation copy reads these instead of hardcoding amounts.
	api.Get("/rewards", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"campaign":              settings.CampaignName,
			"welcome_bonus":         settings.WelcomeBonus,
			"daily_check_in_reward": settings.DailyCheckInReward,
			"referral_reward":       settings.ReferralReward,
			"referral_bonus":        settings.ReferralBonus,
			"tasks":                 settings.Tasks.Tasks(),
			"check_in_timezone":     fmt.Sprint(settings.CheckInLocation),
		})
	})
}
