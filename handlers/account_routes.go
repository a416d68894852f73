// handlers/account_routes.go
package handlers

import (
	"fmt"
	"strings"

	"airdrop-rewards-system/middleware"
	"airdrop-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

type registerRequest struct {
	TelegramID string  `json:"telegram_id"`
	Username   *string `json:"username"`
}

type walletRequest struct {
	TelegramID    string  `json:"telegram_id"`
	WalletAddress string  `json:"wallet_address"`
	WalletTag     *string `json:"wallet_tag"`
}

func SetupAccountRoutes(app *fiber.App, accounts *services.AccountService) {
	api := app.Group("/api")

	// Accepts a JSON body or telegram_id/username query parameters.
	api.Post("/register", func(c *fiber.Ctx) error {
		var req registerRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return badRequest(c, "invalid request body")
			}
		}
		if req.TelegramID == "" {
			req.TelegramID = c.Query("telegram_id")
		}
		if req.Username == nil && c.Query("username") != "" {
			name := c.Query("username")
			req.Username = &name
		}

		acct, created, err := accounts.Register(callerID(c, req.TelegramID), req.Username)
		if err != nil {
			return respondError(c, err)
		}
		profile, err := accounts.Profile(acct.ExternalID)
		if err != nil {
			return respondError(c, err)
		}

		status := fiber.StatusOK
		if created {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(profile)
	})

	api.Get("/user/:telegram_id", func(c *fiber.Ctx) error {
		profile, err := accounts.Profile(c.Params("telegram_id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(profile)
	})

	api.Get("/user/:telegram_id/referrals", func(c *fiber.Ctx) error {
		list, err := accounts.Referrals(c.Params("telegram_id"), c.QueryInt("limit", 20))
		if err != nil {
			return respondError(c, err)
		}
		out := make([]fiber.Map, 0, len(list))
		for _, a := range list {
			out = append(out, fiber.Map{
				"username":  a.DisplayName(),
				"join_date": a.JoinedAt,
			})
		}
		return c.JSON(out)
	})

	connectWallet := func(c *fiber.Ctx) error {
		var req walletRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		req.WalletAddress = strings.TrimSpace(req.WalletAddress)
		if req.WalletAddress == "" {
			return respondError(c, fmt.Errorf("%w: wallet_address is required", services.ErrInvalidInput))
		}

		acct, err := accounts.SetWalletAddress(callerID(c, req.TelegramID), req.WalletAddress, req.WalletTag)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"status":         "success",
			"message":        "Wallet connected successfully",
			"wallet_address": acct.WalletAddress,
			"wallet_tag":     acct.WalletTag,
		})
	}
	api.Post("/connect-wallet", connectWallet)
	api.Post("/submit-wallet", connectWallet)
}

// callerID prefers the id carried by the request and falls back to the gateway header.
func callerID(c *fiber.Ctx, fromRequest string) string {
	if id := strings.TrimSpace(fromRequest); id != "" {
		return id
	}
	return middleware.UserID(c)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   services.Kind(services.ErrInvalidInput),
		"message": message,
	})
}
