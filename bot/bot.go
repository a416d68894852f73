// Package bot is the Telegram front end of the ledger. It only translates
// updates into ledger calls and renders the outcome.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"airdrop-rewards-system/config"
	"airdrop-rewards-system/metrics"
	"airdrop-rewards-system/services"
	"airdrop-rewards-system/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Sender is the part of tgbotapi.BotAPI the bot needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	API      Sender
	Services *services.Services
	Settings *config.Settings

	copy    copywriter
	limiter *userLimiter
}

func New(api Sender, botUsername string, svc *services.Services, settings *config.Settings) *Bot {
	return &Bot{
		API:      api,
		Services: svc,
		Settings: settings,
		copy:     newCopywriter(settings, botUsername),
		limiter:  newUserLimiter(settings.BotRateLimit, settings.BotRateBurst),
	}
}

// Run long-polls Telegram until ctx is cancelled.
func Run(ctx context.Context, svc *services.Services, settings *config.Settings) error {
	if settings.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is not set")
	}
	api, err := tgbotapi.NewBotAPIWithClient(settings.BotToken, tgbotapi.APIEndpoint, utils.HTTPClient)
	if err != nil {
		return fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	api.Debug = settings.IsDevelopment()

	b := New(api, api.Self.UserName, svc, settings)
	log.Info().Str("bot", api.Self.UserName).Msg("🤖 Telegram bot started")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := api.GetUpdatesChan(u)

	cleanup := time.NewTicker(10 * time.Minute)
	defer cleanup.Stop()

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			log.Info().Msg("🛑 Telegram bot stopped")
			return nil
		case <-cleanup.C:
			b.limiter.Cleanup(time.Hour)
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(update)
		}
	}
}

// HandleUpdate answers one Telegram update. Errors are logged, never returned:
// one bad update must not stop the poller.
func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleMessage(update.Message)
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	cmd := msg.Command()
	if !b.limiter.Allow(msg.From.ID) {
		metrics.RecordBotUpdate("command", "rate_limited")
		return
	}

	reply := b.command(msg.From, cmd, msg.CommandArguments())
	b.send(msg.Chat.ID, 0, reply)
	metrics.RecordBotUpdate("command", "ok")
}

func (b *Bot) handleCallbackQuery(q *tgbotapi.CallbackQuery) {
	if q.From == nil {
		return
	}
	if !b.limiter.Allow(q.From.ID) {
		b.answer(q.ID, "⏳ Slow down a little.")
		metrics.RecordBotUpdate("callback", "rate_limited")
		return
	}

	reply := b.callback(q.From, q.Data)
	if q.Message != nil {
		messageID := 0
		if reply.Edit {
			messageID = q.Message.MessageID
		}
		b.send(q.Message.Chat.ID, messageID, reply)
	}
	b.answer(q.ID, "")
	metrics.RecordBotUpdate("callback", "ok")
}

// command handles a slash command from user.
func (b *Bot) command(user *tgbotapi.User, cmd, args string) Reply {
	id := externalID(user)
	args = strings.TrimSpace(args)

	if cmd == "start" {
		return b.start(user, args)
	}
	if cmd == "help" || cmd == "" {
		return Reply{Text: b.copy.help()}
	}
	if err := b.ensureAccount(user); err != nil {
		return Reply{Text: b.copy.failure(err)}
	}

	switch cmd {
	case "tasks":
		return b.tasks(id, false)
	case "invite":
		return b.invite(id, false)
	case "balance":
		return b.balance(id, false)
	case "checkin":
		return b.checkIn(id, false)
	case "leaderboard":
		return b.leaderboard(false)
	case "refer":
		if args == "" {
			return Reply{Text: "Usage: /refer <code>"}
		}
		return b.refer(id, args)
	case "wallet":
		return b.wallet(id, args)
	case "donate":
		return b.donate(id, args)
	}
	return Reply{Text: "🤔 Unknown command. Send /help for the list."}
}

// callback handles inline keyboard presses.
func (b *Bot) callback(user *tgbotapi.User, data string) Reply {
	id := externalID(user)
	if err := b.ensureAccount(user); err != nil {
		return Reply{Text: b.copy.failure(err)}
	}

	if slug, ok := strings.CutPrefix(data, "task:"); ok {
		return b.completeTask(id, slug)
	}
	switch data {
	case "menu":
		return Reply{Text: b.copy.welcome(false), Markup: b.copy.mainMenu(), Edit: true}
	case "tasks":
		return b.tasks(id, true)
	case "invite":
		return b.invite(id, true)
	case "balance":
		return b.balance(id, true)
	case "checkin":
		return b.checkIn(id, false)
	case "leaderboard":
		return b.leaderboard(true)
	}
	log.Warn().Str("data", data).Msg("⚠️  Unknown callback data")
	return Reply{Text: "🤔 That button is no longer supported."}
}

func (b *Bot) start(user *tgbotapi.User, payload string) Reply {
	acct, created, err := b.Services.Accounts.Register(externalID(user), username(user))
	if err != nil {
		return Reply{Text: b.copy.failure(err)}
	}
	text := b.copy.welcome(created)

	// t.me/<bot>?start=<code> deep links arrive as the /start payload.
	if payload != "" && !strings.EqualFold(payload, acct.ReferralCode) {
		res, err := b.Services.Referrals.ApplyReferral(acct.ExternalID, payload)
		switch {
		case err == nil:
			text += "\n\n" + b.copy.referral(res)
		case created:
			text += "\n\n" + b.copy.failure(err)
		}
	}
	return Reply{Text: text, Markup: b.copy.mainMenu()}
}

func (b *Bot) tasks(id string, edit bool) Reply {
	list, err := b.Services.Tasks.ListTasks(id)
	if err != nil {
		return Reply{Text: b.copy.failure(err)}
	}
	text, markup := b.copy.tasks(list)
	return Reply{Text: text, Markup: markup, Edit: edit}
}

func (b *Bot) completeTask(id, slug string) Reply {
	def, ok := b.Settings.Tasks.BySlug(slug)
	if !ok {
		return Reply{Text: b.copy.failure(services.ErrInvalidTask)}
	}
	res, err := b.Services.Tasks.CompleteTask(id, def.Title)
	if err != nil {
		return Reply{Text: b.copy.failure(err)}
	}
	return Reply{Text: b.copy.taskDone(def.Title, res)}
}

func (b *Bot) invite(id string, edit bool) Reply {
	acct, err := b.Services.Accounts.Get(id)
	if err != nil {
		return Reply{Text: b.copy.failure(err)}
	}
	return Reply{Text: b.copy.invite(acct), Markdown: true, Markup: b.copy.backMenu(), Edit: edit}
}

func (b *Bot) balance(id string, edit bool) Reply {
	p, err := b.Services.Accounts.Profile(id)
	if err != nil {
		return Reply{Text: b.copy.failure(err)}
	}
	return Reply{Text: b.copy.balance(p), Markup: b.copy.backMenu(), Edit: edit}
}

func (b *Bot) checkIn(id string, edit bool) Reply {
	res, err := b.Services.CheckIns.CheckIn(id)
	if err != nil {
		return Reply{Text: b.copy.failure(err)}
	}
	return Reply{Text: b.copy.checkIn(res), Edit: edit}
}

func (b *Bot) leaderboard(edit bool) Reply {
	top, err := b.Services.Leaderboard.TopN(services.DefaultLeaderboardSize)
	if err != nil {
		return Reply{Text: b.copy.failure(err)}
	}
	return Reply{Text: b.copy.leaderboard(top), Markup: b.copy.backMenu(), Edit: edit}
}

func (b *Bot) refer(id, code string) Reply {
	res, err := b.Services.Referrals.ApplyReferral(id, code)
	if err != nil {
		return Reply{Text: b.copy.failure(err)}
	}
	return Reply{Text: b.copy.referral(res)}
}

func (b *Bot) wallet(id, args string) Reply {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		acct, err := b.Services.Accounts.Get(id)
		if err != nil {
			return Reply{Text: b.copy.failure(err)}
		}
		if acct.WalletAddress == nil {
			return Reply{Text: "👛 No wallet connected yet.\nUsage: /wallet <address> [tag]"}
		}
		return Reply{Text: fmt.Sprintf("👛 Your wallet: `%s`", *acct.WalletAddress), Markdown: true}
	}

	var tag *string
	if len(fields) > 1 {
		tag = &fields[1]
	}
	if _, err := b.Services.Accounts.SetWalletAddress(id, fields[0], tag); err != nil {
		return Reply{Text: b.copy.failure(err)}
	}
	return Reply{Text: "👛 Wallet connected successfully!"}
}

func (b *Bot) donate(id, args string) Reply {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return Reply{Text: b.copy.donationTarget(), Markdown: true}
	}
	if len(fields) != 2 {
		return Reply{Text: "Usage: /donate <amount> <tx_hash>"}
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(fields[0], ",", "."))
	if err != nil {
		return Reply{Text: "❌ Amount must be a number, e.g. /donate 0.5 <tx_hash>"}
	}
	d, err := b.Services.Donations.RecordDonation(id, amount, fields[1])
	if err != nil {
		return Reply{Text: b.copy.failure(err)}
	}
	return Reply{Text: b.copy.donate(d)}
}

func (b *Bot) ensureAccount(user *tgbotapi.User) error {
	_, _, err := b.Services.Accounts.Register(externalID(user), username(user))
	return err
}

func (b *Bot) send(chatID int64, editMessageID int, r Reply) {
	var c tgbotapi.Chattable
	if editMessageID != 0 {
		edit := tgbotapi.NewEditMessageText(chatID, editMessageID, r.Text)
		edit.ReplyMarkup = r.Markup
		if r.Markdown {
			edit.ParseMode = tgbotapi.ModeMarkdown
		}
		c = edit
	} else {
		msg := tgbotapi.NewMessage(chatID, r.Text)
		if r.Markup != nil {
			msg.ReplyMarkup = *r.Markup
		}
		if r.Markdown {
			msg.ParseMode = tgbotapi.ModeMarkdown
		}
		c = msg
	}
	if _, err := b.API.Send(c); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("❌ Failed to send Telegram message")
	}
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.API.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		log.Warn().Err(err).Msg("⚠️  Failed to answer callback query")
	}
}

func externalID(user *tgbotapi.User) string {
	return strconv.FormatInt(user.ID, 10)
}

func username(user *tgbotapi.User) *string {
	if user.UserName != "" {
		return &user.UserName
	}
	if user.FirstName != "" {
		return &user.FirstName
	}
	return nil
}
