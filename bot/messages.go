package bot

import (
	"fmt"
	"strings"

	"airdrop-rewards-system/config"
	"airdrop-rewards-system/models"
	"airdrop-rewards-system/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Reply is what the bot answers with, independent of how it is delivered.
type Reply struct {
	Text     string
	Markup   *tgbotapi.InlineKeyboardMarkup
	Markdown bool
	// Edit replaces the message the callback came from instead of sending a new one.
	Edit bool
}

// copywriter renders user-facing text. Amounts always come from Settings.
type copywriter struct {
	settings    *config.Settings
	printer     *message.Printer
	botUsername string
}

func newCopywriter(settings *config.Settings, botUsername string) copywriter {
	return copywriter{
		settings:    settings,
		printer:     message.NewPrinter(language.English),
		botUsername: botUsername,
	}
}

func (w copywriter) tokens(n int64) string {
	return w.printer.Sprintf("%d", n)
}

func (w copywriter) mainMenu() *tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	if w.settings.WebAppURL != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🎮 Open Mini App", w.settings.WebAppURL),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📋 Tasks", "tasks")),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Daily Check-in", "checkin"),
			tgbotapi.NewInlineKeyboardButtonData("🏆 Leaderboard", "leaderboard"),
		),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("👥 Invite Friends", "invite")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("💰 My Balance", "balance")),
	)
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func (w copywriter) backMenu() *tgbotapi.InlineKeyboardMarkup {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏠 Back to Menu", "menu")),
	)
	return &markup
}

func (w copywriter) welcome(created bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Welcome to %s Airdrop Bot! ✨\n\n", w.settings.CampaignName)
	if created && w.settings.WelcomeBonus > 0 {
		fmt.Fprintf(&b, "🎁 You received a welcome bonus of %s tokens.\n\n", w.tokens(w.settings.WelcomeBonus))
	}
	b.WriteString("Complete tasks, invite friends, and earn tokens!\n")
	b.WriteString("Don't forget to connect your MultiversX wallet to receive rewards.")
	return b.String()
}

func (w copywriter) tasks(list []services.TaskStatus) (string, *tgbotapi.InlineKeyboardMarkup) {
	var b strings.Builder
	b.WriteString("📋 Available Tasks:\n\n")

	rows := [][]tgbotapi.InlineKeyboardButton{}
	for i, t := range list {
		mark := "⬜"
		if t.Completed {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%s %d. %s (+%s)", mark, i+1, t.Title, w.tokens(t.Reward))
		if t.URL != "" {
			fmt.Fprintf(&b, "\n    %s", t.URL)
		}
		b.WriteString("\n")
		if !t.Completed {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Done: "+t.Title, "task:"+t.Slug),
			))
		}
	}
	fmt.Fprintf(&b, "\n📅 Daily check-in: +%s tokens\n\n", w.tokens(w.settings.DailyCheckInReward))
	b.WriteString("Complete all tasks to maximize your rewards! 🎁")

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏠 Back to Menu", "menu")))
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return b.String(), &markup
}

func (w copywriter) invite(acct *models.Account) string {
	return fmt.Sprintf(
		"👥 Invite Friends & Earn Rewards!\n\n"+
			"Your referral code: `%s`\n"+
			"Share this link: https://t.me/%s?start=%s\n\n"+
			"Earn %s tokens for each friend who joins! Your friend gets %s tokens too. 🎁",
		acct.ReferralCode, tgbotapi.EscapeText(tgbotapi.ModeMarkdown, w.botUsername), acct.ReferralCode,
		w.tokens(w.settings.ReferralReward), w.tokens(w.settings.ReferralBonus),
	)
}

func (w copywriter) balance(p *services.AccountProfile) string {
	wallet := "Not connected"
	if p.WalletAddress != nil && *p.WalletAddress != "" {
		wallet = *p.WalletAddress
	}
	return fmt.Sprintf(
		"💰 Your %s Balance\n\n"+
			"Total Tokens: %s\n"+
			"Leaderboard Rank: #%d\n"+
			"Check-in Streak: %d days\n"+
			"Tasks Completed: %d\n"+
			"Friends Invited: %d\n"+
			"Wallet: %s\n\n"+
			"Connect your MultiversX wallet to receive rewards! 🔗",
		w.settings.CampaignName,
		w.tokens(p.TotalTokens), p.LeaderboardRank, p.CheckInStreak,
		p.TasksCompleted, p.TotalReferrals, wallet,
	)
}

func (w copywriter) leaderboard(top []services.LeaderboardEntry) string {
	if len(top) == 0 {
		return "🏆 The leaderboard is empty. Be the first!"
	}
	var b strings.Builder
	b.WriteString("🏆 Leaderboard\n\n")
	for _, e := range top {
		medal := ""
		switch e.Rank {
		case 1:
			medal = "🥇 "
		case 2:
			medal = "🥈 "
		case 3:
			medal = "🥉 "
		}
		fmt.Fprintf(&b, "%s%d. %s: %s\n", medal, e.Rank, e.Username, w.tokens(e.TotalTokens))
	}
	return b.String()
}

func (w copywriter) checkIn(res *services.CheckInResult) string {
	return fmt.Sprintf("📅 Checked in! +%s tokens\n🔥 Streak: %d days\n💰 Balance: %s",
		w.tokens(res.Reward), res.Streak, w.tokens(res.NewBalance))
}

func (w copywriter) taskDone(title string, res *services.TaskResult) string {
	return fmt.Sprintf("✅ %s completed! +%s tokens\n💰 Balance: %s",
		title, w.tokens(res.Reward), w.tokens(res.NewBalance))
}

func (w copywriter) referral(res *services.ReferralResult) string {
	return fmt.Sprintf("🤝 Referral applied! +%s tokens\n💰 Balance: %s",
		w.tokens(res.Bonus), w.tokens(res.NewBalance))
}

func (w copywriter) donate(d *models.Donation) string {
	return fmt.Sprintf("☕ %s\nAmount: %s EGLD", d.Message, d.Amount.String())
}

func (w copywriter) donationTarget() string {
	if w.settings.ProjectWallet == "" {
		return "☕ Donations are not open yet."
	}
	text := fmt.Sprintf("☕ Buy us a coffee!\n\nSend EGLD to:\n`%s`", w.settings.ProjectWallet)
	if w.settings.WalletTag != "" {
		text += fmt.Sprintf("\nTag: `%s`", w.settings.WalletTag)
	}
	return text + "\n\nThen tell us about it: /donate <amount> <tx_hash>"
}

func (w copywriter) help() string {
	return "🤖 Commands\n\n" +
		"/start - open the main menu\n" +
		"/tasks - list tasks and claim rewards\n" +
		"/checkin - daily check-in\n" +
		"/balance - your balance and streak\n" +
		"/invite - your referral link\n" +
		"/refer <code> - use a friend's referral code\n" +
		"/wallet <address> [tag] - connect your payout wallet\n" +
		"/leaderboard - top holders\n" +
		"/donate <amount> <tx_hash> - record a donation\n" +
		"/help - this message"
}

// failure turns a ledger error into a short user-facing message.
func (w copywriter) failure(err error) string {
	switch services.Kind(err) {
	case "invalid_referral_code":
		return "❌ That referral code does not exist."
	case "not_found":
		return "❌ You are not registered yet. Send /start first."
	case "invalid_task":
		return "❌ That task does not exist."
	case "already_completed":
		return "ℹ️ You already completed this task."
	case "already_referred":
		return "ℹ️ You already used a referral code."
	case "self_referral":
		return "❌ You cannot use your own referral code."
	case "already_checked_in":
		return "ℹ️ You already checked in today. Come back tomorrow!"
	case "storage_conflict":
		return "⏳ Busy right now, please try again."
	case "invalid_input":
		return "❌ " + strings.TrimPrefix(err.Error(), services.ErrInvalidInput.Error()+": ")
	}
	return "⚠️ Something went wrong. Please try again later."
}
