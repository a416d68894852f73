// Package config builds the immutable Settings shared by the API, the bot and
// the workers. It is constructed once at process start and passed explicitly.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gosimple/unidecode"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DefaultDatabaseURL  = "sqlite:///benidrop.db"
	DefaultCampaignName = "BeniDrop"
)

type SocialLinks struct {
	TelegramGroup   string `json:"telegram_group"`
	TelegramChannel string `json:"telegram_channel"`
	TwitterProfile  string `json:"twitter_profile"`
	DiscordServer   string `json:"discord_server"`
}

// R2 holds Cloudflare R2 credentials. An empty AccountID disables the R2 sink.
type R2 struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
}

func (r R2) Enabled() bool {
	return r.AccountID != "" && r.Bucket != ""
}

// Settings is the process-wide configuration. Treat it as read-only.
type Settings struct {
	Env            string
	LogLevel       string
	Port           string
	AllowedOrigins string
	DatabaseURL    string

	CampaignName       string
	ReferralCodePrefix string

	WelcomeBonus       int64
	DailyCheckInReward int64
	ReferralReward     int64 // credited to the referrer
	ReferralBonus      int64 // credited to the referred account
	Tasks              TaskCatalog
	CheckInLocation    *time.Location

	BotToken      string
	WebAppURL     string
	ProjectWallet string
	WalletTag     string
	Links         SocialLinks
	BotRateLimit  float64
	BotRateBurst  int

	StreakSweepCron string
	SnapshotCron    string
	SnapshotDir     string
	R2              R2
}

func (s *Settings) IsDevelopment() bool {
	return strings.EqualFold(s.Env, "development")
}

// Load reads an optional env file and then the process environment.
// Variables already present in the environment win over the file.
func Load(envFile string) (*Settings, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Debug().Str("file", envFile).Msg("⚠️  No env file found, reading environment variables directly")
	}
	return FromEnv()
}

// FromEnv builds Settings from the current environment only.
func FromEnv() (*Settings, error) {
	s := &Settings{
		Env:            getenv("ENV", "production"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		Port:           getenv("PORT", "8000"),
		AllowedOrigins: getenv("ALLOWED_ORIGINS", "*"),
		DatabaseURL:    getenv("DATABASE_URL", DefaultDatabaseURL),
		CampaignName:   getenv("CAMPAIGN_NAME", DefaultCampaignName),

		BotToken:      getenv("BOT_TOKEN", ""),
		WebAppURL:     getenv("WEBAPP_URL", "https://t.me/BeniDropBot"),
		ProjectWallet: getenv("PROJECT_WALLET", ""),
		WalletTag:     getenv("WALLET_TAG", ""),
		Links: SocialLinks{
			TelegramGroup:   getenv("TELEGRAM_GROUP", "https://t.me/benidrop"),
			TelegramChannel: getenv("TELEGRAM_CHANNEL", "https://t.me/benidrop_announcements"),
			TwitterProfile:  getenv("TWITTER_PROFILE", "https://twitter.com/benidrop"),
			DiscordServer:   getenv("DISCORD_SERVER", "https://discord.gg/benidrop"),
		},

		StreakSweepCron: getenv("STREAK_SWEEP_CRON", "5 0 * * *"),
		SnapshotCron:    getenv("SNAPSHOT_CRON", ""),
		SnapshotDir:     getenv("SNAPSHOT_DIR", "snapshots"),
		R2: R2{
			AccountID:       getenv("CLOUDFLARE_ACCOUNT_ID", ""),
			AccessKeyID:     getenv("R2_ACCESS_KEY_ID", ""),
			AccessKeySecret: getenv("R2_ACCESS_KEY_SECRET", ""),
			Bucket:          getenv("R2_BUCKET_NAME", ""),
			CDNBaseURL:      getenv("CDN_BASE_URL", ""),
		},
	}

	s.ReferralCodePrefix = strings.ToUpper(getenv("REFERRAL_CODE_PREFIX", ReferralPrefix(s.CampaignName)))

	var err error
	if s.WelcomeBonus, err = intEnv("WELCOME_BONUS", 500); err != nil {
		return nil, err
	}
	if s.DailyCheckInReward, err = intEnv("DAILY_CHECK_IN_REWARD", 100); err != nil {
		return nil, err
	}
	if s.ReferralReward, err = intEnv("REFERRAL_REWARD", 5000); err != nil {
		return nil, err
	}
	if s.ReferralBonus, err = intEnv("REFERRAL_BONUS", 2500); err != nil {
		return nil, err
	}

	burst, err := intEnv("BOT_RATE_BURST", 5)
	if err != nil {
		return nil, err
	}
	s.BotRateBurst = int(burst)
	rateStr := getenv("BOT_RATE_LIMIT", "1")
	if s.BotRateLimit, err = strconv.ParseFloat(rateStr, 64); err != nil || s.BotRateLimit <= 0 {
		return nil, fmt.Errorf("BOT_RATE_LIMIT must be a positive number, got %q", rateStr)
	}

	tz := getenv("CHECK_IN_TIMEZONE", "UTC")
	if s.CheckInLocation, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("CHECK_IN_TIMEZONE %q: %w", tz, err)
	}

	if path := getenv("TASK_CATALOG_FILE", ""); path != "" {
		s.Tasks, err = LoadTaskCatalogFile(path)
	} else {
		s.Tasks, err = NewTaskCatalog(defaultTasks(s.Links))
	}
	if err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks invariants that Load cannot express through parsing alone.
func (s *Settings) Validate() error {
	rewards := map[string]int64{
		"WELCOME_BONUS":         s.WelcomeBonus,
		"DAILY_CHECK_IN_REWARD": s.DailyCheckInReward,
		"REFERRAL_REWARD":       s.ReferralReward,
		"REFERRAL_BONUS":        s.ReferralBonus,
	}
	for name, v := range rewards {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}
	if s.Tasks.Len() == 0 {
		return fmt.Errorf("task catalog is empty")
	}
	if s.CheckInLocation == nil {
		return fmt.Errorf("check-in location is not set")
	}
	if s.ReferralCodePrefix == "" {
		return fmt.Errorf("referral code prefix is empty")
	}
	return nil
}

// ReferralPrefix turns a campaign name into a short upper-case ASCII prefix,
// e.g. "BeniDrop" -> "BENI".
func ReferralPrefix(campaign string) string {
	var b strings.Builder
	for _, r := range unidecode.Unidecode(campaign) {
		if r <= unicode.MaxASCII && unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
			if b.Len() == 4 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "REF"
	}
	return b.String()
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int64) (int64, error) {
	v := getenv(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}
