package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	s, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, int64(500), s.WelcomeBonus)
	assert.Equal(t, int64(100), s.DailyCheckInReward)
	assert.Equal(t, int64(5000), s.ReferralReward)
	assert.Equal(t, int64(2500), s.ReferralBonus)
	assert.Equal(t, DefaultDatabaseURL, s.DatabaseURL)
	assert.Equal(t, "BENI", s.ReferralCodePrefix)
	assert.Equal(t, "UTC", s.CheckInLocation.String())
	assert.Equal(t, 5, s.Tasks.Len())

	reward, ok := s.Tasks.Reward("Share a Meme")
	require.True(t, ok)
	assert.Equal(t, int64(1500), reward)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("WELCOME_BONUS", "750")
	t.Setenv("REFERRAL_BONUS", "0")
	t.Setenv("CAMPAIGN_NAME", "Ärger Drop")
	t.Setenv("CHECK_IN_TIMEZONE", "Europe/Berlin")

	s, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, int64(750), s.WelcomeBonus)
	assert.Equal(t, int64(0), s.ReferralBonus)
	assert.Equal(t, "ARGE", s.ReferralCodePrefix)
	assert.Equal(t, "Europe/Berlin", s.CheckInLocation.String())
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"WELCOME_BONUS", "lots"},
		{"REFERRAL_REWARD", "-1"},
		{"CHECK_IN_TIMEZONE", "Mars/Olympus"},
		{"BOT_RATE_LIMIT", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadTaskCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.toml")
	body := `
[[task]]
title  = "Join Telegram Group"
reward = 1000
url    = "https://t.me/benidrop"

[[task]]
title  = "Write a Thread"
reward = 2500
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("TASK_CATALOG_FILE", path)

	s, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, 2, s.Tasks.Len())

	def, ok := s.Tasks.BySlug("write-a-thread")
	require.True(t, ok)
	assert.Equal(t, "Write a Thread", def.Title)
	assert.Equal(t, int64(2500), def.Reward)

	_, ok = s.Tasks.Reward("Join Discord")
	assert.False(t, ok)
}

func TestNewTaskCatalogValidation(t *testing.T) {
	_, err := NewTaskCatalog(nil)
	assert.Error(t, err)

	_, err = NewTaskCatalog([]TaskDefinition{{Title: "A", Reward: 0}})
	assert.Error(t, err)

	_, err = NewTaskCatalog([]TaskDefinition{{Title: "A", Reward: 1}, {Title: "A", Reward: 2}})
	assert.Error(t, err)

	_, err = NewTaskCatalog([]TaskDefinition{{Title: "Join Discord", Reward: 1}, {Title: "join  discord", Reward: 2}})
	assert.Error(t, err, "titles that slug to the same callback id are rejected")
}

func TestReferralPrefix(t *testing.T) {
	assert.Equal(t, "BENI", ReferralPrefix("BeniDrop"))
	assert.Equal(t, "AB", ReferralPrefix("a-b 42"))
	assert.Equal(t, "REF", ReferralPrefix("1234"))
}
