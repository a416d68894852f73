package services

import (
	"fmt"
	"testing"
	"time"

	"airdrop-rewards-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopNOrdering(t *testing.T) {
	f := newFixture(t)
	f.register(t, "1")
	f.Clock.Advance(time.Second)
	f.register(t, "2")
	f.Clock.Advance(time.Second)
	f.register(t, "3")

	_, err := f.Tasks.CompleteTask("3", "Share a Meme")
	require.NoError(t, err)

	top, err := f.Leaderboard.TopN(10)
	require.NoError(t, err)
	require.Len(t, top, 3)

	assert.Equal(t, LeaderboardEntry{Username: "user3", TotalTokens: 2000, Rank: 1}, top[0])
	// equal balances: earlier joiner first
	assert.Equal(t, "user1", top[1].Username)
	assert.Equal(t, "user2", top[2].Username)
	assert.Equal(t, 3, top[2].Rank)
}

func TestTopNDisplacement(t *testing.T) {
	f := newFixture(t)
	for i := 1; i <= 11; i++ {
		id := fmt.Sprintf("%02d", i)
		f.register(t, id)
		f.Clock.Advance(time.Second)
		if i <= 10 {
			// 01..10 get distinct balances; 11 stays at the welcome bonus.
			require.NoError(t, f.DB.Model(&models.Account{}).
				Where("external_id = ?", id).
				Update("total_tokens", int64(5000-i*100)).Error)
		}
	}

	top, err := f.Leaderboard.TopN(10)
	require.NoError(t, err)
	require.Len(t, top, 10)
	assert.Equal(t, "user10", top[9].Username)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].TotalTokens, top[i].TotalTokens)
	}

	_, err = f.Tasks.CompleteTask("11", "Share a Meme") // 500 + 1500 = 2000
	require.NoError(t, err)
	_, err = f.Tasks.CompleteTask("11", "Join Discord") // 3000
	require.NoError(t, err)
	_, err = f.Tasks.CompleteTask("11", "Follow on Twitter") // 4000
	require.NoError(t, err)
	_, err = f.Tasks.CompleteTask("11", "Join Telegram Group") // 5000
	require.NoError(t, err)
	_, err = f.Tasks.CompleteTask("11", "Retweet Announcement") // 5500
	require.NoError(t, err)

	top, err = f.Leaderboard.TopN(10)
	require.NoError(t, err)
	require.Len(t, top, 10)

	names := make([]string, len(top))
	for i, e := range top {
		names[i] = e.Username
	}
	assert.Contains(t, names, "user11")
	assert.NotContains(t, names, "user10")
	assert.Equal(t, "user09", top[9].Username)
}

func TestTopNClampsSize(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 12; i++ {
		f.register(t, fmt.Sprint(i))
	}

	top, err := f.Leaderboard.TopN(0)
	require.NoError(t, err)
	assert.Len(t, top, DefaultLeaderboardSize)

	top, err = f.Leaderboard.TopN(-5)
	require.NoError(t, err)
	assert.Len(t, top, DefaultLeaderboardSize)

	top, err = f.Leaderboard.TopN(3)
	require.NoError(t, err)
	assert.Len(t, top, 3)

	top, err = f.Leaderboard.TopN(MaxLeaderboardSize + 50)
	require.NoError(t, err)
	assert.Len(t, top, 12)
}

func TestTopNAnonymous(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.Accounts.Register("1", nil)
	require.NoError(t, err)

	top, err := f.Leaderboard.TopN(1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, models.AnonymousName, top[0].Username)
}

func TestTopNEmpty(t *testing.T) {
	f := newFixture(t)
	top, err := f.Leaderboard.TopN(10)
	require.NoError(t, err)
	assert.Empty(t, top)
}
