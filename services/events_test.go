package services

import (
	"testing"
	"time"

	"airdrop-rewards-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsRecentAndSince(t *testing.T) {
	f := newFixture(t)
	acct := f.register(t, "1")

	cursor, err := f.Events.Cursor(acct.ID)
	require.NoError(t, err)
	assert.True(t, cursor.At.Equal(testStart))
	assert.NotEmpty(t, cursor.ID)

	f.Clock.Advance(time.Minute)
	_, err = f.Tasks.CompleteTask("1", "Join Discord")
	require.NoError(t, err)
	f.Clock.Advance(time.Minute)
	_, err = f.CheckIns.CheckIn("1")
	require.NoError(t, err)

	recent, err := f.Events.Recent("1", 0)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, models.RewardCategoryCheckIn, recent[0].Category)
	assert.Equal(t, models.RewardCategoryWelcome, recent[2].Category)

	since, err := f.Events.Since(acct.ID, cursor, 0)
	require.NoError(t, err)
	require.Len(t, since, 2)
	assert.Equal(t, models.RewardCategoryTask, since[0].Category)
	assert.Equal(t, int64(1500), since[0].BalanceAfter)
	assert.Equal(t, models.RewardCategoryCheckIn, since[1].Category)
	assert.Equal(t, int64(1600), since[1].BalanceAfter)

	_, err = f.Events.Recent("ghost", 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEventsCursorWithoutEvents(t *testing.T) {
	f := newFixture(t)
	cursor, err := f.Events.Cursor("no-such-account")
	require.NoError(t, err)
	assert.Equal(t, EventCursor{}, cursor)
}

func TestEventsSincePagesThroughSharedTimestamp(t *testing.T) {
	f := newFixture(t)
	acct := f.register(t, "1")
	cursor, err := f.Events.Cursor(acct.ID)
	require.NoError(t, err)

	at := testStart.Add(time.Minute)
	want := map[string]bool{}
	for i := 0; i < 5; i++ {
		e := models.RewardEvent{
			AccountID:    acct.ID,
			Category:     models.RewardCategoryTask,
			Amount:       1,
			BalanceAfter: int64(501 + i),
			CreatedAt:    at,
		}
		require.NoError(t, f.DB.Create(&e).Error)
		want[e.ID] = true
	}

	got := map[string]bool{}
	for pages := 0; pages < 10; pages++ {
		page, err := f.Events.Since(acct.ID, cursor, 2)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		assert.LessOrEqual(t, len(page), 2)
		for _, e := range page {
			assert.False(t, got[e.ID], "event %s returned twice", e.ID)
			got[e.ID] = true
		}
		cursor = CursorAfter(page[len(page)-1])
	}
	assert.Equal(t, want, got)
}
