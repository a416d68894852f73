package services

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"airdrop-rewards-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestApplyReferral(t *testing.T) {
	f := newFixture(t)
	referrer := f.register(t, "1")
	f.register(t, "2")

	res, err := f.Referrals.ApplyReferral("2", referrer.ReferralCode)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), res.Bonus)
	assert.Equal(t, int64(3000), res.NewBalance)
	assert.Equal(t, "1", res.ReferrerID)

	assert.Equal(t, int64(5500), f.balance(t, "1"))
	assert.Equal(t, int64(3000), f.balance(t, "2"))
	assert.Equal(t, f.balance(t, "1"), f.eventSum(t, "1"))
	assert.Equal(t, f.balance(t, "2"), f.eventSum(t, "2"))

	acct, err := f.Accounts.Get("2")
	require.NoError(t, err)
	require.NotNil(t, acct.ReferredByID)
	assert.Equal(t, referrer.ID, *acct.ReferredByID)

	var events []models.RewardEvent
	require.NoError(t, f.DB.Where("category IN ?", []string{"referral_reward", "referral_bonus"}).
		Order("category").Find(&events).Error)
	require.Len(t, events, 2)
	assert.Equal(t, models.RewardCategoryReferralBonus, events[0].Category)
	assert.Equal(t, "1", events[0].Reference)
	assert.Equal(t, models.RewardCategoryReferralReward, events[1].Category)
	assert.Equal(t, "2", events[1].Reference)
}

func TestApplyReferralCaseInsensitiveCode(t *testing.T) {
	f := newFixture(t)
	referrer := f.register(t, "1")
	f.register(t, "2")

	_, err := f.Referrals.ApplyReferral("2", "  "+strings.ToLower(referrer.ReferralCode)+" ")
	require.NoError(t, err)
}

func TestApplyReferralSelf(t *testing.T) {
	f := newFixture(t)
	acct := f.register(t, "1")

	_, err := f.Referrals.ApplyReferral("1", acct.ReferralCode)
	assert.ErrorIs(t, err, ErrSelfReferral)
	assert.Equal(t, int64(500), f.balance(t, "1"))

	stored, err := f.Accounts.Get("1")
	require.NoError(t, err)
	assert.Nil(t, stored.ReferredByID)
}

func TestApplyReferralOnlyOnce(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "1")
	b := f.register(t, "2")
	f.register(t, "3")

	_, err := f.Referrals.ApplyReferral("3", a.ReferralCode)
	require.NoError(t, err)

	balances := map[string]int64{"1": f.balance(t, "1"), "2": f.balance(t, "2"), "3": f.balance(t, "3")}

	_, err = f.Referrals.ApplyReferral("3", b.ReferralCode)
	assert.ErrorIs(t, err, ErrAlreadyReferred)
	_, err = f.Referrals.ApplyReferral("3", a.ReferralCode)
	assert.ErrorIs(t, err, ErrAlreadyReferred)

	for id, want := range balances {
		assert.Equal(t, want, f.balance(t, id), id)
	}
	stored, err := f.Accounts.Get("3")
	require.NoError(t, err)
	assert.Equal(t, a.ID, *stored.ReferredByID)
}

func TestApplyReferralAlreadyReferredBeatsSelf(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "1")
	b := f.register(t, "2")
	_, err := f.Referrals.ApplyReferral("2", a.ReferralCode)
	require.NoError(t, err)

	_, err = f.Referrals.ApplyReferral("2", b.ReferralCode)
	assert.ErrorIs(t, err, ErrAlreadyReferred)
}

func TestApplyReferralUnknownCode(t *testing.T) {
	f := newFixture(t)
	f.register(t, "1")

	_, err := f.Referrals.ApplyReferral("1", "BENI000000000000")
	assert.ErrorIs(t, err, ErrInvalidReferralCode)
	assert.Equal(t, "invalid_referral_code", Kind(err))
	assert.Equal(t, int64(500), f.balance(t, "1"))
}

func TestApplyReferralUnknownAccount(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "1")

	_, err := f.Referrals.ApplyReferral("ghost", a.ReferralCode)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "not_found", Kind(err))
	assert.Equal(t, int64(500), f.balance(t, "1"))
}

func TestMutualReferralIsAllowedOnce(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "1")
	b := f.register(t, "2")

	_, err := f.Referrals.ApplyReferral("1", b.ReferralCode)
	require.NoError(t, err)
	_, err = f.Referrals.ApplyReferral("2", a.ReferralCode)
	require.NoError(t, err)

	assert.Equal(t, int64(500+2500+5000), f.balance(t, "1"))
	assert.Equal(t, int64(500+5000+2500), f.balance(t, "2"))
}

func TestApplyReferralConcurrent(t *testing.T) {
	f := newFixture(t)
	first := f.register(t, "1")
	second := f.register(t, "2")
	f.register(t, "3")
	codes := []string{first.ReferralCode, second.ReferralCode}

	const n = 10
	errs := make([]error, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.Referrals.ApplyReferral("3", codes[i%2])
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrAlreadyReferred):
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)

	assert.Equal(t, int64(3000), f.balance(t, "3"))
	// Exactly one referrer was paid.
	assert.ElementsMatch(t, []int64{500, 5500}, []int64{f.balance(t, "1"), f.balance(t, "2")})
	for _, id := range []string{"1", "2", "3"} {
		assert.Equal(t, f.balance(t, id), f.eventSum(t, id), id)
	}
}

func TestApplyReferralRollsBackOnFailedCredit(t *testing.T) {
	f := newFixture(t)
	referrer := f.register(t, "1")
	f.register(t, "2")

	const hook = "fail_referral_bonus"
	require.NoError(t, f.DB.Callback().Create().Before("gorm:create").Register(hook, func(db *gorm.DB) {
		if e, ok := db.Statement.Dest.(*models.RewardEvent); ok && e.Category == models.RewardCategoryReferralBonus {
			db.AddError(errors.New("disk full"))
		}
	}))

	_, err := f.Referrals.ApplyReferral("2", referrer.ReferralCode)
	require.Error(t, err)
	assert.Equal(t, "internal", Kind(err))

	acct, err := f.Accounts.Get("2")
	require.NoError(t, err)
	assert.Nil(t, acct.ReferredByID)
	assert.Equal(t, int64(500), f.balance(t, "1"))
	assert.Equal(t, int64(500), f.balance(t, "2"))

	var count int64
	require.NoError(t, f.DB.Model(&models.RewardEvent{}).
		Where("category IN ?", []string{"referral_reward", "referral_bonus"}).
		Count(&count).Error)
	assert.Zero(t, count)

	// Nothing was half-applied, so the referral still goes through afterwards.
	require.NoError(t, f.DB.Callback().Create().Remove(hook))
	res, err := f.Referrals.ApplyReferral("2", referrer.ReferralCode)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), res.NewBalance)
	assert.Equal(t, int64(5500), f.balance(t, "1"))
}
