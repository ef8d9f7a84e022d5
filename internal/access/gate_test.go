package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calorigram/internal/models"
)

type fakeStore struct {
	profile    *models.UserProfile
	usageToday int

	setTier    string
	setExpiry  *time.Time
	setPremium bool
	setCalls   int
}

func (f *fakeStore) GetProfile(ctx context.Context, telegramID int64) (*models.UserProfile, error) {
	return f.profile, nil
}

func (f *fakeStore) SetSubscription(ctx context.Context, telegramID int64, tier string, expiresAt *time.Time, premium bool) error {
	f.setTier = tier
	f.setExpiry = expiresAt
	f.setPremium = premium
	f.setCalls++
	return nil
}

func (f *fakeStore) CountUsageToday(ctx context.Context, telegramID int64) (int, error) {
	return f.usageToday, nil
}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newGate(store *fakeStore) *Gate {
	return New(store, 24*time.Hour, 3).WithClock(func() time.Time { return testNow })
}

func ptr(t time.Time) *time.Time { return &t }

func TestCheckNoProfile(t *testing.T) {
	gate := newGate(&fakeStore{})
	acc, err := gate.Check(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, acc.Active)
	assert.Equal(t, StatusNone, acc.Status)
}

func TestCheckTrialActive(t *testing.T) {
	store := &fakeStore{profile: &models.UserProfile{
		Tier:      models.TierTrial,
		ExpiresAt: ptr(testNow.Add(time.Hour)),
	}}
	acc, err := newGate(store).Check(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, acc.Active)
	assert.Equal(t, StatusTrial, acc.Status)
}

// The boundary is closed on the active side: expiry exactly equal to
// now still grants access.
func TestCheckTrialBoundary(t *testing.T) {
	store := &fakeStore{profile: &models.UserProfile{
		Tier:      models.TierTrial,
		ExpiresAt: ptr(testNow),
	}}
	acc, err := newGate(store).Check(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, acc.Active)
	assert.Equal(t, StatusTrial, acc.Status)

	store.profile.ExpiresAt = ptr(testNow.Add(-time.Second))
	acc, err = newGate(store).Check(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, acc.Active)
	assert.Equal(t, StatusTrialExpired, acc.Status)
}

// A trial profile without a recorded expiry gets one lazily persisted,
// one trial period after creation.
func TestCheckTrialLazyExpiry(t *testing.T) {
	created := testNow.Add(-2 * time.Hour)
	store := &fakeStore{profile: &models.UserProfile{
		Tier:      models.TierTrial,
		CreatedAt: created,
	}}
	acc, err := newGate(store).Check(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, acc.Active)
	assert.Equal(t, 1, store.setCalls)
	assert.Equal(t, models.TierTrial, store.setTier)
	require.NotNil(t, store.setExpiry)
	assert.Equal(t, created.Add(24*time.Hour), *store.setExpiry)
	require.NotNil(t, acc.ExpiresAt)
	assert.Equal(t, created.Add(24*time.Hour), *acc.ExpiresAt)
}

func TestCheckPremium(t *testing.T) {
	tests := []struct {
		name    string
		profile models.UserProfile
		active  bool
		status  Status
	}{
		{
			"unlimited premium",
			models.UserProfile{Tier: models.TierPremium, IsPremium: true},
			true, StatusPremium,
		},
		{
			"premium with future expiry",
			models.UserProfile{Tier: models.TierPremium, IsPremium: true, ExpiresAt: ptr(testNow.Add(time.Hour))},
			true, StatusPremium,
		},
		{
			"premium expired",
			models.UserProfile{Tier: models.TierPremium, IsPremium: true, ExpiresAt: ptr(testNow.Add(-time.Hour))},
			false, StatusPremiumExpired,
		},
		{
			"premium tier without flag",
			models.UserProfile{Tier: models.TierPremium, IsPremium: false},
			false, StatusNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := tt.profile
			store := &fakeStore{profile: &profile}
			acc, err := newGate(store).Check(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, tt.active, acc.Active)
			assert.Equal(t, tt.status, acc.Status)
		})
	}
}

func TestRemaining(t *testing.T) {
	tests := []struct {
		used int
		want int
	}{
		{0, 3},
		{2, 1},
		{3, 0},
		{5, 0},
	}

	for _, tt := range tests {
		store := &fakeStore{usageToday: tt.used}
		got, err := newGate(store).Remaining(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "used=%d", tt.used)
	}
}
