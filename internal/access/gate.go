// Package access decides whether a user may invoke the paid analysis
// features: an active trial or premium subscription grants full access,
// everyone else gets a small daily quota of quick checks.
package access

import (
	"context"
	"fmt"
	"time"

	"calorigram/internal/models"
)

// Status classifies the subscription state reported by Check.
type Status string

const (
	StatusTrial          Status = "trial"
	StatusTrialExpired   Status = "trial_expired"
	StatusPremium        Status = "premium"
	StatusPremiumExpired Status = "premium_expired"
	StatusNone           Status = "none"
)

// Access is the gate verdict for one user at one instant.
type Access struct {
	Active    bool
	Status    Status
	ExpiresAt *time.Time
}

// Store is the slice of the user store the gate needs.
type Store interface {
	GetProfile(ctx context.Context, telegramID int64) (*models.UserProfile, error)
	SetSubscription(ctx context.Context, telegramID int64, tier string, expiresAt *time.Time, premium bool) error
	CountUsageToday(ctx context.Context, telegramID int64) (int, error)
}

// Gate computes subscription access and the remaining quick-check
// quota.
type Gate struct {
	store       Store
	trialPeriod time.Duration
	dailyQuota  int
	now         func() time.Time
}

func New(store Store, trialPeriod time.Duration, dailyQuota int) *Gate {
	return &Gate{
		store:       store,
		trialPeriod: trialPeriod,
		dailyQuota:  dailyQuota,
		now:         time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// Check returns the current access verdict for the user. A trial
// profile without a recorded expiry gets one assigned, trialPeriod
// after profile creation, persisted on first computation. The boundary
// is inclusive: access is active while now <= expiry.
func (g *Gate) Check(ctx context.Context, telegramID int64) (Access, error) {
	profile, err := g.store.GetProfile(ctx, telegramID)
	if err != nil {
		return Access{}, fmt.Errorf("get profile: %w", err)
	}
	if profile == nil {
		return Access{Status: StatusNone}, nil
	}

	now := g.now()

	switch {
	case profile.Tier == models.TierTrial:
		expiresAt := profile.ExpiresAt
		if expiresAt == nil {
			expiry := profile.CreatedAt.Add(g.trialPeriod)
			if err := g.store.SetSubscription(ctx, telegramID, models.TierTrial, &expiry, false); err != nil {
				return Access{}, fmt.Errorf("persist trial expiry: %w", err)
			}
			expiresAt = &expiry
		}
		if now.After(*expiresAt) {
			return Access{Status: StatusTrialExpired, ExpiresAt: expiresAt}, nil
		}
		return Access{Active: true, Status: StatusTrial, ExpiresAt: expiresAt}, nil

	case profile.Tier == models.TierPremium && profile.IsPremium:
		if profile.ExpiresAt == nil {
			return Access{Active: true, Status: StatusPremium}, nil
		}
		if now.After(*profile.ExpiresAt) {
			return Access{Status: StatusPremiumExpired, ExpiresAt: profile.ExpiresAt}, nil
		}
		return Access{Active: true, Status: StatusPremium, ExpiresAt: profile.ExpiresAt}, nil
	}

	return Access{Status: StatusNone, ExpiresAt: profile.ExpiresAt}, nil
}

// Remaining returns how many free quick checks the user has left today.
// Only meaningful when Check reported no active access.
//
// The count here and the usage insert after a completed check are not
// atomic: two concurrent requests from the same user can both see one
// slot left and both proceed. Accepted limitation, not worth a
// serializing transaction for a free-tier counter.
func (g *Gate) Remaining(ctx context.Context, telegramID int64) (int, error) {
	used, err := g.store.CountUsageToday(ctx, telegramID)
	if err != nil {
		return 0, fmt.Errorf("count usage: %w", err)
	}
	remaining := g.dailyQuota - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Quota returns the configured daily quick-check allowance.
func (g *Gate) Quota() int {
	return g.dailyQuota
}
