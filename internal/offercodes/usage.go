package offercodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db/models"
)

// UsagePolicy decides whether an offer code counts as used.
type UsagePolicy interface {
	Name() string
	IsUsed(ctx context.Context, code *models.OfferCode) (bool, error)
}

type redemptionCounter interface {
	CountByOfferCode(ctx context.Context, offerCodeID int64) (int64, error)
	CountByOfferCodeSince(ctx context.Context, offerCodeID int64, since time.Time) (int64, error)
}

// NewUsagePolicy resolves a policy by its configured name.
func NewUsagePolicy(name string, window time.Duration, audits redemptionCounter) (UsagePolicy, error) {
	if audits == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", config.UsagePolicyRedeemed:
		return NewRedeemedPolicy(audits), nil
	case config.UsagePolicyWindowed:
		if window <= 0 {
			return nil, fmt.Errorf("windowed usage policy requires a positive window")
		}
		return &WindowedPolicy{audits: audits, window: window, now: time.Now}, nil
	case config.UsagePolicyExhausted:
		return &ExhaustedPolicy{audits: audits}, nil
	default:
		return nil, fmt.Errorf("unknown offer code usage policy %q", name)
	}
}

// RedeemedPolicy treats a code as used once it has been redeemed at least once.
type RedeemedPolicy struct {
	audits redemptionCounter
}

func NewRedeemedPolicy(audits redemptionCounter) *RedeemedPolicy {
	return &RedeemedPolicy{audits: audits}
}

func (p *RedeemedPolicy) Name() string { return config.UsagePolicyRedeemed }

func (p *RedeemedPolicy) IsUsed(ctx context.Context, code *models.OfferCode) (bool, error) {
	if code == nil || code.ID == 0 {
		return false, nil
	}
	count, err := p.audits.CountByOfferCode(ctx, code.ID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// WindowedPolicy treats a code as used when it was redeemed within the window.
type WindowedPolicy struct {
	audits redemptionCounter
	window time.Duration
	now    func() time.Time
}

func (p *WindowedPolicy) Name() string { return config.UsagePolicyWindowed }

func (p *WindowedPolicy) IsUsed(ctx context.Context, code *models.OfferCode) (bool, error) {
	if code == nil || code.ID == 0 {
		return false, nil
	}
	count, err := p.audits.CountByOfferCodeSince(ctx, code.ID, p.now().Add(-p.window))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExhaustedPolicy treats a code as used once its redemptions reach MaxUses.
// Unlimited codes are never used up.
type ExhaustedPolicy struct {
	audits redemptionCounter
}

func (p *ExhaustedPolicy) Name() string { return config.UsagePolicyExhausted }

func (p *ExhaustedPolicy) IsUsed(ctx context.Context, code *models.OfferCode) (bool, error) {
	if code == nil || code.ID == 0 || code.IsUnlimitedUse() {
		return false, nil
	}
	count, err := p.audits.CountByOfferCode(ctx, code.ID)
	if err != nil {
		return false, err
	}
	return count >= int64(code.MaxUses), nil
}
