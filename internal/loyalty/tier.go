package loyalty

import "github.com/platebite/backend/internal/models"

// TierPolicy maps a points balance to a tier. Pure, no I/O. Evaluated after
// every balance change inside the same mutation.
type TierPolicy func(balance int64) models.LoyaltyTier

// Tier thresholds, inclusive lower bounds.
const (
	SilverThreshold   int64 = 100
	GoldThreshold     int64 = 500
	PlatinumThreshold int64 = 1000
)

// TierFor is the default tier policy.
func TierFor(balance int64) models.LoyaltyTier {
	switch {
	case balance >= PlatinumThreshold:
		return models.TierPlatinum
	case balance >= GoldThreshold:
		return models.TierGold
	case balance >= SilverThreshold:
		return models.TierSilver
	default:
		return models.TierBronze
	}
}

// NewTierPolicy builds a policy with custom thresholds, highest first.
func NewTierPolicy(silver, gold, platinum int64) TierPolicy {
	return func(balance int64) models.LoyaltyTier {
		switch {
		case balance >= platinum:
			return models.TierPlatinum
		case balance >= gold:
			return models.TierGold
		case balance >= silver:
			return models.TierSilver
		default:
			return models.TierBronze
		}
	}
}
