package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// LoyaltyTier is derived purely from the current points balance.
type LoyaltyTier string

const (
	TierBronze   LoyaltyTier = "Bronze"
	TierSilver   LoyaltyTier = "Silver"
	TierGold     LoyaltyTier = "Gold"
	TierPlatinum LoyaltyTier = "Platinum"
)

// ParseTier converts a tier label to a LoyaltyTier.
func ParseTier(s string) (LoyaltyTier, error) {
	switch LoyaltyTier(s) {
	case TierBronze, TierSilver, TierGold, TierPlatinum:
		return LoyaltyTier(s), nil
	}
	return "", fmt.Errorf("unknown loyalty tier %q", s)
}

// Metadata is an opaque key-value payload stored as JSONB.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src any) error {
	if src == nil {
		*m = Metadata{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Metadata", src)
	}
	if len(raw) == 0 {
		*m = Metadata{}
		return nil
	}
	return json.Unmarshal(raw, m)
}

// LoyaltyAccount holds a user's current points balance and tier. One per user.
type LoyaltyAccount struct {
	ID            string      `json:"id" db:"id"`
	UserID        string      `json:"userId" db:"user_id"`
	PointsBalance int64       `json:"pointsBalance" db:"points_balance"`
	Tier          LoyaltyTier `json:"tier" db:"tier"`
	IsActive      bool        `json:"isActive" db:"is_active"`
	Version       int         `json:"-" db:"version"` // for optimistic locking
	CreatedAt     time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time   `json:"updatedAt" db:"updated_at"`
}

// LoyaltyTransaction is an append-only ledger entry. Positive ChangeAmount is
// an accrual, negative is a spend. Never updated or deleted.
type LoyaltyTransaction struct {
	ID           string    `json:"id" db:"id"`
	AccountID    string    `json:"accountId" db:"account_id"`
	ChangeAmount int64     `json:"changeAmount" db:"change_amount"`
	Reason       string    `json:"reason" db:"reason"`
	ReferenceID  string    `json:"referenceId,omitempty" db:"reference_id"`
	Metadata     Metadata  `json:"metadata" db:"metadata"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// LoyaltyRedemption records a reward claim. Each redemption has a sibling
// negative LoyaltyTransaction created in the same atomic unit.
type LoyaltyRedemption struct {
	ID             string    `json:"id" db:"id"`
	AccountID      string    `json:"accountId" db:"account_id"`
	PointsUsed     int64     `json:"pointsUsed" db:"points_used"`
	RewardType     string    `json:"rewardType" db:"reward_type"`
	RewardMetadata Metadata  `json:"rewardMetadata" db:"reward_metadata"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
