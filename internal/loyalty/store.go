package loyalty

import (
	"context"

	"github.com/platebite/backend/internal/models"
)

// AccountFilter narrows ListAccounts. Zero value means all accounts.
type AccountFilter struct {
	ActiveOnly bool
	Tier       *models.LoyaltyTier
}

// MutationTx is the unit of work for a single balance mutation. Everything
// called through it commits or rolls back as one atomic unit, and the account
// stays locked against concurrent mutations for the duration of the callback.
type MutationTx interface {
	// Account returns the account as read under the mutation lock.
	Account() *models.LoyaltyAccount

	// ApplyDelta adds delta to the balance (delta may be negative) and stores
	// the tier the policy computes for the new balance. Fails with ErrConflict
	// if the resulting balance would drop below minBalance or if another
	// mutation got there first.
	ApplyDelta(delta, minBalance int64, policy TierPolicy) (*models.LoyaltyAccount, error)

	// AppendTransaction writes one immutable ledger entry.
	AppendTransaction(changeAmount int64, reason, referenceID string, metadata models.Metadata) (*models.LoyaltyTransaction, error)

	// AppendRedemption writes one redemption record.
	AppendRedemption(pointsUsed int64, rewardType string, rewardMetadata models.Metadata) (*models.LoyaltyRedemption, error)
}

// LedgerStore is the persistence contract the loyalty engine consumes.
// Implementations: Postgres (production) and in-memory (tests, local dev).
type LedgerStore interface {
	GetAccount(ctx context.Context, userID string) (*models.LoyaltyAccount, error)
	GetAccountByID(ctx context.Context, id string) (*models.LoyaltyAccount, error)
	CreateAccount(ctx context.Context, userID string) (*models.LoyaltyAccount, error)

	// DeleteAccount removes an account and cascades its transactions and
	// redemptions. Administrative use only.
	DeleteAccount(ctx context.Context, id string) error

	// SetAccountActive flips the administrative isActive flag. The flag filters
	// reads but never guards mutations.
	SetAccountActive(ctx context.Context, id string, active bool) error

	// Mutate runs fn under the account's mutation lock. fn returning an error
	// rolls back every write made through the MutationTx.
	Mutate(ctx context.Context, userID string, fn func(MutationTx) error) error

	ListTransactions(ctx context.Context, accountID string, limit int) ([]models.LoyaltyTransaction, error)
	ListRedemptions(ctx context.Context, accountID string, limit int) ([]models.LoyaltyRedemption, error)
	GetRedemption(ctx context.Context, id string) (*models.LoyaltyRedemption, error)
	SumEarned(ctx context.Context, accountID string) (int64, error)
	SumRedeemed(ctx context.Context, accountID string) (int64, error)
	ListAccounts(ctx context.Context, filter AccountFilter) ([]models.LoyaltyAccount, error)
}
