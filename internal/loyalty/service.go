package loyalty

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/platebite/backend/internal/models"
)

// maxMutationAttempts bounds the internal retry on ErrConflict.
const maxMutationAttempts = 3

// DefaultRecentLimit caps the recent transactions/redemptions returned by
// GetAccountDetails.
const DefaultRecentLimit = 10

// AccountService orchestrates balance mutations and read-side aggregation over
// a LedgerStore. It holds no mutable state of its own; all synchronization
// happens at the store boundary.
type AccountService struct {
	store       LedgerStore
	policy      TierPolicy
	recentLimit int
}

func NewAccountService(store LedgerStore, policy TierPolicy, recentLimit int) *AccountService {
	if policy == nil {
		policy = TierFor
	}
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &AccountService{
		store:       store,
		policy:      policy,
		recentLimit: recentLimit,
	}
}

// AccountDetails is the read-side aggregate for a single account.
type AccountDetails struct {
	Account            *models.LoyaltyAccount      `json:"account"`
	RecentTransactions []models.LoyaltyTransaction `json:"recentTransactions"`
	RecentRedemptions  []models.LoyaltyRedemption  `json:"recentRedemptions"`
	TotalEarned        int64                       `json:"totalEarned"`
	TotalRedeemed      int64                       `json:"totalRedeemed"`
}

// CreateAccount creates the single loyalty account for a user. Fails with
// ErrAccountExists if one is already present.
func (s *AccountService) CreateAccount(ctx context.Context, userID string) (*models.LoyaltyAccount, error) {
	acct, err := s.store.CreateAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	log.Printf("[LOYALTY] Created account %s for user %s", acct.ID, userID)
	return acct, nil
}

// AddPoints accrues points on the user's account: balance += points, tier
// recompute, and one positive ledger entry, all in one atomic unit.
func (s *AccountService) AddPoints(ctx context.Context, userID string, points int64, reason, referenceID string, metadata models.Metadata) (*models.LoyaltyAccount, error) {
	if points <= 0 {
		return nil, ErrNonPositivePoints
	}

	var updated *models.LoyaltyAccount
	err := s.mutate(ctx, userID, func(tx MutationTx) error {
		before := tx.Account().Tier

		acct, err := tx.ApplyDelta(points, 0, s.policy)
		if err != nil {
			return err
		}
		if _, err := tx.AppendTransaction(points, reason, referenceID, metadata); err != nil {
			return err
		}

		if acct.Tier != before {
			log.Printf("[LOYALTY] Account %s tier %s -> %s (balance %d)", acct.ID, before, acct.Tier, acct.PointsBalance)
		}
		updated = acct
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[LOYALTY] Added %d points to user %s (reason: %s)", points, userID, reason)
	return updated, nil
}

// Redeem spends points for a reward: checks sufficiency and deducts against
// the same locked read, writes the negative ledger entry and the redemption
// record together. The balance never goes negative.
func (s *AccountService) Redeem(ctx context.Context, userID string, points int64, rewardType string, rewardMetadata models.Metadata) (*models.LoyaltyRedemption, error) {
	if points <= 0 {
		return nil, ErrNonPositivePoints
	}
	if rewardMetadata == nil {
		rewardMetadata = models.Metadata{}
	}

	var redemption *models.LoyaltyRedemption
	err := s.mutate(ctx, userID, func(tx MutationTx) error {
		acct := tx.Account()
		if acct.PointsBalance < points {
			return &InsufficientPointsError{Available: acct.PointsBalance, Required: points}
		}
		before := acct.Tier

		updated, err := tx.ApplyDelta(-points, 0, s.policy)
		if err != nil {
			return err
		}

		reason := fmt.Sprintf("Redemption: %s", rewardType)
		if _, err := tx.AppendTransaction(-points, reason, "", nil); err != nil {
			return err
		}

		red, err := tx.AppendRedemption(points, rewardType, rewardMetadata)
		if err != nil {
			return err
		}

		if updated.Tier != before {
			log.Printf("[LOYALTY] Account %s tier %s -> %s (balance %d)", updated.ID, before, updated.Tier, updated.PointsBalance)
		}
		redemption = red
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[LOYALTY] Redeemed %d points for user %s - %s", points, userID, rewardType)
	return redemption, nil
}

// mutate runs one atomic mutation with a bounded retry on ErrConflict. Every
// other error surfaces unchanged.
func (s *AccountService) mutate(ctx context.Context, userID string, fn func(MutationTx) error) error {
	var err error
	for attempt := 1; attempt <= maxMutationAttempts; attempt++ {
		err = s.store.Mutate(ctx, userID, fn)
		if !errors.Is(err, ErrConflict) {
			return err
		}
		log.Printf("[LOYALTY] Mutation conflict for user %s, attempt %d/%d", userID, attempt, maxMutationAttempts)
	}
	return fmt.Errorf("mutation retries exhausted for user %s: %w", userID, err)
}

// GetAccount returns the user's account.
func (s *AccountService) GetAccount(ctx context.Context, userID string) (*models.LoyaltyAccount, error) {
	return s.store.GetAccount(ctx, userID)
}

// GetAccountByID returns an account by its own id.
func (s *AccountService) GetAccountByID(ctx context.Context, id string) (*models.LoyaltyAccount, error) {
	return s.store.GetAccountByID(ctx, id)
}

// GetBalance returns the current points balance.
func (s *AccountService) GetBalance(ctx context.Context, userID string) (int64, error) {
	acct, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return 0, err
	}
	return acct.PointsBalance, nil
}

// GetAccountDetails aggregates the account, its recent history, and lifetime
// earned/redeemed totals. TotalRedeemed comes from the redemption records, not
// the generic ledger, so the two stay independently auditable.
func (s *AccountService) GetAccountDetails(ctx context.Context, userID string) (*AccountDetails, error) {
	acct, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	txs, err := s.store.ListTransactions(ctx, acct.ID, s.recentLimit)
	if err != nil {
		return nil, err
	}
	reds, err := s.store.ListRedemptions(ctx, acct.ID, s.recentLimit)
	if err != nil {
		return nil, err
	}
	earned, err := s.store.SumEarned(ctx, acct.ID)
	if err != nil {
		return nil, err
	}
	redeemed, err := s.store.SumRedeemed(ctx, acct.ID)
	if err != nil {
		return nil, err
	}

	return &AccountDetails{
		Account:            acct,
		RecentTransactions: txs,
		RecentRedemptions:  reds,
		TotalEarned:        earned,
		TotalRedeemed:      redeemed,
	}, nil
}

// ListByTier returns active accounts in the given tier.
func (s *AccountService) ListByTier(ctx context.Context, tier models.LoyaltyTier) ([]models.LoyaltyAccount, error) {
	return s.store.ListAccounts(ctx, AccountFilter{ActiveOnly: true, Tier: &tier})
}

// ListActive returns all active accounts.
func (s *AccountService) ListActive(ctx context.Context) ([]models.LoyaltyAccount, error) {
	return s.store.ListAccounts(ctx, AccountFilter{ActiveOnly: true})
}

// ListAll returns every account regardless of state.
func (s *AccountService) ListAll(ctx context.Context) ([]models.LoyaltyAccount, error) {
	return s.store.ListAccounts(ctx, AccountFilter{})
}

// GetRedemption returns a single redemption record.
func (s *AccountService) GetRedemption(ctx context.Context, id string) (*models.LoyaltyRedemption, error) {
	return s.store.GetRedemption(ctx, id)
}

// SetActive activates or deactivates an account. Deactivation only hides the
// account from the active listings; balance mutations stay allowed so paid
// orders never silently drop their points.
func (s *AccountService) SetActive(ctx context.Context, id string, active bool) (*models.LoyaltyAccount, error) {
	if err := s.store.SetAccountActive(ctx, id, active); err != nil {
		return nil, err
	}
	log.Printf("[LOYALTY] Account %s active=%t", id, active)
	return s.store.GetAccountByID(ctx, id)
}

// DeleteAccount removes an account and its history. Administrative only.
func (s *AccountService) DeleteAccount(ctx context.Context, id string) error {
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		return err
	}
	log.Printf("[LOYALTY] Deleted account %s", id)
	return nil
}
