package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/platebite/backend/internal/loyalty"
	"github.com/platebite/backend/internal/models"
)

// MemoryStore is the reference LedgerStore for tests and local development.
// Mutations for a given account are funneled through that account's mutex, so
// the single-writer discipline holds without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*memAccount // keyed by account id
	byUser   map[string]string      // user id -> account id
}

type memAccount struct {
	mu          sync.Mutex
	acct        models.LoyaltyAccount
	txs         []models.LoyaltyTransaction
	redemptions []models.LoyaltyRedemption
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*memAccount),
		byUser:   make(map[string]string),
	}
}

func (s *MemoryStore) byUserID(userID string) (*memAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUser[userID]
	if !ok {
		return nil, loyalty.ErrAccountNotFound
	}
	return s.accounts[id], nil
}

func (s *MemoryStore) byAccountID(id string) (*memAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ma, ok := s.accounts[id]
	if !ok {
		return nil, loyalty.ErrAccountNotFound
	}
	return ma, nil
}

func (s *MemoryStore) GetAccount(ctx context.Context, userID string) (*models.LoyaltyAccount, error) {
	ma, err := s.byUserID(userID)
	if err != nil {
		return nil, err
	}
	ma.mu.Lock()
	defer ma.mu.Unlock()
	acct := ma.acct
	return &acct, nil
}

func (s *MemoryStore) GetAccountByID(ctx context.Context, id string) (*models.LoyaltyAccount, error) {
	ma, err := s.byAccountID(id)
	if err != nil {
		return nil, err
	}
	ma.mu.Lock()
	defer ma.mu.Unlock()
	acct := ma.acct
	return &acct, nil
}

func (s *MemoryStore) CreateAccount(ctx context.Context, userID string) (*models.LoyaltyAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUser[userID]; exists {
		return nil, loyalty.ErrAccountExists
	}

	now := time.Now().UTC()
	acct := models.LoyaltyAccount{
		ID:            uuid.NewString(),
		UserID:        userID,
		PointsBalance: 0,
		Tier:          models.TierBronze,
		IsActive:      true,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.accounts[acct.ID] = &memAccount{acct: acct}
	s.byUser[userID] = acct.ID

	out := acct
	return &out, nil
}

func (s *MemoryStore) DeleteAccount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ma, ok := s.accounts[id]
	if !ok {
		return loyalty.ErrAccountNotFound
	}
	delete(s.byUser, ma.acct.UserID)
	delete(s.accounts, id)
	return nil
}

// Mutate serializes against the account's own mutex. On error every write made
// through the MutationTx is rolled back to the pre-mutation snapshot.
func (s *MemoryStore) Mutate(ctx context.Context, userID string, fn func(loyalty.MutationTx) error) error {
	ma, err := s.byUserID(userID)
	if err != nil {
		return err
	}

	ma.mu.Lock()
	defer ma.mu.Unlock()

	snapshot := ma.acct
	nTxs, nReds := len(ma.txs), len(ma.redemptions)

	acct := ma.acct
	if err := fn(&memMutation{ma: ma, acct: &acct}); err != nil {
		ma.acct = snapshot
		ma.txs = ma.txs[:nTxs]
		ma.redemptions = ma.redemptions[:nReds]
		return err
	}
	return nil
}

type memMutation struct {
	ma   *memAccount
	acct *models.LoyaltyAccount
}

func (m *memMutation) Account() *models.LoyaltyAccount {
	return m.acct
}

func (m *memMutation) ApplyDelta(delta, minBalance int64, policy loyalty.TierPolicy) (*models.LoyaltyAccount, error) {
	newBalance := m.ma.acct.PointsBalance + delta
	if newBalance < minBalance {
		return nil, loyalty.ErrConflict
	}

	m.ma.acct.PointsBalance = newBalance
	m.ma.acct.Tier = policy(newBalance)
	m.ma.acct.Version++
	m.ma.acct.UpdatedAt = time.Now().UTC()

	*m.acct = m.ma.acct
	return m.acct, nil
}

func (m *memMutation) AppendTransaction(changeAmount int64, reason, referenceID string, metadata models.Metadata) (*models.LoyaltyTransaction, error) {
	if metadata == nil {
		metadata = models.Metadata{}
	}
	entry := models.LoyaltyTransaction{
		ID:           uuid.NewString(),
		AccountID:    m.ma.acct.ID,
		ChangeAmount: changeAmount,
		Reason:       reason,
		ReferenceID:  referenceID,
		Metadata:     metadata,
		CreatedAt:    time.Now().UTC(),
	}
	m.ma.txs = append(m.ma.txs, entry)
	out := entry
	return &out, nil
}

func (m *memMutation) AppendRedemption(pointsUsed int64, rewardType string, rewardMetadata models.Metadata) (*models.LoyaltyRedemption, error) {
	if rewardMetadata == nil {
		rewardMetadata = models.Metadata{}
	}
	red := models.LoyaltyRedemption{
		ID:             uuid.NewString(),
		AccountID:      m.ma.acct.ID,
		PointsUsed:     pointsUsed,
		RewardType:     rewardType,
		RewardMetadata: rewardMetadata,
		CreatedAt:      time.Now().UTC(),
	}
	m.ma.redemptions = append(m.ma.redemptions, red)
	out := red
	return &out, nil
}

func (s *MemoryStore) ListTransactions(ctx context.Context, accountID string, limit int) ([]models.LoyaltyTransaction, error) {
	ma, err := s.byAccountID(accountID)
	if err != nil {
		return nil, err
	}
	ma.mu.Lock()
	defer ma.mu.Unlock()

	// Newest first. Entries append in order, so walk backwards.
	out := []models.LoyaltyTransaction{}
	for i := len(ma.txs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, ma.txs[i])
	}
	return out, nil
}

func (s *MemoryStore) ListRedemptions(ctx context.Context, accountID string, limit int) ([]models.LoyaltyRedemption, error) {
	ma, err := s.byAccountID(accountID)
	if err != nil {
		return nil, err
	}
	ma.mu.Lock()
	defer ma.mu.Unlock()

	out := []models.LoyaltyRedemption{}
	for i := len(ma.redemptions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, ma.redemptions[i])
	}
	return out, nil
}

func (s *MemoryStore) GetRedemption(ctx context.Context, id string) (*models.LoyaltyRedemption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ma := range s.accounts {
		ma.mu.Lock()
		for i := range ma.redemptions {
			if ma.redemptions[i].ID == id {
				out := ma.redemptions[i]
				ma.mu.Unlock()
				return &out, nil
			}
		}
		ma.mu.Unlock()
	}
	return nil, loyalty.ErrRedemptionNotFound
}

func (s *MemoryStore) SumEarned(ctx context.Context, accountID string) (int64, error) {
	ma, err := s.byAccountID(accountID)
	if err != nil {
		return 0, err
	}
	ma.mu.Lock()
	defer ma.mu.Unlock()

	var total int64
	for _, tx := range ma.txs {
		if tx.ChangeAmount > 0 {
			total += tx.ChangeAmount
		}
	}
	return total, nil
}

func (s *MemoryStore) SumRedeemed(ctx context.Context, accountID string) (int64, error) {
	ma, err := s.byAccountID(accountID)
	if err != nil {
		return 0, err
	}
	ma.mu.Lock()
	defer ma.mu.Unlock()

	var total int64
	for _, red := range ma.redemptions {
		total += red.PointsUsed
	}
	return total, nil
}

func (s *MemoryStore) ListAccounts(ctx context.Context, filter loyalty.AccountFilter) ([]models.LoyaltyAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.LoyaltyAccount{}
	for _, ma := range s.accounts {
		ma.mu.Lock()
		acct := ma.acct
		ma.mu.Unlock()

		if filter.ActiveOnly && !acct.IsActive {
			continue
		}
		if filter.Tier != nil && acct.Tier != *filter.Tier {
			continue
		}
		out = append(out, acct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// SetAccountActive flips the administrative isActive flag. The flag filters
// reads but never guards mutations.
func (s *MemoryStore) SetAccountActive(ctx context.Context, accountID string, active bool) error {
	ma, err := s.byAccountID(accountID)
	if err != nil {
		return err
	}
	ma.mu.Lock()
	defer ma.mu.Unlock()
	ma.acct.IsActive = active
	ma.acct.UpdatedAt = time.Now().UTC()
	return nil
}
