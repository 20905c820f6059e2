package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/platebite/backend/internal/loyalty"
	"github.com/platebite/backend/internal/models"
)

// PostgresStore is the production LedgerStore. Every mutation runs inside a
// database transaction with the account row locked FOR UPDATE, plus an
// optimistic version check on write, so two concurrent mutations against the
// same account can never both commit from the same read.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const accountColumns = `id, user_id, points_balance, tier, is_active, version, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*models.LoyaltyAccount, error) {
	var acct models.LoyaltyAccount
	err := row.Scan(&acct.ID, &acct.UserID, &acct.PointsBalance, &acct.Tier,
		&acct.IsActive, &acct.Version, &acct.CreatedAt, &acct.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// storeErr maps driver-level failures onto the loyalty error taxonomy.
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", loyalty.ErrStoreUnavailable, err)
}

func (s *PostgresStore) GetAccount(ctx context.Context, userID string) (*models.LoyaltyAccount, error) {
	acct, err := scanAccount(s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM loyalty_accounts WHERE user_id = $1`, userID))
	if err == sql.ErrNoRows {
		return nil, loyalty.ErrAccountNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return acct, nil
}

func (s *PostgresStore) GetAccountByID(ctx context.Context, id string) (*models.LoyaltyAccount, error) {
	acct, err := scanAccount(s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM loyalty_accounts WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, loyalty.ErrAccountNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return acct, nil
}

func (s *PostgresStore) CreateAccount(ctx context.Context, userID string) (*models.LoyaltyAccount, error) {
	now := time.Now().UTC()
	acct := &models.LoyaltyAccount{
		ID:            uuid.NewString(),
		UserID:        userID,
		PointsBalance: 0,
		Tier:          models.TierBronze,
		IsActive:      true,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO loyalty_accounts (id, user_id, points_balance, tier, is_active, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		acct.ID, acct.UserID, acct.PointsBalance, acct.Tier, acct.IsActive, acct.Version, acct.CreatedAt, acct.UpdatedAt)
	if err != nil {
		// 23505: unique violation on user_id, another request created the
		// account in parallel.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, loyalty.ErrAccountExists
		}
		return nil, storeErr(err)
	}
	return acct, nil
}

func (s *PostgresStore) DeleteAccount(ctx context.Context, id string) error {
	// Transactions and redemptions cascade via FK.
	res, err := s.db.ExecContext(ctx, `DELETE FROM loyalty_accounts WHERE id = $1`, id)
	if err != nil {
		return storeErr(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr(err)
	}
	if affected == 0 {
		return loyalty.ErrAccountNotFound
	}
	return nil
}

func (s *PostgresStore) SetAccountActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE loyalty_accounts SET is_active = $1, updated_at = $2 WHERE id = $3`,
		active, time.Now().UTC(), id)
	if err != nil {
		return storeErr(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr(err)
	}
	if affected == 0 {
		return loyalty.ErrAccountNotFound
	}
	return nil
}

// Mutate locks the account row and runs fn inside one database transaction.
func (s *PostgresStore) Mutate(ctx context.Context, userID string, fn func(loyalty.MutationTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr(err)
	}
	defer tx.Rollback()

	acct, err := scanAccount(tx.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM loyalty_accounts WHERE user_id = $1 FOR UPDATE`, userID))
	if err == sql.ErrNoRows {
		return loyalty.ErrAccountNotFound
	}
	if err != nil {
		return storeErr(err)
	}

	if err := fn(&pgMutation{ctx: ctx, tx: tx, acct: acct}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storeErr(err)
	}
	return nil
}

type pgMutation struct {
	ctx  context.Context
	tx   *sql.Tx
	acct *models.LoyaltyAccount
}

func (m *pgMutation) Account() *models.LoyaltyAccount {
	return m.acct
}

func (m *pgMutation) ApplyDelta(delta, minBalance int64, policy loyalty.TierPolicy) (*models.LoyaltyAccount, error) {
	newBalance := m.acct.PointsBalance + delta
	if newBalance < minBalance {
		return nil, loyalty.ErrConflict
	}
	newTier := policy(newBalance)
	now := time.Now().UTC()

	res, err := m.tx.ExecContext(m.ctx, `
		UPDATE loyalty_accounts
		SET points_balance = $1, tier = $2, version = version + 1, updated_at = $3
		WHERE id = $4 AND version = $5 AND points_balance + $6 >= $7`,
		newBalance, newTier, now, m.acct.ID, m.acct.Version, delta, minBalance)
	if err != nil {
		return nil, storeErr(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, storeErr(err)
	}
	if affected == 0 {
		return nil, loyalty.ErrConflict
	}

	m.acct.PointsBalance = newBalance
	m.acct.Tier = newTier
	m.acct.Version++
	m.acct.UpdatedAt = now
	return m.acct, nil
}

func (m *pgMutation) AppendTransaction(changeAmount int64, reason, referenceID string, metadata models.Metadata) (*models.LoyaltyTransaction, error) {
	if metadata == nil {
		metadata = models.Metadata{}
	}
	entry := &models.LoyaltyTransaction{
		ID:           uuid.NewString(),
		AccountID:    m.acct.ID,
		ChangeAmount: changeAmount,
		Reason:       reason,
		ReferenceID:  referenceID,
		Metadata:     metadata,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := m.tx.ExecContext(m.ctx, `
		INSERT INTO loyalty_transactions (id, account_id, change_amount, reason, reference_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)`,
		entry.ID, entry.AccountID, entry.ChangeAmount, entry.Reason, entry.ReferenceID, entry.Metadata, entry.CreatedAt)
	if err != nil {
		return nil, storeErr(err)
	}
	return entry, nil
}

func (m *pgMutation) AppendRedemption(pointsUsed int64, rewardType string, rewardMetadata models.Metadata) (*models.LoyaltyRedemption, error) {
	if rewardMetadata == nil {
		rewardMetadata = models.Metadata{}
	}
	red := &models.LoyaltyRedemption{
		ID:             uuid.NewString(),
		AccountID:      m.acct.ID,
		PointsUsed:     pointsUsed,
		RewardType:     rewardType,
		RewardMetadata: rewardMetadata,
		CreatedAt:      time.Now().UTC(),
	}

	_, err := m.tx.ExecContext(m.ctx, `
		INSERT INTO loyalty_redemptions (id, account_id, points_used, reward_type, reward_metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		red.ID, red.AccountID, red.PointsUsed, red.RewardType, red.RewardMetadata, red.CreatedAt)
	if err != nil {
		return nil, storeErr(err)
	}
	return red, nil
}

func (s *PostgresStore) ListTransactions(ctx context.Context, accountID string, limit int) ([]models.LoyaltyTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, change_amount, reason, COALESCE(reference_id, ''), metadata, created_at
		FROM loyalty_transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	entries := []models.LoyaltyTransaction{}
	for rows.Next() {
		var e models.LoyaltyTransaction
		if err := rows.Scan(&e.ID, &e.AccountID, &e.ChangeAmount, &e.Reason, &e.ReferenceID, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, storeErr(err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return entries, nil
}

func (s *PostgresStore) ListRedemptions(ctx context.Context, accountID string, limit int) ([]models.LoyaltyRedemption, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, points_used, reward_type, reward_metadata, created_at
		FROM loyalty_redemptions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	reds := []models.LoyaltyRedemption{}
	for rows.Next() {
		var r models.LoyaltyRedemption
		if err := rows.Scan(&r.ID, &r.AccountID, &r.PointsUsed, &r.RewardType, &r.RewardMetadata, &r.CreatedAt); err != nil {
			return nil, storeErr(err)
		}
		reds = append(reds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return reds, nil
}

func (s *PostgresStore) GetRedemption(ctx context.Context, id string) (*models.LoyaltyRedemption, error) {
	var r models.LoyaltyRedemption
	err := s.db.QueryRowContext(ctx, `
		SELECT id, account_id, points_used, reward_type, reward_metadata, created_at
		FROM loyalty_redemptions WHERE id = $1`, id).
		Scan(&r.ID, &r.AccountID, &r.PointsUsed, &r.RewardType, &r.RewardMetadata, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, loyalty.ErrRedemptionNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return &r, nil
}

func (s *PostgresStore) SumEarned(ctx context.Context, accountID string) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(change_amount), 0)
		FROM loyalty_transactions
		WHERE account_id = $1 AND change_amount > 0`, accountID).Scan(&total)
	if err != nil {
		return 0, storeErr(err)
	}
	return total, nil
}

func (s *PostgresStore) SumRedeemed(ctx context.Context, accountID string) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(points_used), 0)
		FROM loyalty_redemptions
		WHERE account_id = $1`, accountID).Scan(&total)
	if err != nil {
		return 0, storeErr(err)
	}
	return total, nil
}

func (s *PostgresStore) ListAccounts(ctx context.Context, filter loyalty.AccountFilter) ([]models.LoyaltyAccount, error) {
	var conditions []string
	var args []any
	argIndex := 1

	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}
	if filter.Tier != nil {
		conditions = append(conditions, fmt.Sprintf("tier = $%d", argIndex))
		args = append(args, *filter.Tier)
		argIndex++
	}

	query := `SELECT ` + accountColumns + ` FROM loyalty_accounts`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	accounts := []models.LoyaltyAccount{}
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		accounts = append(accounts, *acct)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return accounts, nil
}
