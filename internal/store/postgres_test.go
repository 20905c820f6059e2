package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/platebite/backend/internal/loyalty"
	"github.com/platebite/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountRowColumns = []string{"id", "user_id", "points_balance", "tier", "is_active", "version", "created_at", "updated_at"}

func accountRow(id, userID string, balance int64, tier models.LoyaltyTier, version int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(accountRowColumns).
		AddRow(id, userID, balance, tier, true, version, now, now)
}

func TestPostgresStore_GetAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := NewPostgresStore(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM loyalty_accounts WHERE user_id = \\$1").
			WithArgs("user-1").
			WillReturnRows(accountRow("acct-1", "user-1", 250, models.TierSilver, 3))

		acct, err := st.GetAccount(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "acct-1", acct.ID)
		assert.Equal(t, int64(250), acct.PointsBalance)
		assert.Equal(t, models.TierSilver, acct.Tier)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM loyalty_accounts WHERE user_id = \\$1").
			WithArgs("nobody").
			WillReturnRows(sqlmock.NewRows(accountRowColumns))

		_, err := st.GetAccount(ctx, "nobody")
		assert.ErrorIs(t, err, loyalty.ErrAccountNotFound)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM loyalty_accounts WHERE user_id = \\$1").
			WithArgs("user-1").
			WillReturnError(errors.New("connection refused"))

		_, err := st.GetAccount(ctx, "user-1")
		assert.ErrorIs(t, err, loyalty.ErrStoreUnavailable)
	})
}

func TestPostgresStore_CreateAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := NewPostgresStore(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO loyalty_accounts").
			WithArgs(sqlmock.AnyArg(), "user-1", int64(0), models.TierBronze, true, 1, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		acct, err := st.CreateAccount(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "user-1", acct.UserID)
		assert.Equal(t, models.TierBronze, acct.Tier)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate user", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO loyalty_accounts").
			WillReturnError(&pq.Error{Code: "23505"})

		_, err := st.CreateAccount(ctx, "user-1")
		assert.ErrorIs(t, err, loyalty.ErrAccountExists)
	})
}

func TestPostgresStore_Mutate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := NewPostgresStore(db)
	ctx := context.Background()

	t.Run("accrual commits account update and ledger insert", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM loyalty_accounts WHERE user_id = \\$1 FOR UPDATE").
			WithArgs("user-1").
			WillReturnRows(accountRow("acct-1", "user-1", 90, models.TierBronze, 2))
		mock.ExpectExec("UPDATE loyalty_accounts SET points_balance = \\$1, tier = \\$2, version = version \\+ 1").
			WithArgs(int64(100), models.TierSilver, sqlmock.AnyArg(), "acct-1", 2, int64(10), int64(0)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO loyalty_transactions").
			WithArgs(sqlmock.AnyArg(), "acct-1", int64(10), "Order completed", "order-9", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := st.Mutate(ctx, "user-1", func(tx loyalty.MutationTx) error {
			acct, err := tx.ApplyDelta(10, 0, loyalty.TierFor)
			if err != nil {
				return err
			}
			assert.Equal(t, int64(100), acct.PointsBalance)
			assert.Equal(t, models.TierSilver, acct.Tier)
			_, err = tx.AppendTransaction(10, "Order completed", "order-9", nil)
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("version conflict surfaces ErrConflict", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM loyalty_accounts WHERE user_id = \\$1 FOR UPDATE").
			WithArgs("user-1").
			WillReturnRows(accountRow("acct-1", "user-1", 90, models.TierBronze, 2))
		// Another mutation bumped the version between read and write.
		mock.ExpectExec("UPDATE loyalty_accounts SET points_balance = \\$1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := st.Mutate(ctx, "user-1", func(tx loyalty.MutationTx) error {
			_, err := tx.ApplyDelta(10, 0, loyalty.TierFor)
			return err
		})
		assert.ErrorIs(t, err, loyalty.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("balance guard rejects overdraw before touching the database", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM loyalty_accounts WHERE user_id = \\$1 FOR UPDATE").
			WithArgs("user-1").
			WillReturnRows(accountRow("acct-1", "user-1", 50, models.TierBronze, 1))
		mock.ExpectRollback()

		err := st.Mutate(ctx, "user-1", func(tx loyalty.MutationTx) error {
			_, err := tx.ApplyDelta(-80, 0, loyalty.TierFor)
			return err
		})
		assert.ErrorIs(t, err, loyalty.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("callback error rolls back every write", func(t *testing.T) {
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM loyalty_accounts WHERE user_id = \\$1 FOR UPDATE").
			WithArgs("user-1").
			WillReturnRows(accountRow("acct-1", "user-1", 90, models.TierBronze, 2))
		mock.ExpectExec("UPDATE loyalty_accounts SET points_balance = \\$1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()

		err := st.Mutate(ctx, "user-1", func(tx loyalty.MutationTx) error {
			if _, err := tx.ApplyDelta(10, 0, loyalty.TierFor); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing account", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM loyalty_accounts WHERE user_id = \\$1 FOR UPDATE").
			WithArgs("nobody").
			WillReturnRows(sqlmock.NewRows(accountRowColumns))
		mock.ExpectRollback()

		err := st.Mutate(ctx, "nobody", func(tx loyalty.MutationTx) error {
			t.Fatal("callback must not run")
			return nil
		})
		assert.ErrorIs(t, err, loyalty.ErrAccountNotFound)
	})
}

func TestPostgresStore_RedemptionInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := NewPostgresStore(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM loyalty_accounts WHERE user_id = \\$1 FOR UPDATE").
		WithArgs("user-1").
		WillReturnRows(accountRow("acct-1", "user-1", 500, models.TierGold, 4))
	mock.ExpectExec("UPDATE loyalty_accounts SET points_balance = \\$1").
		WithArgs(int64(300), models.TierSilver, sqlmock.AnyArg(), "acct-1", 4, int64(-200), int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO loyalty_transactions").
		WithArgs(sqlmock.AnyArg(), "acct-1", int64(-200), "Redemption: FreeDelivery", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO loyalty_redemptions").
		WithArgs(sqlmock.AnyArg(), "acct-1", int64(200), "FreeDelivery", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = st.Mutate(ctx, "user-1", func(tx loyalty.MutationTx) error {
		if _, err := tx.ApplyDelta(-200, 0, loyalty.TierFor); err != nil {
			return err
		}
		if _, err := tx.AppendTransaction(-200, "Redemption: FreeDelivery", "", nil); err != nil {
			return err
		}
		_, err := tx.AppendRedemption(200, "FreeDelivery", models.Metadata{"promo": "x"})
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListTransactions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := NewPostgresStore(db)
	ctx := context.Background()

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM loyalty_transactions").
		WithArgs("acct-1", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "change_amount", "reason", "reference_id", "metadata", "created_at"}).
			AddRow("tx-2", "acct-1", -50, "Redemption: FreeDelivery", "", []byte(`{}`), now).
			AddRow("tx-1", "acct-1", 100, "Order completed", "order-1", []byte(`{"orderTotal":25.5}`), now.Add(-time.Minute)))

	txs, err := st.ListTransactions(ctx, "acct-1", 10)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, int64(-50), txs[0].ChangeAmount)
	assert.Equal(t, "order-1", txs[1].ReferenceID)
	assert.Equal(t, 25.5, txs[1].Metadata["orderTotal"])
}

func TestPostgresStore_Sums(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := NewPostgresStore(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(change_amount\\), 0\\)").
		WithArgs("acct-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(750))

	earned, err := st.SumEarned(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, int64(750), earned)

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(points_used\\), 0\\)").
		WithArgs("acct-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(200))

	redeemed, err := st.SumRedeemed(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, int64(200), redeemed)
}

func TestPostgresStore_ListAccounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := NewPostgresStore(db)
	ctx := context.Background()

	t.Run("tier filter", func(t *testing.T) {
		gold := models.TierGold
		mock.ExpectQuery("SELECT (.+) FROM loyalty_accounts WHERE is_active = TRUE AND tier = \\$1 ORDER BY created_at").
			WithArgs(gold).
			WillReturnRows(accountRow("acct-1", "user-1", 600, gold, 5))

		accounts, err := st.ListAccounts(ctx, loyalty.AccountFilter{ActiveOnly: true, Tier: &gold})
		require.NoError(t, err)
		require.Len(t, accounts, 1)
		assert.Equal(t, gold, accounts[0].Tier)
	})

	t.Run("no filter", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM loyalty_accounts ORDER BY created_at").
			WillReturnRows(accountRow("acct-1", "user-1", 600, models.TierGold, 5))

		accounts, err := st.ListAccounts(ctx, loyalty.AccountFilter{})
		require.NoError(t, err)
		assert.Len(t, accounts, 1)
	})
}

func TestPostgresStore_SetAccountActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := NewPostgresStore(db)
	ctx := context.Background()

	t.Run("deactivate", func(t *testing.T) {
		mock.ExpectExec("UPDATE loyalty_accounts SET is_active = \\$1, updated_at = \\$2 WHERE id = \\$3").
			WithArgs(false, sqlmock.AnyArg(), "acct-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, st.SetAccountActive(ctx, "acct-1", false))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing account", func(t *testing.T) {
		mock.ExpectExec("UPDATE loyalty_accounts SET is_active = \\$1, updated_at = \\$2 WHERE id = \\$3").
			WithArgs(true, sqlmock.AnyArg(), "acct-2").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, st.SetAccountActive(ctx, "acct-2", true), loyalty.ErrAccountNotFound)
	})
}

func TestPostgresStore_DeleteAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := NewPostgresStore(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM loyalty_accounts WHERE id = \\$1").
			WithArgs("acct-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, st.DeleteAccount(ctx, "acct-1"))
	})

	t.Run("missing account", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM loyalty_accounts WHERE id = \\$1").
			WithArgs("acct-2").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, st.DeleteAccount(ctx, "acct-2"), loyalty.ErrAccountNotFound)
	})
}
