package repositories

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "campus-market.backend/internal/domain/errors"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestWalletRepository_GetOrCreateByUserID(t *testing.T) {
	db := newTestDB(t)
	createWalletTable(t, db)
	repo := NewWalletRepository(db)

	userID := uuid.New()

	w, err := repo.GetOrCreateByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, w.UserID)
	assert.True(t, w.Balance.IsZero())
	assert.False(t, w.HasPin())

	// Second touch returns the same wallet.
	w2, err := repo.GetOrCreateByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, w2.ID)
}

func TestWalletRepository_CreditDebit(t *testing.T) {
	db := newTestDB(t)
	createWalletTable(t, db)
	repo := NewWalletRepository(db)

	w, err := repo.GetOrCreateByUserID(context.Background(), uuid.New())
	require.NoError(t, err)

	require.NoError(t, repo.Credit(context.Background(), w.ID, dec(t, "5000")))
	require.NoError(t, repo.Debit(context.Background(), w.ID, dec(t, "2000")))

	got, err := repo.GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec(t, "3000")), "balance=%s", got.Balance)
}

func TestWalletRepository_Debit_InsufficientFunds(t *testing.T) {
	db := newTestDB(t)
	createWalletTable(t, db)
	repo := NewWalletRepository(db)

	w, err := repo.GetOrCreateByUserID(context.Background(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Credit(context.Background(), w.ID, dec(t, "100")))

	err = repo.Debit(context.Background(), w.ID, dec(t, "100.01"))
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientFunds)

	// Balance untouched after the failed debit.
	got, err := repo.GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec(t, "100")))
}

func TestWalletRepository_Debit_DoubleSpend(t *testing.T) {
	db := newTestDB(t)
	createWalletTable(t, db)
	repo := NewWalletRepository(db)

	w, err := repo.GetOrCreateByUserID(context.Background(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Credit(context.Background(), w.ID, dec(t, "100")))

	// Two debits both sized to pass a stale read of the balance. The
	// guarded update makes exactly one succeed.
	first := repo.Debit(context.Background(), w.ID, dec(t, "60"))
	second := repo.Debit(context.Background(), w.ID, dec(t, "60"))

	require.NoError(t, first)
	assert.ErrorIs(t, second, domainerrors.ErrInsufficientFunds)

	got, err := repo.GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec(t, "40")), "balance=%s", got.Balance)
}

func TestWalletRepository_Debit_ConcurrentSingleWinner(t *testing.T) {
	db := newTestDB(t)
	createWalletTable(t, db)
	repo := NewWalletRepository(db)

	// One connection keeps the shared in-memory database from returning
	// sqlite busy errors under contention; the guarded UPDATE still
	// decides which goroutine wins.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	w, err := repo.GetOrCreateByUserID(context.Background(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Credit(context.Background(), w.ID, dec(t, "100")))

	// Wallet funded for exactly one of N racing debits.
	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Debit(context.Background(), w.ID, dec(t, "100"))
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domainerrors.ErrInsufficientFunds)
		}
	}
	assert.Equal(t, 1, succeeded)

	got, err := repo.GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero(), "balance=%s", got.Balance)
	assert.False(t, got.Balance.IsNegative())
}

func TestWalletRepository_DebitAvailable_ExcludesReserved(t *testing.T) {
	db := newTestDB(t)
	createWalletTable(t, db)
	repo := NewWalletRepository(db)

	w, err := repo.GetOrCreateByUserID(context.Background(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Credit(context.Background(), w.ID, dec(t, "1000")))
	require.NoError(t, repo.Reserve(context.Background(), w.ID, dec(t, "400")))

	// Only 600 is available even though balance is 1000.
	err = repo.DebitAvailable(context.Background(), w.ID, dec(t, "700"))
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientFunds)

	require.NoError(t, repo.DebitAvailable(context.Background(), w.ID, dec(t, "600")))
}

func TestWalletRepository_ReleaseReserved_NeverNegative(t *testing.T) {
	db := newTestDB(t)
	createWalletTable(t, db)
	repo := NewWalletRepository(db)

	w, err := repo.GetOrCreateByUserID(context.Background(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Reserve(context.Background(), w.ID, dec(t, "100")))

	err = repo.ReleaseReserved(context.Background(), w.ID, dec(t, "150"))
	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)

	require.NoError(t, repo.ReleaseReserved(context.Background(), w.ID, dec(t, "100")))
}

func TestWalletRepository_SetPin(t *testing.T) {
	db := newTestDB(t)
	createWalletTable(t, db)
	repo := NewWalletRepository(db)

	w, err := repo.GetOrCreateByUserID(context.Background(), uuid.New())
	require.NoError(t, err)

	require.NoError(t, repo.SetPin(context.Background(), w.ID, "hashed-pin"))

	got, err := repo.GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.True(t, got.HasPin())
	assert.Equal(t, "hashed-pin", got.TransactionPin.String)
	assert.NotNil(t, got.PinSetAt)
}

func TestWalletRepository_GetByUserID_NotFound(t *testing.T) {
	db := newTestDB(t)
	createWalletTable(t, db)
	repo := NewWalletRepository(db)

	_, err := repo.GetByUserID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
