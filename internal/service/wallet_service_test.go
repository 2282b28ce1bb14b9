package service

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-billing/internal/domain"
	"parking-billing/internal/repository/memory"
)

func newWallet(t *testing.T, balance float64) (WalletService, int64) {
	t.Helper()
	store := memory.NewStore()
	user := &domain.User{Email: "w@example.com", APIKey: "w", Balance: balance}
	_, err := store.Users.Create(context.Background(), user)
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	return NewWalletService(store.Users, nil, logger), user.ID
}

func TestDeposit(t *testing.T) {
	wallet, id := newWallet(t, 300)

	balance, err := wallet.Deposit(context.Background(), id, 50)
	require.NoError(t, err)
	assert.Equal(t, 350.0, balance)

	got, err := wallet.Balance(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 350.0, got)
}

func TestDeposit_RejectsNonPositive(t *testing.T) {
	wallet, id := newWallet(t, 300)

	for _, amount := range []float64{0, -1, -0.01, math.NaN(), math.Inf(1)} {
		_, err := wallet.Deposit(context.Background(), id, amount)
		assert.ErrorIs(t, err, domain.ErrValidation, "amount %v", amount)
	}

	got, err := wallet.Balance(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 300.0, got)
}

func TestDeposit_UnknownUser(t *testing.T) {
	wallet, _ := newWallet(t, 0)

	_, err := wallet.Deposit(context.Background(), 99, 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeposit_Concurrent(t *testing.T) {
	wallet, id := newWallet(t, 0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := wallet.Deposit(context.Background(), id, 2)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := wallet.Balance(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got)
}
