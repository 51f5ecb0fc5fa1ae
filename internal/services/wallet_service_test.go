package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"reward-service/internal/models"
)

func TestWalletDepositAndDebit(t *testing.T) {
	defer cleanup()

	svc := NewWalletService(testDB)

	member := createTestMember(t, "shopper", models.RoleMember, "")
	_, err := svc.CreateWallet(member.ID, member.Username)
	assert.NoError(t, err)

	wallet, err := svc.Deposit(member.ID, 250)
	assert.NoError(t, err)
	assert.Equal(t, 250.0, wallet.Balance)

	wallet, err = svc.Debit(member.ID, 100)
	assert.NoError(t, err)
	assert.Equal(t, 150.0, wallet.Balance)
}

func TestWalletDebit_InsufficientBalance(t *testing.T) {
	defer cleanup()

	svc := NewWalletService(testDB)

	member := createTestMember(t, "broke", models.RoleMember, "")
	_, err := svc.CreateWallet(member.ID, member.Username)
	assert.NoError(t, err)

	_, err = svc.Debit(member.ID, 10)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	wallet, err := svc.GetBalance(member.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, wallet.Balance)
}

func TestWallet_MissingWallet(t *testing.T) {
	defer cleanup()

	svc := NewWalletService(testDB)

	_, err := svc.GetBalance(424242)
	assert.ErrorIs(t, err, ErrWalletNotFound)

	_, err = svc.Deposit(424242, 50)
	assert.ErrorIs(t, err, ErrWalletNotFound)
}
