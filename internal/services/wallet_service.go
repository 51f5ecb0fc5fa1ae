package services

import (
	"errors"

	"gorm.io/gorm"

	"reward-service/internal/models"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// WalletService covers the wallet paths that sit outside settlement: creation
// at registration, balance reads, and the unrelated deposit/purchase flows.
// Reward credits only ever go through the SettlementService.
type WalletService struct {
	DB *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{DB: db}
}

func (s *WalletService) CreateWallet(userId int, username string) (*models.Wallet, error) {
	wallet := models.Wallet{
		UserId:   userId,
		Username: username,
	}
	if err := s.DB.Create(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (s *WalletService) GetBalance(userId int) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := s.DB.Where("user_id = ?", userId).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

func (s *WalletService) Deposit(userId int, amount float64) (*models.Wallet, error) {
	res := s.DB.Model(&models.Wallet{}).
		Where("user_id = ?", userId).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrWalletNotFound
	}
	return s.GetBalance(userId)
}

func (s *WalletService) Debit(userId int, amount float64) (*models.Wallet, error) {
	// The balance guard sits in the WHERE clause so two concurrent debits
	// cannot drive the balance negative.
	res := s.DB.Model(&models.Wallet{}).
		Where("user_id = ? AND balance >= ?", userId, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetBalance(userId); err != nil {
			return nil, err
		}
		return nil, ErrInsufficientBalance
	}
	return s.GetBalance(userId)
}
