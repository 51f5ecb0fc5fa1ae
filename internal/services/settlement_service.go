package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"reward-service/internal/models"
	"reward-service/pkg/common"
)

// Settlement failure taxonomy. Handlers map these onto HTTP statuses; none of
// them leave any partial state behind.
var (
	ErrRewardNotFound     = errors.New("reward record not found")
	ErrForbidden          = errors.New("reward record does not belong to the requesting member")
	ErrNotYetDue          = errors.New("reward is not yet due for settlement")
	ErrTransferInProgress = errors.New("a transfer for this reward is already in progress")
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrAmountMismatch     = errors.New("claimed amount does not match the reward amount")
)

// SettlementService moves a pending reward into the beneficiary's wallet
// exactly once. All mutation happens inside a single store transaction; the
// only mutual-exclusion primitive is a conditional pending->transferring claim
// on the reward row, so concurrent attempts on the same record serialize
// through the database and a rolled-back attempt leaves the record pending.
type SettlementService struct {
	DB       *gorm.DB
	Notifier *SettlementNotifier
}

func NewSettlementService(db *gorm.DB, notifier *SettlementNotifier) *SettlementService {
	return &SettlementService{DB: db, Notifier: notifier}
}

type SettleResult struct {
	AlreadySettled bool    `json:"alreadyTransferred"`
	Amount         float64 `json:"amount"`
	NewBalance     float64 `json:"newBalance"`
}

// Settle credits the reward amount to the beneficiary's wallet and marks the
// record credited, atomically. claimedAmount is advisory: when supplied it
// must match the amount read inside the transaction, but the credited amount
// is always the record's own. Calling Settle again after success reports
// AlreadySettled with the originally transferred amount.
func (s *SettlementService) Settle(rewardId, memberId int, claimedAmount *float64) (*SettleResult, error) {
	var result SettleResult

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var rec models.RewardRecord
		if err := tx.First(&rec, rewardId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRewardNotFound
			}
			return err
		}

		if rec.BeneficiaryId != memberId {
			return ErrForbidden
		}

		if claimedAmount != nil && *claimedAmount != rec.Amount {
			return ErrAmountMismatch
		}

		if rec.Status == models.RewardCredited {
			var wallet models.Wallet
			if err := tx.Where("user_id = ?", memberId).First(&wallet).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrWalletNotFound
				}
				return err
			}
			result = SettleResult{AlreadySettled: true, Amount: rec.SettledAmount, NewBalance: wallet.Balance}
			return nil
		}

		if rec.Status == models.RewardTransferring {
			return ErrTransferInProgress
		}

		if rec.Kind == models.KindOverrideUpline && rec.DueDate != nil && time.Now().Before(*rec.DueDate) {
			return ErrNotYetDue
		}

		// Claim the record. Zero rows means another settlement got in between
		// our read and this write; re-read to tell a finished transfer apart
		// from one still in flight.
		claim := tx.Model(&models.RewardRecord{}).
			Where("id = ? AND status = ?", rec.ID, models.RewardPending).
			Update("status", models.RewardTransferring)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			var current models.RewardRecord
			if err := tx.First(&current, rec.ID).Error; err != nil {
				return err
			}
			if current.Status == models.RewardCredited {
				var wallet models.Wallet
				if err := tx.Where("user_id = ?", memberId).First(&wallet).Error; err != nil {
					return err
				}
				result = SettleResult{AlreadySettled: true, Amount: current.SettledAmount, NewBalance: wallet.Balance}
				return nil
			}
			return ErrTransferInProgress
		}

		var wallet models.Wallet
		if err := tx.Where("user_id = ?", memberId).First(&wallet).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWalletNotFound
			}
			return err
		}

		if err := tx.Model(&wallet).
			UpdateColumn("balance", gorm.Expr("balance + ?", rec.Amount)).Error; err != nil {
			return err
		}

		var fresh models.Wallet
		if err := tx.Where("user_id = ?", memberId).First(&fresh).Error; err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&models.RewardRecord{}).Where("id = ?", rec.ID).Updates(map[string]interface{}{
			"status":         models.RewardCredited,
			"settled_at":     now,
			"settled_amount": rec.Amount,
		}).Error; err != nil {
			return err
		}

		logEntry := models.TransferLog{
			TransactionNo: common.GenerateTrxNo(),
			BeneficiaryId: memberId,
			RewardId:      rec.ID,
			Kind:          rec.Kind,
			Amount:        rec.Amount,
			Balance:       fresh.Balance,
			SettledAt:     now,
		}
		if err := tx.Create(&logEntry).Error; err != nil {
			return err
		}

		result = SettleResult{AlreadySettled: false, Amount: rec.Amount, NewBalance: fresh.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadySettled && s.Notifier != nil {
		go s.Notifier.SettlementCompleted(rewardId, memberId, result.Amount, result.NewBalance)
	}

	return &result, nil
}
