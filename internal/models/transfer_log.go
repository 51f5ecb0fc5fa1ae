package models

import (
	"time"
)

// TransferLog is append-only and written in the same transaction as the
// wallet credit it records.
type TransferLog struct {
	ID            int       `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionNo string    `gorm:"column:transaction_no;size:100;not null;index" json:"transaction_no"`
	BeneficiaryId int       `gorm:"column:beneficiary_id;not null;index" json:"beneficiary_id"`
	RewardId      int       `gorm:"column:reward_id;not null;index" json:"reward_id"`
	Kind          string    `gorm:"column:kind;size:50;not null" json:"kind"`
	Amount        float64   `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Balance       float64   `gorm:"column:balance;type:decimal(20,2);not null" json:"balance"` // wallet balance after the credit
	SettledAt     time.Time `gorm:"column:settled_at;not null" json:"settled_at"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (TransferLog) TableName() string {
	return "transfer_logs"
}
