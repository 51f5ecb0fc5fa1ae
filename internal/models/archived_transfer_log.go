package models

import (
	"time"
)

type ArchivedTransferLog struct {
	ID            int       `gorm:"primaryKey;autoIncrement"`
	TransactionNo string    `gorm:"column:transaction_no;size:100;index"`
	BeneficiaryId int       `gorm:"column:beneficiary_id;index"`
	RewardId      int       `gorm:"column:reward_id;index"`
	Kind          string    `gorm:"column:kind;size:50"`
	Amount        float64   `gorm:"column:amount;type:decimal(20,2)"`
	Balance       float64   `gorm:"column:balance;type:decimal(20,2)"`
	SettledAt     time.Time `gorm:"column:settled_at"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	ArchivedAt    time.Time `gorm:"column:archived_at;autoCreateTime"`
}

func (ArchivedTransferLog) TableName() string {
	return "archived_transfer_logs"
}
