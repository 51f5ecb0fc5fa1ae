package models

import (
	"time"
)

// Reward kinds.
const (
	KindDirectInvite   = "direct-invite"
	KindNetworkBonus   = "network-bonus"
	KindMDNetworkBonus = "md-network-bonus"
	KindOverrideUpline = "override-upline"
	KindPaybackUpline  = "payback-upline"
)

// Reward statuses. A record only ever moves forward:
// pending -> transferring -> credited.
const (
	RewardPending      = 0
	RewardTransferring = 1
	RewardCredited     = 2
)

// RewardRecord is the ledger entry for a single earned bonus. Records are
// created once per (source_username, beneficiary_id, kind) and never deleted;
// credited records form the audit trail.
type RewardRecord struct {
	ID              int        `gorm:"primaryKey;autoIncrement" json:"id"`
	BeneficiaryId   int        `gorm:"column:beneficiary_id;not null;index;uniqueIndex:idx_reward_source_beneficiary_kind" json:"beneficiary_id"`
	BeneficiaryRole string     `gorm:"column:beneficiary_role;size:50;not null" json:"beneficiary_role"` // role snapshot at award time
	Amount          float64    `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	SourceUsername  string     `gorm:"column:source_username;size:100;not null;uniqueIndex:idx_reward_source_beneficiary_kind" json:"source_username"`
	Kind            string     `gorm:"column:kind;size:50;not null;index;uniqueIndex:idx_reward_source_beneficiary_kind" json:"kind"`
	Status          int        `gorm:"column:status;default:0;index" json:"status"`
	DueDate         *time.Time `gorm:"column:due_date" json:"due_date,omitempty"` // required for override-upline
	SettledAt       *time.Time `gorm:"column:settled_at" json:"settled_at,omitempty"`
	SettledAmount   float64    `gorm:"column:settled_amount;type:decimal(20,2);default:0.00" json:"settled_amount"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (RewardRecord) TableName() string {
	return "reward_records"
}
