package models

import (
	"time"
)

type Wallet struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserId    int       `gorm:"column:user_id;not null;uniqueIndex" json:"user_id"`
	Username  string    `gorm:"column:username;size:100;not null" json:"username"`
	Balance   float64   `gorm:"column:balance;type:decimal(20,2);default:0.00" json:"balance"`
	Currency  string    `gorm:"column:currency;size:10;default:PHP" json:"currency"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}
