package models

import (
	"time"
)

// Member roles. Roles decide which bonuses a member earns during upline
// traversal and at direct invitation.
const (
	RoleCEO      = "CEO"
	RoleMasterMD = "MASTERMD"
	RoleMD       = "MD"
	RoleMS       = "MS"
	RoleMI       = "MI"
	RoleAgent    = "AGENT"
	RoleMember   = "MEMBER"
	RoleMerchant = "MERCHANT"
	RoleRider    = "RIDER"
	RoleAdmin    = "ADMIN"
)

type Member struct {
	ID         int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username   string    `gorm:"column:username;size:100;not null;uniqueIndex" json:"username"`
	Role       string    `gorm:"column:role;size:50;not null" json:"role"`
	ReferredBy string    `gorm:"column:referred_by;size:100;index" json:"referred_by"` // inviter username, immutable after creation
	Status     int       `gorm:"column:status;default:1" json:"status"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Member) TableName() string {
	return "members"
}
