package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"reward-service/internal/models"
)

func TestRegister_CreatesMemberWalletAndRewards(t *testing.T) {
	defer cleanup()

	rewards := NewRewardService(testDB)
	svc := NewMemberService(testDB, rewards, nil) // no queue: issuance runs inline

	createTestMember(t, "ceo", models.RoleCEO, "")
	createTestMember(t, "mastermd", models.RoleMasterMD, "ceo")

	member, err := svc.Register(RegisterMemberDTO{
		InviterUsername: "mastermd",
		Username:        "fresh",
		Role:            models.RoleAgent,
	})
	assert.NoError(t, err)
	assert.Equal(t, models.RoleAgent, member.Role)
	assert.Equal(t, "mastermd", member.ReferredBy)

	var wallet models.Wallet
	assert.NoError(t, testDB.Where("user_id = ?", member.ID).First(&wallet).Error)
	assert.Equal(t, 0.0, wallet.Balance)

	// MASTERMD inviter earns the 235 direct reward; its upline is the CEO so
	// no network records exist.
	var records []models.RewardRecord
	testDB.Where("source_username = ?", "fresh").Find(&records)
	if assert.Len(t, records, 1) {
		assert.Equal(t, 235.0, records[0].Amount)
		assert.Equal(t, models.KindDirectInvite, records[0].Kind)
	}
}

func TestRegister_DefaultsToMemberRole(t *testing.T) {
	defer cleanup()

	rewards := NewRewardService(testDB)
	svc := NewMemberService(testDB, rewards, nil)

	createTestMember(t, "sponsor", models.RoleAgent, "")

	member, err := svc.Register(RegisterMemberDTO{
		InviterUsername: "sponsor",
		Username:        "defaulted",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.RoleMember, member.Role)
}

func TestRegister_UnknownInviter(t *testing.T) {
	defer cleanup()

	rewards := NewRewardService(testDB)
	svc := NewMemberService(testDB, rewards, nil)

	_, err := svc.Register(RegisterMemberDTO{
		InviterUsername: "missing",
		Username:        "nobody",
	})
	assert.ErrorIs(t, err, ErrInviterNotFound)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	defer cleanup()

	rewards := NewRewardService(testDB)
	svc := NewMemberService(testDB, rewards, nil)

	createTestMember(t, "sponsor", models.RoleAgent, "")
	createTestMember(t, "taken", models.RoleMember, "sponsor")

	_, err := svc.Register(RegisterMemberDTO{
		InviterUsername: "sponsor",
		Username:        "taken",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegister_NoInviterSkipsIssuance(t *testing.T) {
	defer cleanup()

	rewards := NewRewardService(testDB)
	svc := NewMemberService(testDB, rewards, nil)

	member, err := svc.Register(RegisterMemberDTO{
		Username: "root_admin",
		Role:     models.RoleAdmin,
	})
	assert.NoError(t, err)
	assert.Equal(t, "", member.ReferredBy)

	var n int64
	testDB.Model(&models.RewardRecord{}).Count(&n)
	assert.Equal(t, int64(0), n)
}
