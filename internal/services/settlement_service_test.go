package services

import (
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"reward-service/internal/models"
)

// Tests run against an in-memory sqlite database capped at one open
// connection, so concurrent settlement attempts serialize exactly the way the
// production MySQL row locks make them.

var testDB *gorm.DB

func setup() {
	var err error
	testDB, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		log.Fatalf("Failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := testDB.AutoMigrate(
		&models.Member{},
		&models.Wallet{},
		&models.RewardRecord{},
		&models.TransferLog{},
		&models.ArchivedTransferLog{},
	); err != nil {
		log.Fatalf("Failed to migrate test database: %v", err)
	}
}

func cleanup() {
	if testDB != nil {
		testDB.Exec("DELETE FROM transfer_logs")
		testDB.Exec("DELETE FROM archived_transfer_logs")
		testDB.Exec("DELETE FROM reward_records")
		testDB.Exec("DELETE FROM wallets")
		testDB.Exec("DELETE FROM members")
	}
}

func createTestMember(t *testing.T, username, role, referredBy string) *models.Member {
	t.Helper()
	m := models.Member{Username: username, Role: role, ReferredBy: referredBy}
	if err := testDB.Create(&m).Error; err != nil {
		t.Fatalf("create member %s: %v", username, err)
	}
	return &m
}

func createTestWallet(t *testing.T, userId int, username string, balance float64) *models.Wallet {
	t.Helper()
	w := models.Wallet{UserId: userId, Username: username, Balance: balance}
	if err := testDB.Create(&w).Error; err != nil {
		t.Fatalf("create wallet for %s: %v", username, err)
	}
	return &w
}

func createTestReward(t *testing.T, beneficiary *models.Member, amount float64, kind, source string, dueDate *time.Time) *models.RewardRecord {
	t.Helper()
	rec := models.RewardRecord{
		BeneficiaryId:   beneficiary.ID,
		BeneficiaryRole: beneficiary.Role,
		Amount:          amount,
		SourceUsername:  source,
		Kind:            kind,
		Status:          models.RewardPending,
		DueDate:         dueDate,
	}
	if err := testDB.Create(&rec).Error; err != nil {
		t.Fatalf("create reward: %v", err)
	}
	return &rec
}

func TestSettle_CreditsWalletOnce(t *testing.T) {
	defer cleanup()

	svc := NewSettlementService(testDB, nil)

	member := createTestMember(t, "md_user", models.RoleMD, "")
	createTestWallet(t, member.ID, member.Username, 500)
	reward := createTestReward(t, member, 210, models.KindDirectInvite, "newbie", nil)

	res, err := svc.Settle(reward.ID, member.ID, nil)
	assert.NoError(t, err)
	assert.False(t, res.AlreadySettled)
	assert.Equal(t, 710.0, res.NewBalance)
	assert.Equal(t, 210.0, res.Amount)

	// Replay: same balance, no second credit.
	res2, err := svc.Settle(reward.ID, member.ID, nil)
	assert.NoError(t, err)
	assert.True(t, res2.AlreadySettled)
	assert.Equal(t, 710.0, res2.NewBalance)
	assert.Equal(t, 210.0, res2.Amount)

	var wallet models.Wallet
	testDB.Where("user_id = ?", member.ID).First(&wallet)
	assert.Equal(t, 710.0, wallet.Balance)

	var logCount int64
	testDB.Model(&models.TransferLog{}).Where("reward_id = ?", reward.ID).Count(&logCount)
	assert.Equal(t, int64(1), logCount)

	var rec models.RewardRecord
	testDB.First(&rec, reward.ID)
	assert.Equal(t, models.RewardCredited, rec.Status)
	assert.Equal(t, 210.0, rec.SettledAmount)
	assert.NotNil(t, rec.SettledAt)
}

func TestSettle_ForbiddenForOtherMember(t *testing.T) {
	defer cleanup()

	svc := NewSettlementService(testDB, nil)

	owner := createTestMember(t, "owner", models.RoleMS, "")
	other := createTestMember(t, "other", models.RoleMS, "")
	createTestWallet(t, owner.ID, owner.Username, 100)
	createTestWallet(t, other.ID, other.Username, 100)
	reward := createTestReward(t, owner, 160, models.KindDirectInvite, "newbie", nil)

	_, err := svc.Settle(reward.ID, other.ID, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	var ownerWallet, otherWallet models.Wallet
	testDB.Where("user_id = ?", owner.ID).First(&ownerWallet)
	testDB.Where("user_id = ?", other.ID).First(&otherWallet)
	assert.Equal(t, 100.0, ownerWallet.Balance)
	assert.Equal(t, 100.0, otherWallet.Balance)

	var rec models.RewardRecord
	testDB.First(&rec, reward.ID)
	assert.Equal(t, models.RewardPending, rec.Status)
}

func TestSettle_OverrideTimeGate(t *testing.T) {
	defer cleanup()

	svc := NewSettlementService(testDB, nil)

	member := createTestMember(t, "override_user", models.RoleMD, "")
	createTestWallet(t, member.ID, member.Username, 0)

	due := time.Now().Add(24 * time.Hour)
	reward := createTestReward(t, member, 75, models.KindOverrideUpline, "downline", &due)

	_, err := svc.Settle(reward.ID, member.ID, nil)
	assert.ErrorIs(t, err, ErrNotYetDue)

	var rec models.RewardRecord
	testDB.First(&rec, reward.ID)
	assert.Equal(t, models.RewardPending, rec.Status)

	// Past the due date the same record settles.
	past := time.Now().Add(-time.Minute)
	testDB.Model(&models.RewardRecord{}).Where("id = ?", reward.ID).Update("due_date", past)

	res, err := svc.Settle(reward.ID, member.ID, nil)
	assert.NoError(t, err)
	assert.False(t, res.AlreadySettled)
	assert.Equal(t, 75.0, res.NewBalance)
}

func TestSettle_UnknownReward(t *testing.T) {
	defer cleanup()

	svc := NewSettlementService(testDB, nil)

	member := createTestMember(t, "lonely", models.RoleAgent, "")
	createTestWallet(t, member.ID, member.Username, 0)

	_, err := svc.Settle(99999, member.ID, nil)
	assert.ErrorIs(t, err, ErrRewardNotFound)
}

func TestSettle_AmountMismatchRejected(t *testing.T) {
	defer cleanup()

	svc := NewSettlementService(testDB, nil)

	member := createTestMember(t, "claimer", models.RoleMI, "")
	createTestWallet(t, member.ID, member.Username, 0)
	reward := createTestReward(t, member, 140, models.KindDirectInvite, "newbie", nil)

	wrong := 999.0
	_, err := svc.Settle(reward.ID, member.ID, &wrong)
	assert.ErrorIs(t, err, ErrAmountMismatch)

	// The advisory amount matching the record settles normally.
	right := 140.0
	res, err := svc.Settle(reward.ID, member.ID, &right)
	assert.NoError(t, err)
	assert.Equal(t, 140.0, res.NewBalance)
}

func TestSettle_WalletMissingLeavesRecordPending(t *testing.T) {
	defer cleanup()

	svc := NewSettlementService(testDB, nil)

	member := createTestMember(t, "nowallet", models.RoleAgent, "")
	reward := createTestReward(t, member, 120, models.KindDirectInvite, "newbie", nil)

	_, err := svc.Settle(reward.ID, member.ID, nil)
	assert.ErrorIs(t, err, ErrWalletNotFound)

	// The claim rolled back with the transaction; a retry after the wallet
	// exists succeeds.
	var rec models.RewardRecord
	testDB.First(&rec, reward.ID)
	assert.Equal(t, models.RewardPending, rec.Status)

	createTestWallet(t, member.ID, member.Username, 0)
	res, err := svc.Settle(reward.ID, member.ID, nil)
	assert.NoError(t, err)
	assert.Equal(t, 120.0, res.NewBalance)
}

func TestSettle_TransferInProgress(t *testing.T) {
	defer cleanup()

	svc := NewSettlementService(testDB, nil)

	member := createTestMember(t, "racer", models.RoleMD, "")
	createTestWallet(t, member.ID, member.Username, 0)
	reward := createTestReward(t, member, 210, models.KindDirectInvite, "newbie", nil)

	testDB.Model(&models.RewardRecord{}).Where("id = ?", reward.ID).Update("status", models.RewardTransferring)

	_, err := svc.Settle(reward.ID, member.ID, nil)
	assert.ErrorIs(t, err, ErrTransferInProgress)

	var wallet models.Wallet
	testDB.Where("user_id = ?", member.ID).First(&wallet)
	assert.Equal(t, 0.0, wallet.Balance)
}

func TestSettle_ConcurrentDistinctRewards(t *testing.T) {
	defer cleanup()

	svc := NewSettlementService(testDB, nil)

	member := createTestMember(t, "parallel", models.RoleMI, "")
	createTestWallet(t, member.ID, member.Username, 1000)

	amounts := []float64{20, 20, 140, 15, 10}
	rewardIds := make([]int, len(amounts))
	var expected float64
	for i, amount := range amounts {
		kind := models.KindNetworkBonus
		if i == 2 {
			kind = models.KindDirectInvite
		}
		rec := models.RewardRecord{
			BeneficiaryId:   member.ID,
			BeneficiaryRole: member.Role,
			Amount:          amount,
			SourceUsername:  "downline" + string(rune('a'+i)),
			Kind:            kind,
			Status:          models.RewardPending,
		}
		if err := testDB.Create(&rec).Error; err != nil {
			t.Fatalf("create reward: %v", err)
		}
		rewardIds[i] = rec.ID
		expected += amount
	}

	var wg sync.WaitGroup
	errs := make([]error, len(rewardIds))
	for i, id := range rewardIds {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			_, errs[i] = svc.Settle(id, member.ID, nil)
		}(i, id)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "settle %d", rewardIds[i])
	}

	var wallet models.Wallet
	testDB.Where("user_id = ?", member.ID).First(&wallet)
	assert.Equal(t, 1000+expected, wallet.Balance)

	var logCount int64
	testDB.Model(&models.TransferLog{}).Where("beneficiary_id = ?", member.ID).Count(&logCount)
	assert.Equal(t, int64(len(rewardIds)), logCount)
}

func TestSettle_ConcurrentSameReward(t *testing.T) {
	defer cleanup()

	svc := NewSettlementService(testDB, nil)

	member := createTestMember(t, "contended", models.RoleMD, "")
	createTestWallet(t, member.ID, member.Username, 0)
	reward := createTestReward(t, member, 210, models.KindDirectInvite, "newbie", nil)

	const attempts = 8
	var wg sync.WaitGroup
	results := make([]*SettleResult, attempts)
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Settle(reward.ID, member.ID, nil)
		}(i)
	}
	wg.Wait()

	settled := 0
	for i := 0; i < attempts; i++ {
		switch {
		case errs[i] == nil && !results[i].AlreadySettled:
			settled++
		case errs[i] == nil && results[i].AlreadySettled:
			assert.Equal(t, 210.0, results[i].Amount)
		default:
			assert.ErrorIs(t, errs[i], ErrTransferInProgress)
		}
	}
	assert.Equal(t, 1, settled, "exactly one attempt may perform the credit")

	var wallet models.Wallet
	testDB.Where("user_id = ?", member.ID).First(&wallet)
	assert.Equal(t, 210.0, wallet.Balance)

	var logCount int64
	testDB.Model(&models.TransferLog{}).Where("reward_id = ?", reward.ID).Count(&logCount)
	assert.Equal(t, int64(1), logCount)
}

func TestMain(m *testing.M) {
	setup()
	code := m.Run()
	os.Exit(code)
}
