package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"reward-service/internal/models"
)

func TestArchiveTransferLogs(t *testing.T) {
	defer cleanup()

	svc := NewTransferLogArchiveService(testDB)
	svc.RetentionDays = 90

	old := models.TransferLog{
		TransactionNo: "OLDTRX1",
		BeneficiaryId: 1,
		RewardId:      10,
		Kind:          models.KindNetworkBonus,
		Amount:        20,
		Balance:       120,
		SettledAt:     time.Now().AddDate(0, 0, -120),
	}
	recent := models.TransferLog{
		TransactionNo: "NEWTRX1",
		BeneficiaryId: 1,
		RewardId:      11,
		Kind:          models.KindDirectInvite,
		Amount:        140,
		Balance:       260,
		SettledAt:     time.Now().AddDate(0, 0, -3),
	}
	assert.NoError(t, testDB.Create(&old).Error)
	assert.NoError(t, testDB.Create(&recent).Error)

	svc.ArchiveTransferLogs()

	var live []models.TransferLog
	testDB.Find(&live)
	if assert.Len(t, live, 1) {
		assert.Equal(t, "NEWTRX1", live[0].TransactionNo)
	}

	var archived []models.ArchivedTransferLog
	testDB.Find(&archived)
	if assert.Len(t, archived, 1) {
		assert.Equal(t, "OLDTRX1", archived[0].TransactionNo)
		assert.Equal(t, 20.0, archived[0].Amount)
	}
}

func TestArchiveTransferLogs_NothingToArchive(t *testing.T) {
	defer cleanup()

	svc := NewTransferLogArchiveService(testDB)

	entry := models.TransferLog{
		TransactionNo: "FRESH01",
		BeneficiaryId: 2,
		RewardId:      12,
		Kind:          models.KindMDNetworkBonus,
		Amount:        10,
		Balance:       10,
		SettledAt:     time.Now(),
	}
	assert.NoError(t, testDB.Create(&entry).Error)

	svc.ArchiveTransferLogs()

	var count int64
	testDB.Model(&models.TransferLog{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
