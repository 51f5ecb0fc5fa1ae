package services

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"reward-service/internal/models"
)

const defaultTransferLogRetentionDays = 90

// TransferLogArchiveService moves old settlement audit rows into cold storage.
// Reward records themselves are never archived or deleted.
type TransferLogArchiveService struct {
	DB            *gorm.DB
	RetentionDays int
}

func NewTransferLogArchiveService(db *gorm.DB) *TransferLogArchiveService {
	days := defaultTransferLogRetentionDays
	if v := os.Getenv("TRANSFER_LOG_RETENTION_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			days = parsed
		}
	}
	return &TransferLogArchiveService{DB: db, RetentionDays: days}
}

// ArchiveTransferLogs moves logs older than the retention window to the
// archive table in one transaction.
func (s *TransferLogArchiveService) ArchiveTransferLogs() {
	cutoff := time.Now().AddDate(0, 0, -s.RetentionDays)

	var oldLogs []models.TransferLog
	if err := s.DB.Where("settled_at < ?", cutoff).Find(&oldLogs).Error; err != nil {
		log.Printf("Error finding old transfer logs: %v", err)
		return
	}

	if len(oldLogs) == 0 {
		log.Println("No transfer logs to archive")
		return
	}

	archived := make([]models.ArchivedTransferLog, 0, len(oldLogs))
	ids := make([]int, 0, len(oldLogs))
	for _, entry := range oldLogs {
		archived = append(archived, models.ArchivedTransferLog{
			TransactionNo: entry.TransactionNo,
			BeneficiaryId: entry.BeneficiaryId,
			RewardId:      entry.RewardId,
			Kind:          entry.Kind,
			Amount:        entry.Amount,
			Balance:       entry.Balance,
			SettledAt:     entry.SettledAt,
			CreatedAt:     entry.CreatedAt,
		})
		ids = append(ids, entry.ID)
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&archived).Error; err != nil {
			return err
		}
		return tx.Delete(&models.TransferLog{}, ids).Error
	})
	if err != nil {
		log.Printf("Error during transfer log archiving: %v", err)
		return
	}

	log.Printf("Archived and removed %d transfer logs.", len(oldLogs))
}

// StartScheduler runs the archive job daily at midnight.
func (s *TransferLogArchiveService) StartScheduler() {
	c := cron.New()
	_, err := c.AddFunc("0 0 * * *", func() {
		log.Println("Running scheduled transfer log archive task...")
		s.ArchiveTransferLogs()
	})
	if err != nil {
		log.Printf("Error scheduling archive task: %v", err)
		return
	}
	c.Start()
	log.Println("Transfer Log Archive Scheduler started (Daily at 00:00)")
}
