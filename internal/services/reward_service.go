package services

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"reward-service/internal/models"
)

// Direct invite rewards by inviter role. Roles outside this table earn no
// direct reward.
var directInviteAmounts = map[string]float64{
	models.RoleMasterMD: 235,
	models.RoleMD:       210,
	models.RoleMS:       160,
	models.RoleMI:       140,
	models.RoleAgent:    120,
}

var (
	ErrInviterNotFound     = errors.New("inviter not found")
	ErrBeneficiaryNotFound = errors.New("beneficiary not found")
	ErrDueDateRequired     = errors.New("override rewards require a due date")
)

type RewardService struct {
	DB            *gorm.DB
	MaxUplineHops int
}

func NewRewardService(db *gorm.DB) *RewardService {
	return &RewardService{DB: db, MaxUplineHops: DefaultMaxUplineHops}
}

func (s *RewardService) findMember(username string) (*models.Member, error) {
	var m models.Member
	if err := s.DB.Where("username = ?", username).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// createRecord inserts one reward record keyed by (source, beneficiary, kind).
// A retry that finds the key already present returns the existing row instead
// of duplicating it, which is what makes issuance safe to replay.
func (s *RewardService) createRecord(beneficiary *models.Member, amount float64, kind, sourceUsername string, dueDate *time.Time) (*models.RewardRecord, error) {
	rec := models.RewardRecord{
		SourceUsername: sourceUsername,
		BeneficiaryId:  beneficiary.ID,
		Kind:           kind,
	}
	err := s.DB.Where(&models.RewardRecord{
		SourceUsername: sourceUsername,
		BeneficiaryId:  beneficiary.ID,
		Kind:           kind,
	}).Attrs(models.RewardRecord{
		Amount:          amount,
		BeneficiaryRole: beneficiary.Role,
		Status:          models.RewardPending,
		DueDate:         dueDate,
	}).FirstOrCreate(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

type IssueResult struct {
	DirectReward   *models.RewardRecord  `json:"direct_reward,omitempty"`
	NetworkRewards []models.RewardRecord `json:"network_rewards"`
}

// IssueForRegistration creates the reward records owed for one sponsored
// registration: the inviter's direct-invite reward (if their role earns one)
// plus one record per upline award. Records are keyed, so a partial failure
// can be retried and converges to the same final set.
func (s *RewardService) IssueForRegistration(inviterUsername, newMemberUsername string) (*IssueResult, error) {
	inviter, err := s.findMember(inviterUsername)
	if err != nil {
		return nil, err
	}
	if inviter == nil {
		return nil, ErrInviterNotFound
	}

	result := &IssueResult{}

	if amount, ok := directInviteAmounts[inviter.Role]; ok {
		rec, err := s.createRecord(inviter, amount, models.KindDirectInvite, newMemberUsername, nil)
		if err != nil {
			return nil, err
		}
		result.DirectReward = rec
	}

	awards, walkErr := WalkUpline(inviter, s.findMember, s.MaxUplineHops)
	if walkErr != nil && !errors.Is(walkErr, ErrUplineBoundReached) {
		return nil, walkErr
	}

	for _, award := range awards {
		rec, err := s.createRecord(award.Member, award.Amount, award.Kind, newMemberUsername, nil)
		if err != nil {
			return nil, err
		}
		result.NetworkRewards = append(result.NetworkRewards, *rec)
	}

	if walkErr != nil {
		log.Printf("Upline anomaly for %s (invited by %s): %v", newMemberUsername, inviterUsername, walkErr)
		return result, walkErr
	}

	return result, nil
}

type OverrideRewardDTO struct {
	BeneficiaryUsername string
	SourceUsername      string
	Amount              float64
	DueDate             time.Time
}

// IssueOverrideReward creates a time-gated override reward. It only becomes
// settleable once the due date has passed.
func (s *RewardService) IssueOverrideReward(data OverrideRewardDTO) (*models.RewardRecord, error) {
	if data.DueDate.IsZero() {
		return nil, ErrDueDateRequired
	}

	beneficiary, err := s.findMember(data.BeneficiaryUsername)
	if err != nil {
		return nil, err
	}
	if beneficiary == nil {
		return nil, ErrBeneficiaryNotFound
	}

	due := data.DueDate
	return s.createRecord(beneficiary, data.Amount, models.KindOverrideUpline, data.SourceUsername, &due)
}

type PaybackBackfillDTO struct {
	BeneficiaryUsername string  `json:"beneficiaryUsername"`
	SourceUsername      string  `json:"sourceUsername"`
	Amount              float64 `json:"amount"`
}

// BackfillPaybackReward creates one payback-derived upline reward. Used by the
// one-shot migration of legacy payback balances; the issuance key makes a
// re-run of the migration converge instead of duplicating records.
func (s *RewardService) BackfillPaybackReward(data PaybackBackfillDTO) (*models.RewardRecord, error) {
	beneficiary, err := s.findMember(data.BeneficiaryUsername)
	if err != nil {
		return nil, err
	}
	if beneficiary == nil {
		return nil, ErrBeneficiaryNotFound
	}

	return s.createRecord(beneficiary, data.Amount, models.KindPaybackUpline, data.SourceUsername, nil)
}

type ListRewardsDTO struct {
	MemberId int
	Kind     string
	Status   *int
	Page     int
	Limit    int
}

func (s *RewardService) ListRewards(data ListRewardsDTO) ([]models.RewardRecord, int64, error) {
	limit := data.Limit
	if limit <= 0 {
		limit = 50
	}
	page := data.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	query := s.DB.Model(&models.RewardRecord{}).Where("beneficiary_id = ?", data.MemberId)
	if data.Kind != "" {
		query = query.Where("kind = ?", data.Kind)
	}
	if data.Status != nil {
		query = query.Where("status = ?", *data.Status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.RewardRecord
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// RewardSummary aggregates a member's ledger: pending and credited totals plus
// the most recent settlements.
func (s *RewardService) RewardSummary(memberId int) (map[string]interface{}, error) {
	var pendingTotal, creditedTotal float64
	var pendingCount, creditedCount int64

	base := s.DB.Model(&models.RewardRecord{}).Where("beneficiary_id = ?", memberId)

	if err := base.Session(&gorm.Session{}).Where("status = ?", models.RewardPending).
		Select("COALESCE(SUM(amount), 0)").Scan(&pendingTotal).Error; err != nil {
		return nil, err
	}
	base.Session(&gorm.Session{}).Where("status = ?", models.RewardPending).Count(&pendingCount)

	if err := base.Session(&gorm.Session{}).Where("status = ?", models.RewardCredited).
		Select("COALESCE(SUM(settled_amount), 0)").Scan(&creditedTotal).Error; err != nil {
		return nil, err
	}
	base.Session(&gorm.Session{}).Where("status = ?", models.RewardCredited).Count(&creditedCount)

	var recent []models.TransferLog
	s.DB.Where("beneficiary_id = ?", memberId).Order("settled_at DESC").Limit(10).Find(&recent)

	return map[string]interface{}{
		"pendingCount":    pendingCount,
		"pendingTotal":    pendingTotal,
		"creditedCount":   creditedCount,
		"creditedTotal":   creditedTotal,
		"recentTransfers": recent,
	}, nil
}
