package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"reward-service/internal/models"
)

var (
	ErrUsernameTaken = errors.New("username already registered")
)

const TypeRewardIssue = "reward-issue"

type RewardIssuePayload struct {
	InviterUsername   string `json:"inviterUsername"`
	NewMemberUsername string `json:"newMemberUsername"`
}

// MemberService handles registration events. Rewards are issued through the
// task queue when one is configured, otherwise inline (single-binary and test
// deployments).
type MemberService struct {
	DB      *gorm.DB
	Rewards *RewardService
	Client  *asynq.Client
}

func NewMemberService(db *gorm.DB, rewards *RewardService, client *asynq.Client) *MemberService {
	return &MemberService{DB: db, Rewards: rewards, Client: client}
}

type RegisterMemberDTO struct {
	InviterUsername string `json:"inviterUsername"`
	Username        string `json:"username"`
	Role            string `json:"role"`
}

// Register creates the member and their wallet, then triggers reward issuance
// for the inviter's chain. referred_by is fixed at creation and only ever
// points at a pre-existing member, so referral links cannot form a cycle.
func (s *MemberService) Register(data RegisterMemberDTO) (*models.Member, error) {
	role := data.Role
	if role == "" {
		role = models.RoleMember
	}

	if data.InviterUsername != "" {
		var inviter models.Member
		if err := s.DB.Where("username = ?", data.InviterUsername).First(&inviter).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInviterNotFound
			}
			return nil, err
		}
	}

	var existing models.Member
	err := s.DB.Where("username = ?", data.Username).First(&existing).Error
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	member := models.Member{
		Username:   data.Username,
		Role:       role,
		ReferredBy: data.InviterUsername,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		wallet := models.Wallet{
			UserId:   member.ID,
			Username: member.Username,
		}
		return tx.Create(&wallet).Error
	})
	if err != nil {
		return nil, err
	}

	if data.InviterUsername != "" {
		if err := s.triggerIssuance(data.InviterUsername, member.Username); err != nil {
			// The member exists; issuance is retryable and keyed, so report
			// and move on rather than failing the registration.
			log.Printf("Reward issuance trigger failed for %s: %v", member.Username, err)
		}
	}

	return &member, nil
}

func (s *MemberService) triggerIssuance(inviterUsername, newMemberUsername string) error {
	if s.Client == nil {
		_, err := s.Rewards.IssueForRegistration(inviterUsername, newMemberUsername)
		return err
	}

	payload, err := json.Marshal(RewardIssuePayload{
		InviterUsername:   inviterUsername,
		NewMemberUsername: newMemberUsername,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TypeRewardIssue, payload)

	// A deterministic task id collapses duplicated registration triggers into
	// a single issuance run.
	_, err = s.Client.Enqueue(task, asynq.TaskID(fmt.Sprintf("reward-issue:%s", newMemberUsername)))
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return err
	}
	return nil
}
