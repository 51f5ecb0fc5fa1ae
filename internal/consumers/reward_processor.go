package consumers

import (
	"errors"
	"log"

	"reward-service/internal/services"
)

// RewardProcessor executes queued reward work. Both task kinds are keyed at
// the record level, so asynq retries after a partial failure converge on the
// same final set of reward records.
type RewardProcessor struct {
	Rewards *services.RewardService
}

func NewRewardProcessor(rewards *services.RewardService) *RewardProcessor {
	return &RewardProcessor{Rewards: rewards}
}

type RewardIssueDTO struct {
	InviterUsername   string `json:"inviterUsername"`
	NewMemberUsername string `json:"newMemberUsername"`
}

func (p *RewardProcessor) ProcessRewardIssue(data RewardIssueDTO) error {
	result, err := p.Rewards.IssueForRegistration(data.InviterUsername, data.NewMemberUsername)
	if err != nil {
		if errors.Is(err, services.ErrUplineBoundReached) {
			// Anomaly, not transient: the gathered records were written, a
			// retry cannot fix the chain.
			log.Printf("Upline bound reached issuing rewards for %s: %v", data.NewMemberUsername, err)
			return err
		}
		return err
	}

	issued := len(result.NetworkRewards)
	if result.DirectReward != nil {
		issued++
	}
	log.Printf("Issued %d reward records for registration of %s (invited by %s)",
		issued, data.NewMemberUsername, data.InviterUsername)
	return nil
}

type PaybackBackfillDTO struct {
	BeneficiaryUsername string  `json:"beneficiaryUsername"`
	SourceUsername      string  `json:"sourceUsername"`
	Amount              float64 `json:"amount"`
}

func (p *RewardProcessor) ProcessPaybackBackfill(data PaybackBackfillDTO) error {
	_, err := p.Rewards.BackfillPaybackReward(services.PaybackBackfillDTO{
		BeneficiaryUsername: data.BeneficiaryUsername,
		SourceUsername:      data.SourceUsername,
		Amount:              data.Amount,
	})
	if err != nil {
		return err
	}
	log.Printf("Backfilled payback reward for %s (source %s)", data.BeneficiaryUsername, data.SourceUsername)
	return nil
}
