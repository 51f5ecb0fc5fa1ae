package worker

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"reward-service/internal/consumers"
)

// Task Types
const (
	TypeRewardIssue     = "reward-issue"
	TypePaybackBackfill = "payback-backfill"
)

// Task Creators

func NewPaybackBackfillTask(payload consumers.PaybackBackfillDTO) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePaybackBackfill, data), nil
}
