package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"reward-service/internal/consumers"
	"reward-service/internal/services"
)

type Worker struct {
	Processor *consumers.RewardProcessor
}

func NewWorker(processor *consumers.RewardProcessor) *Worker {
	return &Worker{
		Processor: processor,
	}
}

func (w *Worker) HandleRewardIssue(ctx context.Context, t *asynq.Task) error {
	var p consumers.RewardIssueDTO
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	if err := w.Processor.ProcessRewardIssue(p); err != nil {
		if errors.Is(err, services.ErrUplineBoundReached) {
			return fmt.Errorf("upline anomaly: %v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	return nil
}

func (w *Worker) HandlePaybackBackfill(ctx context.Context, t *asynq.Task) error {
	var p consumers.PaybackBackfillDTO
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	return w.Processor.ProcessPaybackBackfill(p)
}

func StartWorker(redisOpt asynq.RedisClientOpt, processor *consumers.RewardProcessor) {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	worker := NewWorker(processor)
	mux := asynq.NewServeMux()

	mux.HandleFunc(TypeRewardIssue, worker.HandleRewardIssue)
	mux.HandleFunc(TypePaybackBackfill, worker.HandlePaybackBackfill)

	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
