package services

import (
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"reward-service/pkg/common"
)

// SettlementNotifier mirrors completed settlements to the main platform via a
// webhook. Delivery is best effort: failures are logged and never block or
// roll back a settlement.
type SettlementNotifier struct {
	URL string
}

func NewSettlementNotifier() *SettlementNotifier {
	return &SettlementNotifier{URL: os.Getenv("SETTLEMENT_WEBHOOK_URL")}
}

func (n *SettlementNotifier) SettlementCompleted(rewardId, memberId int, amount, newBalance float64) {
	if n.URL == "" {
		return
	}

	// Receivers dedupe on eventId since a timed-out post may be retried by
	// the platform side.
	payload := map[string]interface{}{
		"eventId":    uuid.NewString(),
		"event":      "reward.settled",
		"rewardId":   rewardId,
		"memberId":   memberId,
		"amount":     amount,
		"newBalance": newBalance,
		"settledAt":  time.Now().Unix(),
	}

	if _, err := common.Post(n.URL, payload, nil); err != nil {
		log.Printf("Settlement webhook failed for reward %d: %v", rewardId, err)
	}
}
