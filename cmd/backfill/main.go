package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"reward-service/internal/consumers"
	"reward-service/internal/worker"
)

// One-shot migration of legacy payback balances. Reads a JSON export and
// queues one payback-backfill task per entry. Tasks and the records they
// create are keyed, so the tool is safe to re-run after a partial failure.
func main() {
	file := flag.String("file", "payback_export.json", "path to the legacy payback JSON export")
	flag.Parse()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found in current directory, trying parent")
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found, using system environment variables")
		}
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read export file %s: %v", *file, err)
	}

	var entries []consumers.PaybackBackfillDTO
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Fatalf("Failed to parse export file %s: %v", *file, err)
	}

	redisAddr := os.Getenv("REDIS_URL")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer client.Close()

	queued := 0
	for _, entry := range entries {
		task, err := worker.NewPaybackBackfillTask(entry)
		if err != nil {
			log.Fatalf("Failed to build task for %s: %v", entry.BeneficiaryUsername, err)
		}

		_, err = client.Enqueue(task,
			asynq.TaskID(fmt.Sprintf("payback-backfill:%s:%s", entry.SourceUsername, entry.BeneficiaryUsername)),
			asynq.Queue("low"),
		)
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			continue
		}
		if err != nil {
			log.Fatalf("Failed to enqueue backfill for %s: %v", entry.BeneficiaryUsername, err)
		}
		queued++
	}

	log.Printf("Queued %d of %d payback backfill tasks", queued, len(entries))
}
