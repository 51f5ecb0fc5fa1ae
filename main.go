package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"reward-service/internal/database"
	"reward-service/internal/handlers"
	"reward-service/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found in current directory, trying parent")
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found, using system environment variables")
		}
	}

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}

	// Initialize Database
	database.Connect()
	database.Migrate()
	db := database.DB

	// Redis/Asynq Client
	redisAddr := os.Getenv("REDIS_URL")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer asynqClient.Close()

	// Init Services
	notifier := services.NewSettlementNotifier()
	rewardService := services.NewRewardService(db)
	settlementService := services.NewSettlementService(db, notifier)
	walletService := services.NewWalletService(db)
	memberService := services.NewMemberService(db, rewardService, asynqClient)

	// Handlers
	rewardHandler := handlers.NewRewardHandler(rewardService, settlementService)
	memberHandler := handlers.NewMemberHandler(memberService)
	walletHandler := handlers.NewWalletHandler(walletService)

	// Initialize Gin
	r := gin.Default()

	// Ping endpoint
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Welcome To Reward service",
		})
	})

	// Registration events
	r.POST("/members/register", memberHandler.Register)

	// Reward Routes
	r.GET("/rewards", rewardHandler.ListRewards)
	r.GET("/rewards/summary", rewardHandler.RewardSummary)
	r.POST("/rewards/settle", rewardHandler.SettleReward)
	r.POST("/rewards/override", rewardHandler.CreateOverrideReward)
	r.POST("/rewards/override/settle", rewardHandler.SettleOverrideReward)

	// Wallet Routes
	r.POST("/wallets", walletHandler.CreateWallet)
	r.GET("/wallets/balance", walletHandler.GetBalance)
	r.POST("/wallets/credit", walletHandler.Deposit)
	r.POST("/wallets/debit", walletHandler.Debit)

	// Start Cron Schedulers
	archiveService := services.NewTransferLogArchiveService(db)
	archiveService.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("HTTP Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
