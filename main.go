package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Check for migrate command
	migrateCmd := flag.Bool("migrate", false, "Run database migration and seed data")
	seedDemoCmd := flag.Bool("seed-demo", false, "Seed demo records (idempotent)")
	flag.Parse()

	// Local .env is optional; containers inject their environment directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	if *migrateCmd {
		if err := setupDatabase(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migration completed successfully")
		os.Exit(0)
	}
	if *seedDemoCmd {
		if err := initDB(); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		if err := seedDemoData(db); err != nil {
			log.Fatalf("Seeding demo data failed: %v", err)
		}
		log.Println("Demo data seeded")
		os.Exit(0)
	}

	secret := jwtSecret()

	// Initialize database
	if err := initDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	if err := initRedis(); err != nil {
		log.Printf("Warning: Failed to initialize Redis: %v", err)
		log.Println("Continuing without Redis cache...")
		redisClient = nil
	}

	store = &postgresStore{db: db}

	// Background recurring-rule scheduler
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go runScheduler(ctx, store, schedulerInterval())

	// Setup Gin router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Routes
	r.GET("/health", healthCheck)

	api := r.Group("/api", authRequired(secret))
	api.GET("/balance", getBalance)
	api.PUT("/balance/initial", setInitialBalance)
	api.GET("/balance/history", getBalanceHistory)
	api.GET("/budgets", getBudgets)
	api.POST("/budgets", setBudget)
	api.GET("/transactions", getTransactions)
	api.POST("/transactions", addTransaction)
	api.PUT("/transactions/:id", updateTransaction)
	api.DELETE("/transactions/:id", deleteTransaction)
	api.GET("/rules", getRules)
	api.POST("/rules", addRule)
	api.PUT("/rules/:id", updateRule)
	api.DELETE("/rules/:id", deleteRule)
	api.POST("/rules/:id/generate", generateRule)
	api.GET("/debts", getDebts)
	api.POST("/debts", addDebt)
	api.POST("/debts/:id/paid", payDebt)
	api.DELETE("/debts/:id", deleteDebt)
	api.GET("/goals", getGoals)
	api.POST("/goals", addGoal)
	api.DELETE("/goals/:id", deleteGoal)
	api.POST("/goals/:id/savings", addGoalSavings)
	api.POST("/goals/:id/withdraw", withdrawGoalSavings)
	api.GET("/categories", getCategories)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
