package main

import (
	"context"                       // context package is needed for Redis operations
	"log"                           // log package is needed for logging
	"myfinance/internal/api"        // Custom package for API handlers
	"myfinance/internal/auth"       // Custom package for the credential service
	"myfinance/internal/config"     // Custom package for configuration
	"myfinance/internal/mail"       // Custom package for the mail sender
	"myfinance/internal/middleware" // Custom package for middleware

	// For loading .env files
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Construct the injected service handles, in dependency order:
	// store first, then the services built on top of it
	credentials := auth.NewService(db) // Credential service over the store
	// SMTP mail sender
	mailer := mail.NewSMTPSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/auth/register", api.RegisterHandler(db, credentials, mailer, cfg.AppBaseURL)) // Registration endpoint
	r.POST("/auth/login", api.LoginHandler(db, credentials, cfg.JWTSecret))                // Login endpoint
	r.GET("/auth/confirm-email", api.ConfirmEmailHandler(db))                              // Email confirmation endpoint
	// Current-user endpoint (protected by JWT)
	r.GET("/auth/user", middleware.JWTAuthMiddleware(cfg.JWTSecret), api.CurrentUserHandler(db))

	// Category routes (protected by JWT)
	categoryGroup := r.Group("/categories")
	categoryGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	categoryGroup.GET("", api.ListCategoriesHandler(db))                     // List endpoint, bootstraps defaults on first call
	categoryGroup.POST("", api.CreateCategoryHandler(db))                    // Create endpoint
	categoryGroup.PUT("/:id", api.UpdateCategoryHandler(db, redisClient))    // Update endpoint
	categoryGroup.DELETE("/:id", api.DeleteCategoryHandler(db, redisClient)) // Delete endpoint
	categoryGroup.POST("/restore-all", api.RestoreCategoriesHandler(db))     // Restore-defaults endpoint

	// Expense routes (protected by JWT)
	expenseGroup := r.Group("/expenses")
	expenseGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	expenseGroup.POST("", api.CreateExpenseHandler(db, redisClient))             // Create endpoint
	expenseGroup.GET("", api.ListExpensesHandler(db))                            // List endpoint
	expenseGroup.PUT("/:id", api.UpdateExpenseHandler(db, redisClient))          // Update endpoint
	expenseGroup.DELETE("/:id", api.DeleteExpenseHandler(db, redisClient))       // Delete endpoint
	expenseGroup.GET("/summary", api.SummaryHandler(db, redisClient))            // Windowed summary endpoint
	expenseGroup.GET("/summary/today", api.TodaySummaryHandler(db, redisClient)) // Today's total endpoint
	expenseGroup.GET("/summary/month", api.MonthSummaryHandler(db, redisClient)) // Monthly total endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
