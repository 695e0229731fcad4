package main

import (
	"context"
	"dataweave/internal/backends"
	"dataweave/internal/config"
	"dataweave/internal/database"
	"dataweave/internal/handlers"
	"dataweave/internal/jobs"
	"dataweave/internal/language"
	"dataweave/internal/logging"
	"dataweave/internal/orchestrator"
	"dataweave/internal/services"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting DataWeave Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s)", cfg.Port)

	// Language understanding service client
	languageClient := language.NewClient(language.Options{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
		RateRPS: cfg.LLMRateRPS,
	})
	log.Printf("✅ Language service client initialized (%s, model %s)", cfg.LLMBaseURL, cfg.LLMModel)

	// Prometheus metrics
	metrics := services.InitMetrics()
	log.Println("✅ Prometheus metrics initialized")

	registry := backends.NewRegistry()

	// Relational backend (optional - queries fail over to other backends)
	var db *database.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.New(cfg.DatabaseURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to SQL database: %v (sql backend unavailable)", err)
			db = nil
		} else {
			defer db.Close()
			log.Printf("✅ SQL database connected (%s)", db.Driver())
		}
	} else {
		log.Println("⚠️ DATABASE_URL not set - sql backend unavailable")
	}
	sqlExecutor := backends.NewSQLExecutor(db, languageClient)
	registry.Register(sqlExecutor.Name(), sqlExecutor)

	// Document backend (optional)
	var mongoDB *database.MongoDB
	if cfg.MongoURI != "" {
		log.Println("🔗 Connecting to MongoDB...")
		var err error
		mongoDB, err = database.NewMongoDB(cfg.MongoURI)
		if err != nil {
			log.Printf("⚠️ Failed to connect to MongoDB: %v (nosql backend unavailable)", err)
			mongoDB = nil
		} else {
			defer mongoDB.Close(context.Background())
			if err := mongoDB.Initialize(context.Background()); err != nil {
				log.Printf("⚠️ Failed to ensure MongoDB indexes: %v", err)
			}
			log.Println("✅ MongoDB connected successfully")
		}
	} else {
		log.Println("⚠️ MONGODB_URI not set - nosql backend unavailable")
	}
	mongoExecutor := backends.NewMongoExecutor(mongoDB, languageClient)
	registry.Register(mongoExecutor.Name(), mongoExecutor)

	// File archive backend (optional)
	fileExecutor, err := backends.NewFileExecutor(cfg.FilesRoot, languageClient, cfg.FileCacheTTL)
	if err != nil {
		log.Printf("⚠️ File archive unavailable at %s: %v", cfg.FilesRoot, err)
	} else {
		defer fileExecutor.Close()
		registry.Register(fileExecutor.Name(), fileExecutor)
		log.Printf("✅ File archive backend serving %s", cfg.FilesRoot)
	}

	// Redis-backed session history (optional - falls back to memory)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisService, err := services.NewRedisService(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (session history kept in memory)", err)
		} else {
			defer redisService.Close()
			redisClient = redisService.Client()
			log.Println("✅ Redis connected successfully")
		}
	} else {
		log.Println("⚠️ REDIS_URL not set - session history kept in memory")
	}

	engine := orchestrator.NewEngine(orchestrator.EngineOptions{
		Classifier:     orchestrator.NewClassifier(languageClient, metrics),
		Decomposer:     orchestrator.NewDecomposer(languageClient, metrics),
		Router:         orchestrator.NewRouter(registry, metrics, cfg.TaskTimeout),
		Clarifier:      orchestrator.NewClarifier(languageClient, metrics),
		ContextManager: orchestrator.NewContextManager(redisClient, cfg.HistorySize),
		Metrics:        metrics,
		ContextRecords: cfg.ContextRecords,
	})
	log.Println("✅ Query engine initialized")

	// Background jobs
	jobScheduler := jobs.NewJobScheduler()
	jobScheduler.Register("backend_health", jobs.NewBackendHealthChecker(registry, metrics, 30*time.Second))
	if err := jobScheduler.Start(); err != nil {
		log.Printf("⚠️ Failed to start job scheduler: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "DataWeave v1.0",
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 120 * time.Second, // language service calls dominate request latency
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("dataweave")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Handlers
	queryHandler := handlers.NewQueryHandler(engine)
	statusHandler := handlers.NewStatusHandler(registry, jobScheduler)
	historyHandler := handlers.NewHistoryHandler(engine, cfg.HistorySize)
	healthHandler := handlers.NewHealthHandler(registry)

	// Routes
	app.Get("/health", healthHandler.Handle)
	api := app.Group("/api")
	api.Post("/query", queryHandler.Handle)
	api.Get("/status", statusHandler.Handle)
	api.Get("/sessions/:id/history", historyHandler.Handle)

	log.Printf("📡 Health check: http://localhost:%s/health", cfg.Port)
	log.Printf("🔍 Query endpoint: http://localhost:%s/api/query", cfg.Port)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		jobScheduler.Stop()

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
