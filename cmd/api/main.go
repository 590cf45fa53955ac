package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"debo-engineering/job-portal/internal/config"
	"debo-engineering/job-portal/internal/handlers"
	"debo-engineering/job-portal/internal/logger"
	"debo-engineering/job-portal/internal/metrics"
	"debo-engineering/job-portal/internal/repositories"
	"debo-engineering/job-portal/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	log.Println("✅ Config loaded successfully")

	appLog := logger.NewStructured(cfg.Log.Level, cfg.Log.Format)
	defer appLog.Sync()

	ctx := context.Background()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	applicationRepo := repositories.NewApplicationRepository(db)
	settingRepo := repositories.NewSettingRepository(db)
	emailTemplateRepo := repositories.NewEmailTemplateRepository(db)
	auditLogRepo := repositories.NewAuditLogRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.MaxFileSize)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	analyzer := services.NewResumeAnalyzer(services.NewPDFParserService(), appLog)

	mailer, err := services.NewMailer(ctx, services.MailerConfig{
		Provider:     cfg.Email.Provider,
		FromName:     cfg.Email.FromName,
		FromAddress:  cfg.Email.FromAddress,
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUser:     cfg.Email.SMTPUser,
		SMTPPassword: cfg.Email.SMTPPassword,
		SESRegion:    cfg.Email.SESRegion,
	}, appLog)
	if err != nil {
		log.Fatalf("❌ Failed to initialize mailer: %v", err)
	}
	notifier := services.NewNotifier(mailer, emailTemplateRepo, cfg.Email.FromName, appLog)
	log.Printf("✅ Mailer initialized (%s)\n", cfg.Email.Provider)

	limiter := services.NewNoopRateLimiter()
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("❌ Redis unreachable, rate limits will fail open: %v", err)
		} else {
			log.Println("✅ Redis connected successfully")
		}
		limiter = services.NewRedisRateLimiter(redisClient, appLog)
	}

	jobIndex, closeIndex, err := services.NewJobIndexFromConfig(ctx,
		cfg.Gemini.APIKey,
		cfg.Gemini.EmbedModel,
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		appLog,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize job index: %v", err)
	}
	defer closeIndex()

	if jobIndex.Enabled() {
		if err := jobIndex.InitCollection(ctx); err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
		}
		log.Println("✅ Qdrant job index initialized successfully")
	} else {
		log.Println("✅ Semantic job index disabled, using skill matching")
	}

	auditService := services.NewAuditService(auditLogRepo, appLog)
	tokens := services.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	authService := services.NewAuthService(userRepo, tokens, storageService, analyzer, notifier, limiter, services.AuthSettings{
		ResetTokenTTL: cfg.Auth.ResetTokenTTL,
		FrontendURL:   cfg.Auth.FrontendURL,
		LoginRate:     services.RateLimit{Limit: cfg.RateLimit.LoginLimit, Window: cfg.RateLimit.LoginWindow},
	}, appLog)
	jobService := services.NewJobService(jobRepo, userRepo, jobIndex, auditService, appLog)
	applicationService := services.NewApplicationService(
		applicationRepo,
		jobRepo,
		userRepo,
		storageService,
		analyzer,
		notifier,
		auditService,
		limiter,
		services.RateLimit{Limit: cfg.RateLimit.ApplyLimit, Window: cfg.RateLimit.ApplyWindow},
		appLog,
	)
	adminService := services.NewAdminService(services.AdminRepositories{
		Users:          userRepo,
		Jobs:           jobRepo,
		Applications:   applicationRepo,
		Settings:       settingRepo,
		EmailTemplates: emailTemplateRepo,
		AuditLogs:      auditLogRepo,
	}, auditService, notifier, analyzer, storageService, appLog)
	log.Println("✅ Services initialized successfully")

	// Initialize handlers
	routes := handlers.Handlers{
		Auth:         handlers.NewAuthHandler(authService, cfg.Auth.CookieName, cfg.Auth.TokenTTL, !cfg.IsDevelopment()),
		Jobs:         handlers.NewJobHandler(jobService),
		Applications: handlers.NewApplicationHandler(applicationService),
		Admin:        handlers.NewAdminHandler(adminService),
		Middleware:   handlers.NewAuthMiddleware(tokens, cfg.Auth.CookieName),
	}
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "DEBO Job Portal API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler(appLog),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: cfg.Server.CORSOrigins != "*",
	}))
	app.Use(metrics.Middleware())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Routes
	api := app.Group("/api/v1")
	handlers.RegisterRoutes(api, routes)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "DEBO Job Portal API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/auth/register",
				"POST /api/v1/auth/login",
				"GET /api/v1/jobs",
				"POST /api/v1/applications",
				"GET /api/v1/applications/:id/status",
				"GET /api/v1/admin/stats",
				"GET /metrics",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
