package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lppm-form-api/config"
	"lppm-form-api/controllers"
	"lppm-form-api/middleware"
	"lppm-form-api/models"
	"lppm-form-api/routes"
	"lppm-form-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if closer := config.InitLogging(); closer != nil {
		defer closer.Close()
	}

	cfg := config.Load()
	warnings, err := cfg.Validate()
	for _, w := range warnings {
		log.Printf("Warning: %s", w)
	}
	if err != nil {
		log.Fatal("❌ Invalid configuration: ", err)
	}

	if err := config.InitDB(cfg); err != nil {
		log.Fatal("❌ Failed to connect database: ", err)
	}
	if cfg.AutoMigrate {
		if err := config.DB.AutoMigrate(models.AllModels()...); err != nil {
			log.Fatal("❌ Auto migration failed: ", err)
		}
		log.Println("Auto migration completed")
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(config.LogWriter))
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.RequestMetrics())
	router.MaxMultipartMemory = int64(cfg.MaxUploadMB) << 20

	registry := services.DefaultFormRegistry()
	submissions := buildSubmissionService(cfg, registry)
	adminQueries := services.NewAdminQueryService(config.DB, registry)
	adminController := controllers.NewAdminController(adminQueries)

	routes.SetupRoutes(router, routes.Dependencies{
		Auth:        controllers.NewAuthController(adminQueries, cfg.JWTSecret, cfg.TokenTTL),
		Submissions: controllers.NewSubmissionController(submissions, int64(cfg.MaxUploadMB)<<20),
		Admin:       adminController,
		JWTSecret:   cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on port %s", cfg.Port)
		log.Printf("📄 Form types: %v", registry.Keys())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("❌ Failed to start server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Let in-flight notification emails finish.
	submissions.Wait()
	log.Println("Server exited")
}

func buildSubmissionService(cfg config.AppConfig, registry services.FormRegistry) *services.SubmissionService {
	var storage services.ObjectStorage
	if cfg.StorageEnabled() {
		storage = services.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseServiceKey, 0)
	}

	var converter services.DocumentConverter
	if cfg.CloudConvertAPIKey != "" {
		converter = services.NewCloudConvertService(cfg.CloudConvertAPIKey, cfg.CloudConvertBaseURL, cfg.ConvertTimeout, nil)
	}

	var notifier services.SubmissionNotifier
	if cfg.MailEnabled() {
		notifier = services.NewNotificationService(config.NewSMTPMailer(cfg), cfg.OpsMailbox)
	}

	return services.NewSubmissionService(
		config.DB,
		registry,
		services.NewDocxRenderer(cfg.TemplateDir),
		storage,
		converter,
		notifier,
		services.SubmissionOptions{
			DocumentBucket: cfg.DocumentBucket,
			UploadBucket:   cfg.UploadBucket,
		},
	)
}
