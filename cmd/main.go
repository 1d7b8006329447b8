package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/internal/handler"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/internal/repositories"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/internal/router"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/internal/service"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/database"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/envconfig"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/flags"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/logger"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/shutdownsetup"
)

func main() {
	flagConfig := flags.Parse()
	if err := flagConfig.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	envErr := envconfig.LoadEnvFile(".env")

	appLogger := logger.New(logger.Config{
		Level:        envconfig.GetLogLevel(),
		Format:       envconfig.GetEnv("LOG_FORMAT", "json"),
		Output:       envconfig.GetEnv("LOG_OUTPUT", "stdout"),
		EnableCaller: envconfig.GetEnv("LOG_ENABLE_CALLER", "true") == "true",
		Environment:  envconfig.GetEnv("ENVIRONMENT", "development"),
	})
	defer appLogger.Close()

	if envErr != nil {
		appLogger.Debug("No .env file loaded", "error", envErr)
	}

	appLogger.Info("Starting Swaad-e-Bihar order service",
		"environment", envconfig.GetEnv("ENVIRONMENT", "development"))

	dbConfig := envconfig.LoadDatabaseConfig()
	// An explicit --db flag wins over DB_PATH.
	if flagConfig.DBPath != flags.DefaultConfig().DBPath {
		dbConfig.Path = flagConfig.DBPath
	}

	db, err := database.NewConnection(dbConfig, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open database", "path", dbConfig.Path, "error", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Failed to close database", "error", err)
		}
	}()

	if err := db.HealthCheck(); err != nil {
		appLogger.Fatal("Database health check failed", "error", err)
	}

	menuRepo := repositories.NewMenuRepository(appLogger, db)
	orderRepo := repositories.NewOrderRepository(appLogger, db)
	eventRepo := repositories.NewEventRepository(appLogger, db)
	auditRepo := repositories.NewAuditRepository(appLogger, db)

	cartService := service.NewCartService(appLogger, menuRepo)
	orderService := service.NewOrderService(appLogger, orderRepo, eventRepo, cartService)
	analyticsService := service.NewAnalyticsService(appLogger, orderRepo, menuRepo)
	exportService := service.NewExportService(appLogger, orderRepo, auditRepo)

	mux := router.New(appLogger, router.Handlers{
		Orders: handler.NewOrderHandler(orderService, appLogger),
		Admin:  handler.NewAdminHandler(analyticsService, exportService, appLogger),
		Menu:   handler.NewMenuHandler(menuRepo, appLogger),
		Health: func(w http.ResponseWriter, r *http.Request) {
			if err := db.HealthCheck(); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		},
	})

	host := envconfig.GetEnv("HOST", "")
	port := flagConfig.Port
	if port == "" {
		port = envconfig.GetEnv("PORT", "8080")
	}

	server := &http.Server{
		Addr:         host + ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("HTTP server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Server error", "error", err)
		}
	}()

	shutdownsetup.SetupGracefulShutdown(server, appLogger)
}
