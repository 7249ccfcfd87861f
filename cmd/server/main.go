package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nomad-health-backend/internal/ai"
	"nomad-health-backend/internal/api"
	"nomad-health-backend/internal/config"
	"nomad-health-backend/internal/handlers"
	"nomad-health-backend/internal/services"
	"nomad-health-backend/internal/store/postgres"
	"nomad-health-backend/internal/upload"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Info("Starting Nomad Health Backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.Warnf("Invalid LOG_LEVEL %q, using info", cfg.LogLevel)
	}

	// 2. Run Database Migrations
	if err := runMigrations(cfg.MigrationsPath, cfg.DatabaseURL); err != nil {
		logrus.Fatalf("Failed to run database migrations: %v", err)
	}
	logrus.Info("Database migrations applied.")

	// 3. Initialize Database Connection Pool
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	dbpool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("Unable to create database connection pool: %v", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(dbCtx); err != nil {
		logrus.Fatalf("Unable to ping database: %v", err)
	}
	logrus.Info("Database connection pool established.")

	// 4. Initialize Dependencies (Store, Clients, Services, Handlers)
	pgStore := postgres.NewPostgresStore(dbpool)

	uploads := upload.NewStore(cfg.UploadDir, cfg.BaseURL)
	qaClient := ai.NewQAClient(cfg)
	transcriber := ai.NewXunfeiClient(cfg.XunfeiAPIKey, cfg.XunfeiAPISecret, cfg.XunfeiHost)

	authService := services.NewAuthService(pgStore, cfg)
	consultService := services.NewConsultService(pgStore, qaClient, transcriber, uploads)
	healthService := services.NewHealthService(pgStore)

	authHandler := handlers.NewAuthHandler(authService)
	consultHandler := handlers.NewConsultHandler(consultService)
	healthHandler := handlers.NewHealthReportHandler(healthService)

	// 5. Setup Router & Inject Dependencies
	router := api.NewRouter(api.RouterDependencies{
		AuthHandler:         authHandler,
		ConsultHandler:      consultHandler,
		HealthReportHandler: healthHandler,
		Config:              cfg,
	})
	logrus.Info("HTTP router configured.")

	// 6. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// Audio uploads and live QA queries can take a while; keep the
		// read/write timeouts above the 30s upstream query timeout.
		ReadTimeout:  40 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logrus.Infof("Server listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Could not listen on %s: %v", cfg.HTTPPort, err)
		}
	}()

	<-stopChan
	logrus.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server graceful shutdown failed: %v", err)
	}

	logrus.Info("Server shutdown complete.")
}

// runMigrations applies all pending schema migrations before the server
// accepts traffic.
func runMigrations(migrationsPath, databaseURL string) error {
	m, err := migrate.New(migrationsPath, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
