package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dojo-admin/internal/app"
	"dojo-admin/internal/config"
	"dojo-admin/internal/infrastructure/database/postgres"
	"dojo-admin/internal/logger"
	"dojo-admin/internal/routes"
	"dojo-admin/internal/usecase/reminder"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	envFile := pflag.String("env-file", ".env", "path to a dotenv file with configuration")
	migrate := pflag.Bool("migrate", true, "create or update tables on startup")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
	)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if *migrate {
		if err := db.Migrate(); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(rootCtx, cfg, db)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}

	go application.Users.StartResetCleanupJob(rootCtx, cfg.App.ResetCleanupInterval)

	var scheduler *reminder.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler, err = reminder.NewScheduler(application.Reminders, cfg.Scheduler.ReminderCron, application.Location, cfg.Notification.Timeout)
		if err != nil {
			logger.Fatal("Failed to start reminder scheduler", zap.Error(err))
		}
		scheduler.Start()
	}

	router := routes.SetupRoutes(application)

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-rootCtx.Done()
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", zap.Error(err))
	}
	if scheduler != nil {
		if err := scheduler.Stop(ctx); err != nil {
			logger.Error("Reminder scheduler did not stop in time", zap.Error(err))
		}
	}
	if err := application.Close(ctx); err != nil {
		logger.Error("Failed to release resources", zap.Error(err))
	}

	log.Println("Server exited properly")
}
