// Package main is the entry point for the reminder API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ridewise/backend/internal/config"
	"github.com/ridewise/backend/internal/eligibility"
	"github.com/ridewise/backend/internal/handler"
	"github.com/ridewise/backend/internal/middleware"
	"github.com/ridewise/backend/internal/push"
	"github.com/ridewise/backend/internal/repo"
	"github.com/ridewise/backend/internal/scheduler"
	"github.com/ridewise/backend/internal/service"
)

// maxBodySize caps request bodies. Action payloads are small; anything near
// this limit is abuse.
const maxBodySize = 1 << 20 // 1 MiB

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately, the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Repositories and services ---------------------------------------
	schedules := repo.NewScheduleRepo(pool)
	students := repo.NewStudentRepo(pool)
	bookings := repo.NewBookingRepo(pool)
	notifications := repo.NewNotificationRepo(pool)
	subscriptions := repo.NewSubscriptionRepo(pool)
	actionLog := repo.NewActionLogRepo(pool)

	eligibilityClient := eligibility.NewClient(cfg.EligibilityURL)
	sender := push.NewWebPushSender(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject)

	dispatcher := service.NewDispatcher(notifications, subscriptions, eligibilityClient,
		sender, cfg.PushConcurrency, cfg.PushTimeout)
	reminders := service.NewReminderService(schedules, students, bookings)
	pipeline := service.NewPipeline(reminders, dispatcher)
	actions := service.NewActionService(notifications, bookings, schedules, students,
		actionLog, eligibilityClient, dispatcher)
	notificationSvc := service.NewNotificationService(notifications)

	// --- Scheduler --------------------------------------------------------
	var reminderCron *scheduler.ReminderCron
	if cfg.ReminderCron != "" {
		reminderCron, err = scheduler.New(cfg.ReminderCron, func(ctx context.Context) error {
			_, err := pipeline.Run(ctx, time.Time{})
			return err
		})
		if err != nil {
			slog.Error("invalid reminder cron expression", "cron", cfg.ReminderCron, "error", err)
			os.Exit(1)
		}
		reminderCron.Start()
		slog.Info("reminder schedule active", "cron", cfg.ReminderCron)
	}

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodySize))

	server := handler.NewServer(pipeline, actions, notificationSvc)
	r.Mount("/", server.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	if reminderCron != nil {
		<-reminderCron.Stop().Done()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
