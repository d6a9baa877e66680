package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/harborhealth/clinic-scheduler/internal/api/router"
	"github.com/harborhealth/clinic-scheduler/internal/appointments"
	"github.com/harborhealth/clinic-scheduler/internal/availability"
	"github.com/harborhealth/clinic-scheduler/internal/calendar"
	appconfig "github.com/harborhealth/clinic-scheduler/internal/config"
	"github.com/harborhealth/clinic-scheduler/internal/doctors"
	"github.com/harborhealth/clinic-scheduler/internal/notify"
	"github.com/harborhealth/clinic-scheduler/internal/observability/metrics"
	"github.com/harborhealth/clinic-scheduler/internal/schedule"
	"github.com/harborhealth/clinic-scheduler/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.NewWithFormat(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting clinic-scheduler API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"clinic_timezone", cfg.ClinicTimezone,
	)

	cal, err := calendar.New(cfg.ClinicTimezone)
	if err != nil {
		logger.Error("failed to load clinic timezone", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to ping postgres", "error", err)
		os.Exit(1)
	}

	directoryDB, err := doctors.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open directory database", "error", err)
		os.Exit(1)
	}
	defer directoryDB.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("failed to ping redis", "error", err)
		os.Exit(1)
	}

	schedulingMetrics := metrics.NewSchedulingMetrics(nil)
	window := availability.Window{Open: cfg.GridOpen, Close: cfg.GridClose}

	templateStore := availability.NewStore(rdb)
	availabilityService := availability.NewService(templateStore, window, schedulingMetrics, logger)

	appointmentsRepo := appointments.NewRepository(pool)

	var sender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		sender = sg
	} else {
		logger.Warn("sendgrid not configured, email notifications disabled")
		sender = notify.NewStubEmailSender(logger)
	}
	notifier := notify.NewService(sender, notify.NewContactStore(rdb), cal, logger)

	appointmentsService := appointments.NewService(
		appointmentsRepo, templateStore, cal, cfg.MinLeadTime, notifier, schedulingMetrics, logger)

	scheduleService := schedule.NewService(templateStore, appointmentsRepo, cal, schedule.Config{
		MinLeadTime:      cfg.MinLeadTime,
		RollForwardLimit: cfg.RollForwardDays,
		Window:           window,
	}, schedulingMetrics, logger)

	doctorsStore := doctors.NewStore(directoryDB)

	r := router.New(&router.Config{
		Logger:              logger,
		DoctorsHandler:      doctors.NewHandler(doctorsStore, logger),
		ScheduleHandler:     schedule.NewHandler(scheduleService, logger),
		AvailabilityHandler: availability.NewHandler(availabilityService, logger),
		AppointmentsHandler: appointments.NewHandler(appointmentsService, logger),
		MetricsHandler:      promhttp.Handler(),
		AuthSecret:          cfg.AuthJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerSecond:  cfg.RateLimitPerSecond,
		RateLimitBurst:      cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
