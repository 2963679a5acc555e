package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-planner/internal/config"
	"task-planner/internal/logging"
	"task-planner/internal/mailer"
	"task-planner/internal/repository"
	"task-planner/internal/service"
	"task-planner/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.New(nil, "info").Fatal("config", "err", err)
	}
	logger := logging.New(nil, cfg.LogLevel)

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db", "err", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	occurrenceRepo := repository.NewOccurrenceRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)

	authSvc := service.NewAuthService(userRepo)
	seriesSvc := service.NewSeriesService(occurrenceRepo)
	scheduleSvc := service.NewScheduleService(occurrenceRepo)
	exportSvc := service.NewExportService(occurrenceRepo)

	var verificationSvc *service.VerificationService
	var digestSvc *service.DigestService
	if cfg.Mail != nil {
		sender, err := mailer.NewSMTP(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From)
		if err != nil {
			logger.Fatal("mailer", "err", err)
		}
		verificationSvc = service.NewVerificationService(verificationRepo, userRepo, authSvc, sender)
		digestSvc = service.NewDigestService(scheduleSvc, userRepo, sender)
	} else {
		logger.Warn("mail not configured; verification and digest disabled")
	}

	scheduler := service.NewSchedulerService(time.Local)
	if verificationSvc != nil && cfg.PurgeInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.PurgeInterval, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if n, err := verificationSvc.PurgeExpired(jobCtx); err != nil {
				logger.Error("purge verification codes", "err", err)
			} else if n > 0 {
				logger.Debug("purged verification codes", "count", n)
			}
		}); err != nil {
			logger.Fatal("schedule purge", "err", err)
		}
	}
	if digestSvc != nil && cfg.DigestTime != "" {
		if _, err := scheduler.ScheduleDaily(cfg.DigestTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if err := digestSvc.SendDailyDigests(jobCtx, time.Now()); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("daily digest", "err", err)
			}
		}); err != nil {
			logger.Fatal("schedule digest", "err", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := web.New(logger, cfg.SessionSecret, authSvc, seriesSvc, scheduleSvc, verificationSvc, exportSvc)
	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}()

	logger.Info("task planner started", "listen", cfg.Listen)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped with error", "err", err)
	}
	logger.Info("shutdown complete")
}
