package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	config "github.com/maheshrc27/postbridge/configs"
	"github.com/maheshrc27/postbridge/internal/api"
	"github.com/maheshrc27/postbridge/internal/api/handlers"
	"github.com/maheshrc27/postbridge/internal/api/middleware"
	job "github.com/maheshrc27/postbridge/internal/jobs"
	"github.com/maheshrc27/postbridge/internal/models"
	"github.com/maheshrc27/postbridge/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	setupLogger(cfg)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		slog.Warn("Unknown timezone, using UTC", "timezone", cfg.Timezone, "error", err)
		loc = time.UTC
	}

	if len(cfg.Accounts) == 0 {
		slog.Warn("No accounts configured, set ACCOUNT_NAME_1 to add one")
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	storage := service.NewStorageProvider(*cfg, httpClient)
	threads := service.NewThreadsService(cfg.ThreadsAPIBase, httpClient)
	captions := service.NewCaptionService(cfg.CaptionFile, loc)
	notifiers := func(acc models.Account) service.Notifier {
		return service.NewNotifier(acc, httpClient, slog.Default())
	}

	postJob := job.NewPostJob(cfg.Accounts, storage, threads, captions, notifiers, loc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Schedule == "" {
		// Account failures are reported through notifications, not the exit code.
		if _, err := postJob.RunAll(ctx); err != nil {
			slog.Error("Posting run failed", "error", err)
		}
		return
	}

	c := cron.New()
	err = c.AddFunc(cfg.Schedule, func() {
		if _, err := postJob.RunAll(ctx); err != nil {
			slog.Warn("Skipping scheduled run", "error", err)
		}
	})
	if err != nil {
		log.Fatalf("Invalid SCHEDULE %q: %v", cfg.Schedule, err)
	}
	c.Start()
	slog.Info("Scheduler started", "schedule", cfg.Schedule, "accounts", len(cfg.Accounts))

	var shutdownApp func() error
	if cfg.StatusAddr != "" {
		status := handlers.NewStatusHandler(ctx, postJob)
		auth := middleware.NewAuthMiddleware(cfg.StatusAPIKey)
		app := api.NewStatusApp(status, auth)
		shutdownApp = app.Shutdown

		go func() {
			if err := app.Listen(cfg.StatusAddr); err != nil {
				log.Fatalf("Failed to start status server: %v", err)
			}
		}()
		slog.Info("Status server is running", "addr", cfg.StatusAddr)
	}

	gracefulShutdown(ctx, c, postJob, shutdownApp)
}

func setupLogger(cfg *config.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func gracefulShutdown(ctx context.Context, c *cron.Cron, postJob *job.PostJob, shutdownApp func() error) {
	<-ctx.Done()
	log.Println("Shutting down scheduler...")

	c.Stop()
	postJob.Wait()

	if shutdownApp != nil {
		if err := shutdownApp(); err != nil {
			log.Printf("Failed to shut down status server: %v", err)
		}
	}

	log.Println("Shutdown complete.")
}
