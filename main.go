package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"ms-boxoffice/internal/admin/admin_api"
	"ms-boxoffice/internal/auth"
	"ms-boxoffice/internal/booking/booking_api"
	"ms-boxoffice/internal/config"
	"ms-boxoffice/internal/ledger"
	"ms-boxoffice/internal/logger"
	"ms-boxoffice/internal/passes"
	"ms-boxoffice/internal/persistence"
	"ms-boxoffice/internal/recorder"
	"ms-boxoffice/internal/store"
	"ms-boxoffice/internal/workflow"
)

// openPersistence selects and verifies the configured persistence adapter.
func openPersistence(ctx context.Context, cfg *config.Config, log *logger.Logger) persistence.Store {
	switch cfg.Storage.Driver {
	case "redis":
		var client *redis.Client
		var err error
		maxRetries := 5

		for i := 0; i < maxRetries; i++ {
			log.Info("DATABASE", fmt.Sprintf("Attempting to connect to Redis (attempt %d/%d)", i+1, maxRetries))
			client = redis.NewClient(&redis.Options{
				Addr: cfg.Redis.Addr,
			})
			err = client.Ping(ctx).Err()
			if err == nil {
				break
			}
			log.Error("DATABASE", fmt.Sprintf("Failed to connect to Redis: %v", err))
			client.Close()
			if i < maxRetries-1 {
				time.Sleep(2 * time.Second)
			}
		}
		if err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Redis after %d attempts: %v", maxRetries, err))
		}
		log.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Redis.Addr))
		return persistence.NewRedis(client)

	case "sqlite":
		db, err := persistence.NewSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Failed to open SQLite store: %v", err))
		}
		log.Info("DATABASE", fmt.Sprintf("✅ SQLite store opened at %s", cfg.Storage.SQLitePath))
		return db

	case "memory":
		log.Warn("DATABASE", "Using in-memory storage, state will not survive a restart")
		return persistence.NewMemory()

	default:
		log.Fatal("CONFIG", fmt.Sprintf("Unknown STORAGE_DRIVER %q", cfg.Storage.Driver))
		return nil
	}
}

// buildRecorder picks the external recording collaborator. No configured
// endpoint is a valid state: issuance simply skips the recording step.
func buildRecorder(cfg *config.Config, log *logger.Logger) recorder.Recorder {
	if cfg.Kafka.Enabled {
		if err := recorder.EnsureTopicExists(cfg.Kafka.Brokers, cfg.Kafka.Topic); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", fmt.Sprintf("Recording topic %s ensured", cfg.Kafka.Topic))
		}
		log.Info("KAFKA", fmt.Sprintf("Kafka recorder initialized for brokers %v", cfg.Kafka.Brokers))
		return recorder.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	if cfg.Recorder.WebhookURL != "" {
		log.Info("RECORDER", fmt.Sprintf("Webhook recorder initialized for %s", cfg.Recorder.WebhookURL))
		return recorder.NewWebhook(cfg.Recorder.WebhookURL, &http.Client{
			Timeout: cfg.Recorder.Timeout,
		})
	}

	log.Info("RECORDER", "No recording endpoint configured, issuance will skip the recording step")
	return recorder.Noop{}
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Box Office service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	persist := openPersistence(ctx, cfg, log)
	defer persist.Close()

	snap, err := persistence.LoadSnapshot(ctx, persist, persistence.Snapshot{
		Max:  cfg.Event.BaselineMax,
		Sold: cfg.Event.BaselineSold,
	})
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to load state snapshot: %v", err))
	}
	log.Info("APP", fmt.Sprintf("State loaded: %d/%d sold, %d ticket(s) in history", snap.Sold, snap.Max, len(snap.History)))

	led := ledger.New(snap.Max, snap.Sold)
	ticketStore := store.New(snap.History)
	rec := buildRecorder(cfg, log)

	wf := workflow.New(led, ticketStore, persist, rec, cfg.Event, cfg.Approval.ReviewDelay, log)
	exporter := passes.NewPDFExporter(cfg.Event, cfg.Export.FontPath)

	bookingHandler := booking_api.NewHandler(wf, exporter, cfg.Event, log)
	adminHandler := admin_api.NewHandler(wf, cfg.Event, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	// --- Public Routes ---
	r.Route("/api", func(r chi.Router) {
		r.Get("/event", bookingHandler.GetEvent)

		r.Route("/booking", func(r chi.Router) {
			r.Get("/", bookingHandler.GetBookingState)
			r.Post("/", bookingHandler.SubmitBooking)
			r.Post("/approve", bookingHandler.ApproveBooking)
			r.Post("/reset", bookingHandler.ResetBooking)
		})
		log.Info("ROUTER", "Booking routes registered under /api/booking")

		r.Route("/tickets", func(r chi.Router) {
			r.Get("/{ticketID}", bookingHandler.ViewTicket)
			r.Get("/{ticketID}/qr", bookingHandler.TicketQR)
			r.Get("/{ticketID}/export", bookingHandler.ExportTicket)
		})
		log.Info("ROUTER", "Ticket routes registered under /api/tickets")

		// --- Operator Routes ---
		r.Group(func(r chi.Router) {
			r.Use(auth.OperatorOnly(cfg.Operator.Token))
			adminHandler.RegisterRoutes(r)
		})
		log.Info("ROUTER", "Operator routes registered under /api/admin")
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Box Office service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Box Office service shutdown complete")
	}
}
