package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/coacherp/coacherp/internal/auth"
	"github.com/coacherp/coacherp/internal/config"
	"github.com/coacherp/coacherp/internal/remote"
	"github.com/coacherp/coacherp/internal/remote/drive"
	"github.com/coacherp/coacherp/internal/server"
	"github.com/coacherp/coacherp/internal/service"
	"github.com/coacherp/coacherp/internal/state"
	syncengine "github.com/coacherp/coacherp/internal/sync"
	"github.com/coacherp/coacherp/pkg/logging"
)

func main() {
	logging.Setup()
	cfg := config.Load()

	// In-memory application state; the remote document is the only durable
	// copy.
	store := state.New()
	if cfg.SeedData {
		store.Hydrate(state.Seed())
		slog.Info("Loaded starter dataset",
			"students", store.StudentCount(),
			"batches", len(store.Batches()),
		)
	}

	// Auth session and remote store. The Drive client is built once against
	// the session's token source; it only works while a grant is held, and
	// the sync engine never calls out without one.
	session := auth.NewSession(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	driveClient, err := drive.New(context.Background(), session.HTTPClient())
	if err != nil {
		slog.Error("Failed to initialize drive client", "error", err)
		os.Exit(1)
	}
	locator := remote.NewLocator(driveClient, cfg.DriveFileName)

	engine := syncengine.New(syncengine.Config{
		State:         store,
		Remote:        driveClient,
		Locator:       locator,
		Debounce:      cfg.SyncDebounce,
		Metrics:       syncengine.NewMetrics(prometheus.DefaultRegisterer),
		OnAuthFailure: session.Invalidate,
	})
	store.SetOnChange(engine.NotifyChange)

	gate, err := auth.NewGate(cfg.AdminPassword)
	if err != nil {
		slog.Error("Failed to initialize admin gate", "error", err)
		os.Exit(1)
	}
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	handler := server.NewHandler(
		service.NewStudentService(store),
		service.NewFeeService(store),
		service.NewSettingsService(store),
		service.NewDashboardService(store),
		service.NewSyncService(session, engine),
		gate,
		jwtManager,
	)
	router := server.NewRouter(handler)

	slog.Info("CoachERP server starting", "address", cfg.ListenAddr, "drive_file", cfg.DriveFileName)
	if err := router.Run(cfg.ListenAddr); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
