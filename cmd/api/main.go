package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ninebox-hr/ninebox-backend-go/internal/config"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/grid"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/session"
	appHTTP "github.com/ninebox-hr/ninebox-backend-go/internal/handler/http"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/cron"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/database"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/events"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/jwt"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/storage"
	"github.com/ninebox-hr/ninebox-backend-go/internal/repository/postgresql"
	anomalyService "github.com/ninebox-hr/ninebox-backend-go/internal/service/anomaly"
	authService "github.com/ninebox-hr/ninebox-backend-go/internal/service/auth"
	exportService "github.com/ninebox-hr/ninebox-backend-go/internal/service/export"
	"github.com/ninebox-hr/ninebox-backend-go/internal/service/importer"
	"github.com/ninebox-hr/ninebox-backend-go/internal/service/rating"
	sessionService "github.com/ninebox-hr/ninebox-backend-go/internal/service/session"
	"github.com/ninebox-hr/ninebox-backend-go/internal/service/tracker"
)

const version = "v1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sessionRepo session.SessionRepository
	if cfg.Session.Store == "postgres" {
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			log.Fatal("Error connecting to database: ", err)
		}
		defer db.Close()

		if err := postgresql.EnsureSessionSchema(ctx, db); err != nil {
			log.Fatal("Error preparing database: ", err)
		}
		sessionRepo = postgresql.NewSessionRepository(db)
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Export.BasePath)
	if err != nil {
		log.Fatal("Failed to initialize local storage: ", err)
	}

	layout := grid.Standard()
	ratingStore := rating.NewRatingStore(layout)
	ratingTracker := tracker.NewTracker(ratingStore, layout)
	donutTracker := tracker.NewTracker(ratingStore, layout, tracker.WithDonutCell(grid.Position(cfg.Anomaly.DonutCell)))
	detector := anomalyService.NewDetector(ratingStore, anomalyService.WithMinPopulation(cfg.Anomaly.MinPopulation))
	hub := events.NewHub()

	sessionSvc := sessionService.NewSessionService(
		layout,
		ratingStore,
		ratingTracker,
		donutTracker,
		detector,
		anomalyService.NewScorer(),
		importer.NewImportService(),
		exportService.NewExportService(fileStorage, layout),
		sessionRepo,
		hub,
		sessionService.Options{ProductName: cfg.Export.ProductName},
	)

	var JWTService jwt.Service
	var tokenHandler appHTTP.TokenHandler
	if cfg.AuthEnabled() {
		JWTService = jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
		tokenHandler = appHTTP.NewTokenHandler(authService.NewAuthService(JWTService, cfg.JWT.APIKeyHash))
	}
	sessionHandler := appHTTP.NewSessionHandler(sessionSvc, hub, JWTService)

	router := appHTTP.NewRouter(JWTService, tokenHandler, sessionHandler, appHTTP.RouterOptions{
		AppName:        cfg.App.Name,
		Version:        version,
		Env:            cfg.App.Env,
		LogLevel:       cfg.SlogLevel(),
		AllowedOrigins: cfg.App.AllowedOrigins,
	})

	scheduler := cron.NewScheduler(ctx)
	if sessionRepo != nil {
		if err := cron.NewSessionJobs(sessionSvc, cfg.Session.AutosaveInterval).RegisterJobs(scheduler); err != nil {
			log.Fatal("Failed to register autosave: ", err)
		}
	}
	scheduler.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	scheduler.Stop()

	// Last chance to persist whatever changed since the previous autosave
	if err := sessionSvc.AutoSave(shutdownCtx); err != nil {
		slog.Error("Final autosave failed", "error", err)
	}
}
