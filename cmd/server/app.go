package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/skydeals/skydeals-api/internal/api"
	apimiddleware "github.com/skydeals/skydeals-api/internal/api/middleware"
	"github.com/skydeals/skydeals-api/internal/config"
	"github.com/skydeals/skydeals-api/internal/platform/logger"
	"github.com/skydeals/skydeals-api/internal/platform/mail"
	"github.com/skydeals/skydeals-api/internal/platform/media"
	"github.com/skydeals/skydeals-api/internal/platform/postgres"
	"github.com/skydeals/skydeals-api/internal/service/auth"
	"github.com/skydeals/skydeals-api/internal/service/listing"
	"github.com/skydeals/skydeals-api/internal/store"
)

// mailWorkers is the size of the background notification pool.
const mailWorkers = 4

// application holds the wired dependencies for the running server.
type application struct {
	config *config.Config
	logger *slog.Logger

	db *sqlx.DB

	userStore     store.UserStore
	aircraftStore store.AircraftStore

	jwtService     auth.JWTService
	passwordHasher *auth.BcryptHasher
	googleOAuth    *auth.GoogleOAuth

	mailer     mail.Mailer
	dispatcher *mail.Dispatcher
	uploader   *media.Client

	listingService *listing.Service

	errWriter   *api.ErrorWriter
	cookies     *api.CookieIssuer
	rateLimiter *apimiddleware.RateLimiter
}

// newApplication loads configuration and wires every component. Callers
// must invoke cleanup when done.
func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("setting up logger: %w", err)
	}

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := postgres.RunMigrations(ctx, db.DB); err != nil {
		return nil, err
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	hasher := auth.NewBcryptHasher()
	userStore := postgres.NewUserStore(db, hasher, log)
	aircraftStore := postgres.NewAircraftStore(db, log)

	uploader, err := media.NewClient(cfg.Media)
	if err != nil {
		return nil, fmt.Errorf("creating media client: %w", err)
	}
	if err := uploader.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("preparing media bucket: %w", err)
	}

	mailer, err := mail.NewSMTPMailer(cfg.Mail)
	if err != nil {
		return nil, fmt.Errorf("creating mailer: %w", err)
	}
	dispatcher, err := mail.NewDispatcher(mailer, mailWorkers, log)
	if err != nil {
		return nil, fmt.Errorf("creating mail dispatcher: %w", err)
	}

	app := &application{
		config:         cfg,
		logger:         log,
		db:             db,
		userStore:      userStore,
		aircraftStore:  aircraftStore,
		jwtService:     jwtService,
		passwordHasher: hasher,
		googleOAuth:    auth.NewGoogleOAuth(cfg.OAuth),
		mailer:         mailer,
		dispatcher:     dispatcher,
		uploader:       uploader,
		listingService: listing.NewService(aircraftStore, userStore, uploader, dispatcher),
		errWriter:      api.NewErrorWriter(cfg.Server),
		cookies:        api.NewCookieIssuer(cfg.Server, cfg.Auth),
	}
	return app, nil
}

// cleanup releases long-lived resources during shutdown.
func (app *application) cleanup() {
	if app.rateLimiter != nil {
		app.rateLimiter.Stop()
	}
	app.dispatcher.Close()
	if err := app.db.Close(); err != nil {
		app.logger.Error("closing database", "error", err)
	}
}

// openDatabase connects and configures the connection pool.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("opening database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}
