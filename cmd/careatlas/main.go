package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/careatlas/careatlas/internal/adapter/cache"
	httpadapter "github.com/careatlas/careatlas/internal/adapter/http"
	"github.com/careatlas/careatlas/internal/adapter/persistence"
	"github.com/careatlas/careatlas/internal/config"
	"github.com/careatlas/careatlas/internal/domain"
	"github.com/careatlas/careatlas/internal/usecase"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/sirupsen/logrus"
)

// Version and build information
var (
	Version   = "development"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug("No .env file loaded")
	}

	var (
		version = flag.Bool("version", false, "Show version information")
		migrate = flag.Bool("migrate", false, "Run database migrations and exit")
		seed    = flag.Bool("seed", false, "Seed database with sample listings and exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("CareAtlas Directory Service\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	logger := newLogger(cfg)

	logger.WithFields(logrus.Fields{
		"version":     Version,
		"environment": cfg.Server.Environment,
	}).Info("Starting CareAtlas directory service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := initDatabase(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	if *migrate {
		if err := persistence.Migrate(db); err != nil {
			logger.WithError(err).Fatal("Failed to run migrations")
		}
		logger.Info("Migrations completed successfully")
		os.Exit(0)
	}

	listingRepo := persistence.NewPostgresListingRepository(db)
	actionRepo := persistence.NewPostgresModerationActionRepository(db)

	listingUseCase := usecase.NewListingUseCase(listingRepo, logger)
	moderationUseCase := usecase.NewModerationUseCase(listingRepo, actionRepo, logger)
	moderationUseCase.SetPageSize(cfg.Moderation.PendingPageSize)
	matchUseCase := usecase.NewMatchUseCase(listingRepo, logger, usecase.MatchConfig{
		MaxResults:       cfg.Matching.MaxResults,
		FallbackRadiusKm: cfg.Matching.FallbackRadiusKm,
		QueryTimeout:     cfg.Database.QueryTimeout,
	})

	if *seed {
		if err := seedListings(ctx, listingUseCase, moderationUseCase); err != nil {
			logger.WithError(err).Fatal("Failed to seed database")
		}
		logger.Info("Database seeded successfully")
		os.Exit(0)
	}

	limiter, err := cache.NewRateLimiter(cache.RateLimitConfig{
		Enabled:  cfg.Security.RateLimitEnabled,
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Requests: cfg.Security.RateLimitRequests,
		Window:   cfg.Security.RateLimitWindow,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize rate limiter")
	}

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JWTSecret:    cfg.Security.JWTSecret,
		CORSOrigins:  cfg.Security.CORSOrigins,
	}, listingUseCase, moderationUseCase, matchUseCase, limiter, logger)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server started successfully")

	<-sigChan
	logger.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Error during server shutdown")
	}

	logger.Info("Server stopped")
}

// newLogger configures logrus from the logging config
func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

// initDatabase initializes the database connection pool
func initDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.MaxConnections / 2)
	db.SetConnMaxLifetime(cfg.Database.MaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// seedListings creates a few approved sample listings by walking them
// through the real lifecycle: create, submit, approve.
func seedListings(ctx context.Context, listings *usecase.ListingUseCase, moderation *usecase.ModerationUseCase) error {
	samples := []usecase.CreateListingRequest{
		{
			Name:         "Calm Minds Clinic",
			Location:     "1 Collins St, Melbourne",
			Specialties:  []string{"Anxiety", "Counselling"},
			Modalities:   []string{"CBT"},
			Fee:          "$120",
			Telehealth:   true,
			Languages:    []string{"English"},
			Hours:        "Mon-Fri 9-5",
			Availability: domain.AvailabilityOpen,
		},
		{
			Name:         "Northside Wellbeing",
			Location:     "42 High St, Preston, Melbourne",
			Specialties:  []string{"Depression", "Counselling"},
			Modalities:   []string{"ACT", "CBT"},
			Fee:          "Free",
			Telehealth:   false,
			Languages:    []string{"English", "Vietnamese"},
			Hours:        "Mon-Sat 8-6",
			Availability: domain.AvailabilityLimited,
		},
		{
			Name:         "Harbour Telehealth Psychology",
			Location:     "Sydney",
			Specialties:  []string{"Anxiety", "Trauma"},
			Modalities:   []string{"EMDR"},
			Fee:          "$95",
			Telehealth:   true,
			Languages:    []string{"English", "Mandarin"},
			Hours:        "7 days 8-8",
			Availability: domain.AvailabilityOpen,
		},
	}

	for _, sample := range samples {
		listing, err := listings.Create(ctx, sample)
		if err != nil {
			return fmt.Errorf("failed to seed %q: %w", sample.Name, err)
		}
		if _, err := listings.SubmitForReview(ctx, listing.ID); err != nil {
			return fmt.Errorf("failed to submit %q: %w", sample.Name, err)
		}
		if _, err := moderation.Approve(ctx, listing.ID, "seed", usecase.VersionFromStore); err != nil {
			return fmt.Errorf("failed to approve %q: %w", sample.Name, err)
		}
	}

	return nil
}
