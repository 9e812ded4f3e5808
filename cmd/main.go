package main

import (
	"net/http"

	"github.com/Ruscigno/AlphaPulse/feed"
	"github.com/Ruscigno/AlphaPulse/logging"
	"github.com/Ruscigno/AlphaPulse/pkg/config"
	"github.com/Ruscigno/AlphaPulse/pkg/database"
	"github.com/Ruscigno/AlphaPulse/pkg/endpoint"
	"github.com/Ruscigno/AlphaPulse/pkg/metrics"
	"github.com/Ruscigno/AlphaPulse/pkg/repository"
	"github.com/Ruscigno/AlphaPulse/pkg/schema"
	"github.com/Ruscigno/AlphaPulse/pkg/service"
	httptransport "github.com/Ruscigno/AlphaPulse/pkg/transport/http"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger := logging.SetupLogger("data/logs/alphapulse.log")
	defer logger.Sync()

	// Load configuration
	cfg := config.LoadConfig()

	// Schema loader: external asset when configured, bundled table otherwise
	loader := func() (*schema.Registry, error) {
		if cfg.SchemaPath != "" {
			return schema.LoadFile(cfg.SchemaPath)
		}
		return schema.LoadDefault()
	}

	// Optional request journal backed by Postgres
	var journal repository.RequestJournal
	var health service.HealthChecker
	if cfg.DatabaseURL != "" {
		db, err := database.NewDB(database.DefaultConfig(cfg.DatabaseURL), logger)
		if err != nil {
			logger.Fatal("Database connection failed", zap.Error(err))
		}
		defer db.Close()
		if err := db.RunMigrations(); err != nil {
			logger.Fatal("Database migration failed", zap.Error(err))
		}
		journal = repository.NewRequestJournal(db, logger)
		health = service.DatabaseHealthChecker{Pinger: db}
	}

	// Optional data feed; without credentials the service only validates
	var feedConsumer feed.FeedConsumer
	if cfg.AlphaVantageKey != "" {
		feedConsumer = feed.NewAlphaVantageFeed(cfg.AlphaVantageURL, cfg.AlphaVantageKey, logger)
	}

	// Metrics
	collector := metrics.NewSimpleMetricsCollector(logger)
	appMetrics := metrics.NewApplicationMetrics(collector, logger)

	// Initialize service; a malformed schema asset aborts startup
	svc, err := service.NewService(loader, feedConsumer, journal, health, logger, appMetrics)
	if err != nil {
		logger.Fatal("Schema load failed", zap.Error(err))
	}

	// Create endpoints
	endpoints := endpoint.MakeEndpoints(svc)

	// Set up HTTP handler
	handler := httptransport.NewHTTPHandler(endpoints, httptransport.HTTPConfig{
		APIKey:            cfg.APIKey,
		MaxBodySize:       cfg.MaxBodySize,
		RequestsPerSecond: cfg.RequestsPerSecond,
		BurstSize:         cfg.BurstSize,
		Logger:            logger,
		AllowedOrigins:    []string{"*"},
	})

	// Start server
	logger.Info("Starting server", zap.String("port", cfg.HTTPPort))
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
