package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/xaenox/sms-sentinel/internal/classifier"
	"github.com/xaenox/sms-sentinel/internal/features"
	"github.com/xaenox/sms-sentinel/internal/pipeline"
	"github.com/xaenox/sms-sentinel/internal/review"
	"github.com/xaenox/sms-sentinel/internal/storage"
	"github.com/xaenox/sms-sentinel/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		store, err = storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		})
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Assemble the classification pipeline
	extractor := features.NewExtractor(cfg.Extractor.MaxBodyLength)
	otp := classifier.NewOTPClassifier(classifier.Thresholds{
		Upper: cfg.Classifier.OTPUpperThreshold,
		Lower: cfg.Classifier.OTPLowerThreshold,
	})
	phishing := classifier.NewPhishingClassifier(classifier.Thresholds{
		Upper: cfg.Classifier.PhishUpperThreshold,
		Lower: cfg.Classifier.PhishLowerThreshold,
	})
	coord := pipeline.NewCoordinator(extractor, otp, phishing, cfg.Classifier.Version, logger)
	p := pipeline.New(coord, store, cfg.Pipeline.Workers, logger)

	// Run one re-classification sweep over everything pending at the
	// configured version
	stats, err := p.Sweep(context.Background())
	if err != nil {
		logger.Fatal("Sweep failed", zap.Error(err))
	}

	logger.Info("Done",
		zap.Int("loaded", stats.Loaded),
		zap.Int("classified", stats.Classified),
		zap.Int("skipped", stats.Skipped),
		zap.Int("degraded", stats.Degraded),
		zap.Int("failed", stats.Failed))

	// Report what the sweep left for human review
	queue, err := review.NewManager(store, cfg.Classifier.Version, logger).PendingReview(context.Background())
	if err != nil {
		logger.Fatal("Failed to list review queue", zap.Error(err))
	}
	logger.Info("Review queue", zap.Int("pending", len(queue)))
}
