package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stockflow/config"
	"stockflow/internal/blob"
	"stockflow/internal/httpapi"
	"stockflow/internal/metrics"
	"stockflow/internal/service"
	"stockflow/internal/store"
	"stockflow/logger"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(config.ResolveConfigPath(*configPath))
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service":     cfg.Stockflow.Name,
		"version":     cfg.Stockflow.Version,
		"environment": config.AppEnvironment(),
	}).Info("starting stockflow")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
	defer cancel()

	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.WithError(err).Error("failed to connect to mongo")
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.WithError(err).Warn("failed to disconnect from mongo")
		}
	}()

	if err := mongoClient.Ping(connectCtx, nil); err != nil {
		log.WithError(err).Error("failed to ping mongo")
		os.Exit(1)
	}

	s3Client, err := blob.NewS3Client(ctx, cfg.Storage.S3)
	if err != nil {
		log.WithError(err).Error("failed to build s3 client")
		os.Exit(1)
	}

	metaStore := store.NewMetadataStore(mongoClient.Database(cfg.Mongo.Database), cfg.Mongo.Collection, log)
	seriesStore := blob.NewSeriesStore(s3Client, cfg.Storage.S3.Bucket, cfg.Storage.S3.Prefix, log)
	stocks := service.New(metaStore, seriesStore, log)

	reporter, err := metrics.NewReporter(ctx, cfg.Metrics.CloudWatch, log)
	if err != nil {
		log.WithError(err).Warn("failed to initialise CloudWatch metrics; publishing disabled")
		reporter = nil
	}
	reporter.Start(ctx)

	server := httpapi.NewServer(cfg.Server, stocks, reporter, log)
	if err := server.Run(ctx); err != nil {
		log.WithError(err).Error("http server failed")
		os.Exit(1)
	}

	log.Info("stockflow stopped")
}
