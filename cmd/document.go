package cmd

import (
	"context"
	"log"
	"strings"

	"github.com/spf13/viper"
	"github.com/spigell/cv-responder/internal/logger"
	"github.com/spigell/cv-responder/internal/source"
	"go.uber.org/zap"
)

// bootstrap builds the logger and config every command starts from.
func bootstrap() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	return logger, config
}

// loadDocument reads location, building an S3 client only for s3:// locations.
func loadDocument(ctx context.Context, config *Config, log *zap.Logger, location, format string) (*source.Document, error) {
	loader := &source.Loader{}

	if strings.HasPrefix(location, "s3://") {
		fetcher, err := source.NewS3Fetcher(ctx, config.S3, log)
		if err != nil {
			return nil, err
		}
		loader.S3 = fetcher
	}

	doc, err := loader.Load(ctx, location, format)
	if err != nil {
		return nil, err
	}

	logger.WithDocumentFields(log, string(doc.Format), location).Debug("document loaded", zap.Int("bytes", len(doc.Data)))

	return doc, nil
}
