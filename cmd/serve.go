package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/cv-responder/internal/server"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload and question API over HTTP",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :8080)")
	serveCmd.Flags().String("cv", "", "a CV (file or s3://bucket/key) to load on start")

	viper.BindPFlag("serve.listen", serveCmd.Flags().Lookup("listen"))
}

func serve(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, config := bootstrap()

	logger.Info("starting the cv-responder", zap.String("version", version))

	normalizer, err := newNormalizer(config, logger)
	if err != nil {
		logger.Fatal("configuring normalizer", zap.Error(err))
	}

	matcher, err := newMatcher(config, logger)
	if err != nil {
		logger.Fatal("configuring matcher", zap.Error(err))
	}

	serverConfig := config.Serve
	serverConfig.Version = version
	srv := server.New(serverConfig, normalizer, matcher, logger)

	if location, _ := cmd.Flags().GetString("cv"); location != "" {
		src, err := loadDocument(ctx, config, logger, location, "")
		if err != nil {
			logger.Fatal("loading document", zap.Error(err))
		}

		doc, err := server.NewDocument(normalizer, src)
		if err != nil {
			logger.Fatal("normalizing document", zap.Error(err))
		}
		srv.Load(doc)
	}

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}
}
