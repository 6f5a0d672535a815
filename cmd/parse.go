package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spigell/cv-responder/internal/cv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file|s3://bucket/key>",
	Short: "Normalize a CV and print its sections and entities",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		parse(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringP("format", "f", "", "document format (pdf, docx, txt). Inferred from the file extension by default")
	parseCmd.Flags().StringP("output", "o", "json", "output format: json or yaml")
	parseCmd.Flags().Bool("summary", false, "print a short summary instead of the full model")
}

func parse(cmd *cobra.Command, location string) {
	ctx := context.Background()
	logger, config := bootstrap()

	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	summaryOnly, _ := cmd.Flags().GetBool("summary")

	doc, err := loadDocument(ctx, config, logger, location, format)
	if err != nil {
		logger.Fatal("loading document", zap.Error(err))
	}

	normalizer, err := newNormalizer(config, logger)
	if err != nil {
		logger.Fatal("configuring normalizer", zap.Error(err))
	}

	model, err := normalizer.Normalize(doc.Data, doc.Format)
	if err != nil {
		logger.Fatal("normalizing document", zap.Error(err), zap.String("document", doc.Name))
	}

	var payload any = model.View()
	if summaryOnly {
		payload = cv.Summarize(model)
	}

	if err := render(os.Stdout, output, payload); err != nil {
		logger.Fatal("rendering result", zap.Error(err))
	}
}

func render(w io.Writer, output string, payload any) error {
	switch output {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(payload); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unknown output format %q, expected json or yaml", output)
	}
}
