package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spigell/cv-responder/internal/cv"
	"github.com/spigell/cv-responder/internal/qa"
	"go.uber.org/zap"
)

var askCmd = &cobra.Command{
	Use:   "ask <file|s3://bucket/key> [question...]",
	Short: "Answer questions about a CV. Without a question an interactive prompt is started",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ask(cmd, args[0], strings.Join(args[1:], " "))
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringP("format", "f", "", "document format (pdf, docx, txt). Inferred from the file extension by default")
}

func ask(cmd *cobra.Command, location, question string) {
	ctx := context.Background()
	logger, config := bootstrap()

	format, _ := cmd.Flags().GetString("format")

	doc, err := loadDocument(ctx, config, logger, location, format)
	if err != nil {
		logger.Fatal("loading document", zap.Error(err))
	}

	normalizer, err := newNormalizer(config, logger)
	if err != nil {
		logger.Fatal("configuring normalizer", zap.Error(err))
	}

	matcher, err := newMatcher(config, logger)
	if err != nil {
		logger.Fatal("configuring matcher", zap.Error(err))
	}

	model, err := normalizer.Normalize(doc.Data, doc.Format)
	if err != nil {
		logger.Fatal("normalizing document", zap.Error(err), zap.String("document", doc.Name))
	}

	if strings.TrimSpace(question) != "" {
		printAnswer(os.Stdout, matcher.Answer(question, model))
		return
	}

	if err := interactive(matcher, model); err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}
}

// interactive asks questions until the user sends an empty line or interrupts.
func interactive(matcher *qa.Matcher, model *cv.SectionModel) error {
	prompt := promptui.Prompt{
		Label: "Question (empty line to quit)",
	}

	for {
		question, err := prompt.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(question) == "" {
			return nil
		}

		printAnswer(os.Stdout, matcher.Answer(question, model))
	}
}

func printAnswer(w io.Writer, answer qa.Answer) {
	fmt.Fprintln(w, answer.Text)
	if answer.Source != "" {
		fmt.Fprintf(w, "(confidence: %s, section: %s)\n", answer.Confidence, answer.Source)
		return
	}
	fmt.Fprintf(w, "(confidence: %s)\n", answer.Confidence)
}
