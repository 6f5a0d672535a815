package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/cv-responder/internal/cv"
	"github.com/spigell/cv-responder/internal/qa"
	"github.com/spigell/cv-responder/internal/server"
	"github.com/spigell/cv-responder/internal/source"
	"go.uber.org/zap"
)

const (
	app = "cv-responder"
)

type Config struct {
	// Vocabulary and Intents are decoded separately, see decodeKey.
	Vocabulary map[string][]string `mapstructure:"-"`
	Intents    []qa.Intent         `mapstructure:"-"`
	Skills     []string            `mapstructure:"skills"`
	Answer     AnswerConfig        `mapstructure:"answer"`
	S3         source.S3Config     `mapstructure:"s3"`
	Serve      server.Config       `mapstructure:"serve"`
}

type AnswerConfig struct {
	MaxLength int `mapstructure:"max-length"`
	MaxLines  int `mapstructure:"max-lines"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "cv-responder answers questions about a CV (PDF, DOCX or plain text) without any external model",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"s3.access-key-file": "CV_S3_ACCESS_KEY_FILE",
		"s3.secret-key-file": "CV_S3_SECRET_KEY_FILE",
		"s3.endpoint":        "CV_S3_ENDPOINT",
		"s3.region":          "CV_S3_REGION",
		"serve.listen":       "CV_LISTEN",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is cv-responder.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// A .env file is optional.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The default config file may be absent, an explicit one may not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := decodeKey("vocabulary", &config.Vocabulary); err != nil {
		return nil, err
	}
	if err := decodeKey("intents", &config.Intents); err != nil {
		return nil, err
	}

	return &config, nil
}

// decodeKey decodes a free-form config subtree strictly, so a typo in a label
// or field name fails loudly instead of being ignored.
func decodeKey(key string, result any) error {
	raw := viper.Get(key)
	if raw == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           result,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("decoding %q: %w", key, err)
	}
	return nil
}

func newNormalizer(config *Config, logger *zap.Logger) (*cv.Normalizer, error) {
	vocabulary, err := cv.DefaultVocabulary().Merge(config.Vocabulary)
	if err != nil {
		return nil, err
	}

	return cv.NewNormalizer(cv.Config{Vocabulary: vocabulary, Skills: config.Skills}, logger), nil
}

func newMatcher(config *Config, logger *zap.Logger) (*qa.Matcher, error) {
	if len(config.Intents) > 0 {
		if err := qa.ValidateIntents(config.Intents); err != nil {
			return nil, fmt.Errorf("intents: %w", err)
		}
	}

	return qa.NewMatcher(qa.Config{
		Intents:   config.Intents,
		MaxLength: config.Answer.MaxLength,
		MaxLines:  config.Answer.MaxLines,
	}, logger), nil
}
