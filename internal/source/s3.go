package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spigell/cv-responder/internal/logger"
	"github.com/spigell/cv-responder/internal/secrets"
	"go.uber.org/zap"
)

const (
	defaultS3Region   = "auto"
	defaultS3Attempts = 3

	// AccessKeyEnv and SecretKeyEnv hold static credentials when no key files are configured.
	AccessKeyEnv = "CV_S3_ACCESS_KEY"
	SecretKeyEnv = "CV_S3_SECRET_KEY"
)

// S3Config describes an S3 compatible endpoint (AWS, R2, MinIO).
type S3Config struct {
	Region        string `mapstructure:"region"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKeyFile string `mapstructure:"access-key-file"`
	SecretKeyFile string `mapstructure:"secret-key-file"`
	Attempts      int    `mapstructure:"attempts"`
}

// staticCredentials reports whether a key file or the access key variable is set.
func (c S3Config) staticCredentials() bool {
	return strings.TrimSpace(c.AccessKeyFile) != "" ||
		strings.TrimSpace(c.SecretKeyFile) != "" ||
		strings.TrimSpace(os.Getenv(AccessKeyEnv)) != ""
}

// S3Fetcher downloads objects with retries.
type S3Fetcher struct {
	client   *s3.Client
	attempts int
	backoff  time.Duration
	logger   *zap.Logger
}

// NewS3Fetcher builds a client. With key files or CV_S3_ACCESS_KEY set it uses
// static credentials, a file taking precedence over the variable. Otherwise the
// default AWS credential chain applies.
func NewS3Fetcher(ctx context.Context, cfg S3Config, log *zap.Logger) (*S3Fetcher, error) {
	region := cfg.Region
	if region == "" {
		region = defaultS3Region
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}

	if cfg.staticCredentials() {
		accessKey, secretKey, err := secrets.LoadPair(
			secrets.Source{Name: "s3 access key", File: cfg.AccessKeyFile, Env: AccessKeyEnv},
			secrets.Source{Name: "s3 secret key", File: cfg.SecretKeyFile, Env: SecretKeyEnv},
		)
		if err != nil {
			return nil, err
		}
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = defaultS3Attempts
	}

	return &S3Fetcher{
		client:   client,
		attempts: attempts,
		backoff:  500 * time.Millisecond,
		logger:   logger.WithFields(log, zap.String("component", "s3")),
	}, nil
}

// Fetch downloads bucket/key, retrying transient failures.
func (f *S3Fetcher) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	return retry(ctx, f.attempts, f.backoff, func() ([]byte, error) {
		data, err := f.download(ctx, bucket, key)
		if err != nil {
			f.logger.Warn("object download failed", zap.String("bucket", bucket), zap.String("key", key), zap.Error(err))
		}
		return data, err
	})
}

func (f *S3Fetcher) download(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, io.LimitReader(out.Body, MaxDocumentBytes+1)); err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return buf.Bytes(), nil
}

// retry calls fn up to attempts times with a linearly growing pause between calls.
func retry[T any](ctx context.Context, attempts int, backoff time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoff * time.Duration(i+1)):
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
