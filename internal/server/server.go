// Package server exposes the normalizer and the matcher over HTTP. It holds at
// most one loaded CV; uploading a new one replaces it atomically while questions
// already in flight finish against the previous model.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spigell/cv-responder/internal/cv"
	"github.com/spigell/cv-responder/internal/logger"
	"github.com/spigell/cv-responder/internal/qa"
	"go.uber.org/zap"
)

const (
	defaultListen         = ":8080"
	defaultMaxUploadBytes = 10 << 20
	shutdownTimeout       = 10 * time.Second
)

// Config configures the HTTP surface.
type Config struct {
	Listen         string `mapstructure:"listen"`
	MaxUploadBytes int64  `mapstructure:"max-upload-bytes"`
	Version        string `mapstructure:"-"`
}

// Document is a normalized CV held by the server.
type Document struct {
	ID         uuid.UUID
	Name       string
	Format     cv.Format
	UploadedAt time.Time
	Model      *cv.SectionModel
}

// Server serves the upload and question endpoints.
type Server struct {
	cfg        Config
	echo       *echo.Echo
	normalizer *cv.Normalizer
	matcher    *qa.Matcher
	current    atomic.Pointer[Document]
	logger     *zap.Logger
}

// New wires the routes and middleware.
func New(cfg Config, normalizer *cv.Normalizer, matcher *qa.Matcher, log *zap.Logger) *Server {
	if cfg.Listen == "" {
		cfg.Listen = defaultListen
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}

	s := &Server{
		cfg:        cfg,
		echo:       echo.New(),
		normalizer: normalizer,
		matcher:    matcher,
		logger:     logger.WithFields(log, zap.String("component", "server")),
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.errorHandler

	s.echo.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10,
	}))
	// Multipart framing adds a little on top of the file itself.
	s.echo.Use(middleware.BodyLimit(fmt.Sprintf("%dK", cfg.MaxUploadBytes/1024+64)))
	s.echo.Use(s.requestLogger)

	s.routes()

	return s
}

func (s *Server) routes() {
	s.echo.GET("/health", s.HandleHealth)

	api := s.echo.Group("/api")
	api.POST("/cv", s.HandleUpload)
	api.GET("/cv/summary", s.HandleSummary)
	api.POST("/ask", s.HandleAsk)
}

// ServeHTTP lets the server be mounted or driven by httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Load replaces the current document.
func (s *Server) Load(doc *Document) {
	s.current.Store(doc)
	s.logger.Info("cv loaded",
		zap.String("id", doc.ID.String()),
		zap.String("name", doc.Name),
		zap.String(logger.FieldFormat, string(doc.Format)),
	)
}

// Current returns the loaded document or nil.
func (s *Server) Current() *Document {
	return s.current.Load()
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("address", s.cfg.Listen))
		errCh <- s.echo.Start(s.cfg.Listen)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		if ce := s.logger.Check(zap.DebugLevel, "request"); ce != nil {
			ce.Write(
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Duration("took", time.Since(start)),
			)
		}
		return err
	}
}
