package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/spigell/cv-responder/internal/cv"
	"github.com/spigell/cv-responder/internal/qa"
	"github.com/spigell/cv-responder/internal/source"
)

type uploadResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Format     cv.Format  `json:"format"`
	UploadedAt time.Time  `json:"uploaded_at"`
	Summary    cv.Summary `json:"summary"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	DocumentID string `json:"document_id"`
	qa.Answer
}

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	CVLoaded bool   `json:"cv_loaded"`
}

// HandleUpload accepts a multipart "file" field with an optional "format" override.
func (s *Server) HandleUpload(c echo.Context) error {
	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return newValidationError("file")
	}
	if err != nil {
		return newBadRequestError("multipart field \"file\" is required", err)
	}
	if header.Size > s.cfg.MaxUploadBytes {
		return newTooLargeError(header.Size, s.cfg.MaxUploadBytes)
	}

	format, err := source.ResolveFormat(header.Filename, header.Header.Get(echo.HeaderContentType), c.FormValue("format"))
	if err != nil {
		return documentError(err)
	}

	file, err := header.Open()
	if err != nil {
		return newBadRequestError("cannot open uploaded file", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return newBadRequestError("cannot read uploaded file", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return newTooLargeError(int64(len(data)), s.cfg.MaxUploadBytes)
	}

	model, err := s.normalizer.Normalize(data, format)
	if err != nil {
		return documentError(err)
	}

	doc := &Document{
		ID:         uuid.New(),
		Name:       header.Filename,
		Format:     format,
		UploadedAt: time.Now().UTC(),
		Model:      model,
	}
	s.Load(doc)

	return c.JSON(http.StatusCreated, uploadResponse{
		ID:         doc.ID.String(),
		Name:       doc.Name,
		Format:     doc.Format,
		UploadedAt: doc.UploadedAt,
		Summary:    cv.Summarize(model),
	})
}

// HandleAsk answers {"question": "..."} against the loaded CV. A blank
// question is not an error: it gets the low confidence not-found answer.
func (s *Server) HandleAsk(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return newBadRequestError("invalid JSON body", err)
	}

	doc := s.current.Load()
	if doc == nil {
		return newNoDocumentError()
	}

	return c.JSON(http.StatusOK, askResponse{
		DocumentID: doc.ID.String(),
		Answer:     s.matcher.Answer(req.Question, doc.Model),
	})
}

// HandleSummary describes the loaded CV.
func (s *Server) HandleSummary(c echo.Context) error {
	doc := s.current.Load()
	if doc == nil {
		return newNoDocumentError()
	}

	return c.JSON(http.StatusOK, uploadResponse{
		ID:         doc.ID.String(),
		Name:       doc.Name,
		Format:     doc.Format,
		UploadedAt: doc.UploadedAt,
		Summary:    cv.Summarize(doc.Model),
	})
}

func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:   "ok",
		Version:  s.cfg.Version,
		CVLoaded: s.current.Load() != nil,
	})
}

// NewDocument normalizes a pre-loaded source document for Load.
func NewDocument(n *cv.Normalizer, src *source.Document) (*Document, error) {
	model, err := n.Normalize(src.Data, src.Format)
	if err != nil {
		return nil, fmt.Errorf("normalizing %s: %w", src.Name, err)
	}
	return &Document{
		ID:         uuid.New(),
		Name:       src.Name,
		Format:     src.Format,
		UploadedAt: time.Now().UTC(),
		Model:      model,
	}, nil
}
