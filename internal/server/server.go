// Package server exposes the inference lifecycle over HTTP. It is a thin
// boundary: every handler delegates to the store, pipeline, ranker, or
// security gate and maps their errors to status codes.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/selfatlas/selfatlas/internal/ingest"
	"github.com/selfatlas/selfatlas/internal/model"
	"github.com/selfatlas/selfatlas/internal/pipeline"
	"github.com/selfatlas/selfatlas/internal/rank"
	"github.com/selfatlas/selfatlas/internal/secscan"
	"github.com/selfatlas/selfatlas/internal/store"
)

// Server wires the HTTP API
type Server struct {
	echo     *echo.Echo
	store    *store.Store
	pipeline *pipeline.Pipeline
	ranker   *rank.Ranker
	scanner  *secscan.Scanner
	log      *zap.Logger
}

// New creates the server and registers routes
func New(st *store.Store, p *pipeline.Pipeline, r *rank.Ranker, sc *secscan.Scanner, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, store: st, pipeline: p, ranker: r, scanner: sc, log: log}

	api := e.Group("/api")
	api.GET("/inference", s.handleNextInference)
	api.GET("/inferences", s.handleListInferences)
	api.GET("/queue", s.handleQueue)
	api.POST("/triage", s.handleTriage)
	api.GET("/export", s.handleExport)
	api.POST("/generate", s.handleGenerate)
	api.POST("/ingest/:source", s.handleIngest)
	api.POST("/process", s.handleProcess)

	return s
}

// Start listens on addr until the server is shut down
func (s *Server) Start(addr string) error {
	s.log.Info("http server listening", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Handler exposes the routing tree (used by tests)
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleNextInference(c echo.Context) error {
	inf, err := s.store.NextPendingInference(c.Request().Context())
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusOK, map[string]string{"message": "No pending inferences"})
	}
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, inf)
}

func (s *Server) handleListInferences(c echo.Context) error {
	status := model.Status(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "unknown status filter"})
	}
	infs, err := s.store.ListInferences(c.Request().Context(), status)
	if err != nil {
		return s.internalError(c, err)
	}
	if infs == nil {
		infs = []model.Inference{}
	}
	return c.JSON(http.StatusOK, infs)
}

// handleQueue returns the pending set in the ranker's presentation order
func (s *Server) handleQueue(c echo.Context) error {
	pending, err := s.store.ListInferences(c.Request().Context(), model.StatusPending)
	if err != nil {
		return s.internalError(c, err)
	}
	ranked := s.ranker.Rank(pending)
	if ranked == nil {
		ranked = []model.Inference{}
	}
	return c.JSON(http.StatusOK, ranked)
}

type triageRequest struct {
	ID     string  `json:"id"`
	Action string  `json:"action"` // "approve" or "reject"
	Notes  *string `json:"notes"`
}

func (s *Server) handleTriage(c echo.Context) error {
	var req triageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "malformed request"})
	}

	var status model.Status
	switch req.Action {
	case "approve":
		status = model.StatusApproved
	case "reject":
		status = model.StatusRejected
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "action must be approve or reject"})
	}

	err := s.store.UpdateInferenceStatus(c.Request().Context(), req.ID, status, req.Notes)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "Inference not found"})
	}
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}

// handleExport releases the approved set, but only after the security gate
// clears it. A blocked export reports the hit count and nothing else.
func (s *Server) handleExport(c echo.Context) error {
	approved, err := s.store.ListInferences(c.Request().Context(), model.StatusApproved)
	if err != nil {
		return s.internalError(c, err)
	}
	if approved == nil {
		approved = []model.Inference{}
	}

	payload, err := json.Marshal(approved)
	if err != nil {
		return s.internalError(c, err)
	}

	safe, hits := s.scanner.Scan(string(payload))
	if !safe {
		s.log.Warn("export blocked by security gate", zap.Int("hits", len(hits)))
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error": "export blocked: potential secrets detected",
			"hits":  len(hits),
		})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename=approved_inferences.json`)
	return c.JSONBlob(http.StatusOK, payload)
}

type generateRequest struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

func (s *Server) handleGenerate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "malformed request"})
	}

	inf, err := s.pipeline.GenerateOne(c.Request().Context(), req.Source, req.Content)
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, inf)
}

type ingestRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleIngest(c echo.Context) error {
	var req ingestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "malformed request"})
	}

	source := c.Param("source")
	ingestor, err := ingest.New(source, req.Path)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": err.Error()})
	}

	items, err := ingestor.Ingest(c.Request().Context())
	if err != nil {
		return s.internalError(c, fmt.Errorf("ingest %s: %w", source, err))
	}

	stored, err := s.store.UpsertRawItems(c.Request().Context(), items)
	if err != nil {
		return s.internalError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":      "success",
		"source":      source,
		"items_count": len(items),
		"stored":      stored,
	})
}

func (s *Server) handleProcess(c echo.Context) error {
	result, err := s.pipeline.ProcessBatch(c.Request().Context(), 0)
	if err != nil {
		return s.internalError(c, err)
	}
	if result.NoData {
		return c.JSON(http.StatusOK, map[string]any{
			"status":               "no_data",
			"inferences_generated": 0,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":               "success",
		"inferences_generated": result.Generated,
		"lint_rejected":        result.LintRejected,
		"skipped":              result.Skipped,
	})
}

func (s *Server) internalError(c echo.Context, err error) error {
	s.log.Error("request failed",
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "internal error"})
}
