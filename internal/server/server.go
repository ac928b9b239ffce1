// Package server exposes the HTTP surface: triggering scrapes, detecting
// boards, and the small job actions (save, dismiss, restore).
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrleolava/job-search-command-center/internal/detect"
	"github.com/mrleolava/job-search-command-center/internal/errors"
	"github.com/mrleolava/job-search-command-center/internal/models"
	"github.com/mrleolava/job-search-command-center/internal/telemetry"
)

var tracer = telemetry.GetTracer("jobsearch/server")

// JobStore is the subset of the persistence layer the HTTP handlers need.
type JobStore interface {
	SetJobDismissed(ctx context.Context, id string, dismissed bool) error
	SetCompanyBoards(ctx context.Context, companyID string, boards map[string]*string) error
	CreateSavedApplication(ctx context.Context, jobID, profileID string) (*models.Application, error)
}

// Runner triggers a reconciliation for one profile.
type Runner interface {
	Run(ctx context.Context, profileID string) (*models.Report, error)
}

type Server struct {
	engine   Runner
	detector *detect.Detector
	store    JobStore
	logger   *zap.Logger
	http     *http.Server
}

func New(engine Runner, detector *detect.Detector, store JobStore, logger *zap.Logger, port string) *Server {
	s := &Server{
		engine:   engine,
		detector: detector,
		store:    store,
		logger:   logger.Named("server"),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.health)
	api := router.Group("/api")
	{
		api.POST("/scrape", s.scrape)
		api.POST("/detect-boards", s.detectBoards)
		api.POST("/jobs/:id/save", s.saveJob)
		api.POST("/jobs/:id/dismiss", s.dismissJob)
		api.POST("/jobs/:id/restore", s.restoreJob)
	}

	s.http = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}
	return s
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the routing tree for in-process testing.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type scrapeRequest struct {
	ProfileID string `json:"profile_id" binding:"required"`
}

func (s *Server) scrape(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "Server.scrape")
	defer span.End()

	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.InvalidInput("profile_id is required", err))
		return
	}
	span.SetAttributes(telemetry.String("profile.id", req.ProfileID))

	report, err := s.engine.Run(ctx, req.ProfileID)
	if err != nil {
		s.logger.Error("scrape run failed",
			zap.String("profile_id", req.ProfileID),
			zap.Error(err))
		span.RecordError(err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type detectRequest struct {
	Name      string  `json:"name" binding:"required"`
	Website   *string `json:"website"`
	CompanyID *string `json:"company_id"`
}

type detectResponse struct {
	Name   string             `json:"name"`
	Boards map[string]*string `json:"boards"`
	Saved  bool               `json:"saved"`
}

func (s *Server) detectBoards(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "Server.detectBoards")
	defer span.End()

	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.InvalidInput("name is required", err))
		return
	}
	span.SetAttributes(telemetry.String("company.name", req.Name))

	boards := s.detector.Detect(ctx, req.Name, req.Website)

	resp := detectResponse{Name: req.Name, Boards: boards}
	if req.CompanyID != nil && *req.CompanyID != "" {
		if err := s.store.SetCompanyBoards(ctx, *req.CompanyID, boards); err != nil {
			s.logger.Error("failed to save detected boards",
				zap.String("company_id", *req.CompanyID),
				zap.Error(err))
			span.RecordError(err)
			abortWithError(c, err)
			return
		}
		resp.Saved = true
	}
	c.JSON(http.StatusOK, resp)
}

type saveJobRequest struct {
	ProfileID string `json:"profile_id" binding:"required"`
}

func (s *Server) saveJob(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "Server.saveJob")
	defer span.End()

	var req saveJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.InvalidInput("profile_id is required", err))
		return
	}

	app, err := s.store.CreateSavedApplication(ctx, c.Param("id"), req.ProfileID)
	if err != nil {
		span.RecordError(err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (s *Server) dismissJob(c *gin.Context) {
	s.setDismissed(c, true)
}

func (s *Server) restoreJob(c *gin.Context) {
	s.setDismissed(c, false)
}

func (s *Server) setDismissed(c *gin.Context, dismissed bool) {
	ctx, span := tracer.Start(c.Request.Context(), "Server.setDismissed")
	defer span.End()
	span.SetAttributes(telemetry.Bool("dismissed", dismissed))

	if err := s.store.SetJobDismissed(ctx, c.Param("id"), dismissed); err != nil {
		span.RecordError(err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "is_dismissed": dismissed})
}

// abortWithError maps domain error types onto HTTP statuses. Anything that is
// not a DomainError is treated as internal.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	if de, ok := err.(*errors.DomainError); ok {
		message = de.Message
		switch de.Type {
		case errors.ErrTypeNotFound:
			status = http.StatusNotFound
		case errors.ErrTypeInvalidInput:
			status = http.StatusBadRequest
		case errors.ErrTypeUnavailable:
			status = http.StatusServiceUnavailable
		}
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
