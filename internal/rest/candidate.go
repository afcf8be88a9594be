package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"ceap/business/pipeline"
	"ceap/domain"
)

type (
	CandidateHandler struct {
		validate *validator.Validate
		service  PipelineService
	}

	PipelineService interface {
		Run(ctx context.Context, programID, marketplace string) (pipeline.RunSummary, error)
		IngestRecords(ctx context.Context, programID, marketplace, connectorID string, records []map[string]any) (pipeline.RunSummary, error)
		GetCandidate(ctx context.Context, id string) (domain.Candidate, error)
		ScoreCandidate(ctx context.Context, id string, modelIDs []string) (domain.Candidate, error)
		RejectCandidate(ctx context.Context, id string, rec domain.RejectionRecord) (domain.Candidate, error)
	}

	RunRequest struct {
		ProgramID   string `json:"program_id" validate:"required"`
		Marketplace string `json:"marketplace"`
	}

	IngestRequest struct {
		ProgramID   string           `json:"program_id" validate:"required"`
		Marketplace string           `json:"marketplace"`
		ConnectorID string           `json:"connector_id" validate:"required"`
		Records     []map[string]any `json:"records" validate:"required,min=1"`
	}

	ScoreRequest struct {
		ModelIDs []string `json:"model_ids"`
	}

	RejectRequest struct {
		FilterID   string `json:"filter_id" validate:"required"`
		Reason     string `json:"reason" validate:"required"`
		ReasonCode string `json:"reason_code" validate:"required"`
	}
)

func NewCandidateHandler(service PipelineService) *CandidateHandler {
	return &CandidateHandler{
		validate: validator.New(),
		service:  service,
	}
}

// POST /api/v1/pipeline/run
func (h *CandidateHandler) Run(c echo.Context) error {
	var req RunRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	summary, err := h.service.Run(c.Request().Context(), req.ProgramID, req.Marketplace)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(summary))
}

// POST /api/v1/candidates/ingest
func (h *CandidateHandler) Ingest(c echo.Context) error {
	var req IngestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	summary, err := h.service.IngestRecords(
		c.Request().Context(),
		req.ProgramID,
		req.Marketplace,
		req.ConnectorID,
		req.Records,
	)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(summary))
}

// GET /api/v1/candidates/:id
func (h *CandidateHandler) Get(c echo.Context) error {
	cand, err := h.service.GetCandidate(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: "candidate not found"})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cand))
}

// POST /api/v1/candidates/:id/score
func (h *CandidateHandler) Score(c echo.Context) error {
	var req ScoreRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	cand, err := h.service.ScoreCandidate(c.Request().Context(), c.Param("id"), req.ModelIDs)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: "candidate not found"})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cand))
}

// POST /api/v1/candidates/:id/reject
func (h *CandidateHandler) Reject(c echo.Context) error {
	var req RejectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	cand, err := h.service.RejectCandidate(c.Request().Context(), c.Param("id"), domain.RejectionRecord{
		FilterID:   req.FilterID,
		Reason:     req.Reason,
		ReasonCode: req.ReasonCode,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: "candidate not found"})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cand))
}
