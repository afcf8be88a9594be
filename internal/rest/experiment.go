package rest

import (
	"errors"
	"net/http"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"ceap/business/experiment"
	"ceap/business/program"
	"ceap/business/scoring"
	"ceap/domain"
)

type (
	ExperimentHandler struct {
		validate *validator.Validate
		registry *program.Registry
		engine   *scoring.Engine
	}

	AssignRequest struct {
		CustomerID   string `json:"customer_id" validate:"required"`
		ProgramID    string `json:"program_id" validate:"required"`
		Marketplace  string `json:"marketplace"`
		ExperimentID string `json:"experiment_id" validate:"required"`
	}

	AssignResponse struct {
		CustomerID string                      `json:"customer_id"`
		Treatment  *domain.ExperimentTreatment `json:"treatment,omitempty"`
	}
)

func NewExperimentHandler(registry *program.Registry, engine *scoring.Engine) *ExperimentHandler {
	return &ExperimentHandler{
		validate: validator.New(),
		registry: registry,
		engine:   engine,
	}
}

// POST /api/v1/experiments/assign
func (h *ExperimentHandler) Assign(c echo.Context) error {
	var req AssignRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	res := h.registry.Get(c.Request().Context(), req.ProgramID, req.Marketplace)
	if res.Status == program.StatusNotFound {
		return c.JSON(http.StatusNotFound, ResponseError{Message: res.Message})
	}
	if !res.OK() {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: res.Err.Error()})
	}

	var expCfg *domain.ExperimentConfig
	for i := range res.Program.Experiments {
		if res.Program.Experiments[i].ID == req.ExperimentID {
			expCfg = &res.Program.Experiments[i]
			break
		}
	}
	if expCfg == nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "experiment not found"})
	}

	group, err := experiment.Assign(req.CustomerID, *expCfg)
	if err != nil {
		var cfgErr *domain.ConfigValidationError
		if errors.As(err, &cfgErr) {
			return c.JSON(http.StatusUnprocessableEntity, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	resp := AssignResponse{CustomerID: req.CustomerID}
	if group != nil {
		resp.Treatment = &domain.ExperimentTreatment{
			ExperimentID: req.ExperimentID,
			TreatmentID:  group.ID,
		}
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(resp))
}

// GET /api/v1/admin/scoring/breakers
func (h *ExperimentHandler) Breakers(c echo.Context) error {
	return c.JSON(http.StatusOK, fres.Response.StatusOK(h.engine.Breakers()))
}
