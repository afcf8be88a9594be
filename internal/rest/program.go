package rest

import (
	"net/http"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"ceap/business/program"
	"ceap/domain"
)

type ProgramHandler struct {
	validate *validator.Validate
	registry *program.Registry
}

func NewProgramHandler(registry *program.Registry) *ProgramHandler {
	return &ProgramHandler{
		validate: validator.New(),
		registry: registry,
	}
}

// resultJSON maps a registry operation result onto an HTTP response.
func resultJSON(c echo.Context, res program.OperationResult, okStatus int) error {
	switch res.Status {
	case program.StatusSuccess:
		if res.Programs != nil {
			return c.JSON(okStatus, fres.Response.StatusOK(res.Programs))
		}
		if res.Program != nil {
			return c.JSON(okStatus, fres.Response.StatusOK(res.Program))
		}
		return c.JSON(okStatus, fres.Response.StatusOK("ok"))
	case program.StatusValidationError:
		return c.JSON(http.StatusBadRequest, ResponseError{Message: res.Message})
	case program.StatusNotFound:
		return c.JSON(http.StatusNotFound, ResponseError{Message: res.Message})
	default:
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: res.Err.Error()})
	}
}

// PUT /api/v1/admin/programs
func (h *ProgramHandler) Register(c echo.Context) error {
	var body domain.ProgramConfig
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	res := h.registry.Register(c.Request().Context(), body)
	return resultJSON(c, res, http.StatusCreated)
}

// GET /api/v1/programs/:id?marketplace=US
func (h *ProgramHandler) Get(c echo.Context) error {
	programID := c.Param("id")
	marketplace := c.QueryParam("marketplace")

	res := h.registry.Get(c.Request().Context(), programID, marketplace)
	return resultJSON(c, res, http.StatusOK)
}

// GET /api/v1/programs?marketplace=US
func (h *ProgramHandler) ListByMarketplace(c echo.Context) error {
	marketplace := c.QueryParam("marketplace")

	res := h.registry.ListByMarketplace(c.Request().Context(), marketplace)
	return resultJSON(c, res, http.StatusOK)
}

type enabledRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// PATCH /api/v1/admin/programs/:id/enabled
func (h *ProgramHandler) SetEnabled(c echo.Context) error {
	programID := c.Param("id")

	var req enabledRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	res := h.registry.SetEnabled(c.Request().Context(), programID, *req.Enabled)
	return resultJSON(c, res, http.StatusOK)
}

// DELETE /api/v1/admin/programs/:id
func (h *ProgramHandler) Delete(c echo.Context) error {
	programID := c.Param("id")

	res := h.registry.Delete(c.Request().Context(), programID)
	return resultJSON(c, res, http.StatusOK)
}

// PUT /api/v1/admin/programs/:id/overrides
func (h *ProgramHandler) SaveOverride(c echo.Context) error {
	var body domain.MarketplaceConfigOverride
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	body.ProgramID = c.Param("id")

	res := h.registry.SaveOverride(c.Request().Context(), body)
	return resultJSON(c, res, http.StatusOK)
}
