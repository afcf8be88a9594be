package router

import (
	"ceap/internal/middleware"
	"ceap/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupProgramRoutes(api *echo.Group, handler *rest.ProgramHandler) {
	programs := api.Group("/programs")
	programs.GET("", handler.ListByMarketplace)
	programs.GET("/:id", handler.Get)

	admin := api.Group("/admin/programs", middleware.AuthMiddleware(), middleware.AdminOnly())
	admin.PUT("", handler.Register)
	admin.PATCH("/:id/enabled", handler.SetEnabled)
	admin.DELETE("/:id", handler.Delete)
	admin.PUT("/:id/overrides", handler.SaveOverride)
}

func SetupCandidateRoutes(api *echo.Group, handler *rest.CandidateHandler) {
	candidates := api.Group("/candidates")
	candidates.POST("/ingest", handler.Ingest)
	candidates.GET("/:id", handler.Get)
	candidates.POST("/:id/score", handler.Score)
	candidates.POST("/:id/reject", handler.Reject)

	api.POST("/pipeline/run", handler.Run, middleware.AuthMiddleware())
}

func SetupExperimentRoutes(api *echo.Group, handler *rest.ExperimentHandler) {
	experiments := api.Group("/experiments")
	experiments.POST("/assign", handler.Assign)

	admin := api.Group("/admin/scoring", middleware.AuthMiddleware(), middleware.AdminOnly())
	admin.GET("/breakers", handler.Breakers)
}
