package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"civiq/internal/services"
	"civiq/pkg/utils"
)

type DashboardController struct {
	dashboardService services.DashboardServiceInterface
	logger           *zap.Logger
}

func NewDashboardController(dashboardService services.DashboardServiceInterface, logger *zap.Logger) *DashboardController {
	return &DashboardController{dashboardService: dashboardService, logger: logger}
}

// GetDashboardStats: без параметра scope сводка строится по области видимости сессии.
func (c *DashboardController) GetDashboardStats(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	scope := ctx.QueryParam("scope")
	if scope == "" {
		scope = ctx.QueryParam("department")
	}
	if scope == "" {
		if s, err := utils.GetSessionFromContext(reqCtx); err == nil {
			scope = s.Scope()
		}
	}

	stats, err := c.dashboardService.GetStats(reqCtx, scope)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, stats, "Сводка получена", http.StatusOK)
}
