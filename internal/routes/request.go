package routes

import (
	"github.com/labstack/echo/v4"

	"civiq/internal/controllers"
)

// Приём заявок открыт, работа с очередью - только с сессией.
func runRequestRouter(api, secureGroup *echo.Group, ctrl *controllers.RequestController) {
	api.POST("/requests", ctrl.CreateRequest)

	secureGroup.GET("/requests", ctrl.GetRequests)
	secureGroup.GET("/requests/export", ctrl.ExportRequests)
	secureGroup.GET("/requests/:id", ctrl.FindRequest)
	secureGroup.PUT("/requests/:id", ctrl.UpdateRequest)
	secureGroup.POST("/requests/:id/transitions", ctrl.TransitionRequest)
}

func runPhotoRouter(secureGroup *echo.Group, ctrl *controllers.PhotoController) {
	secureGroup.POST("/requests/:id/photo", ctrl.UploadPhoto)
}

func runDashboardRouter(secureGroup *echo.Group, ctrl *controllers.DashboardController) {
	secureGroup.GET("/dashboard-stats", ctrl.GetDashboardStats)
}

func runWebSocketRouter(secureGroup *echo.Group, ctrl *controllers.WebSocketController) {
	secureGroup.GET("/ws", ctrl.ServeWs)
}
