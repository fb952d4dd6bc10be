package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"civiq/internal/controllers"
	"civiq/internal/lifecycle"
	"civiq/internal/listeners"
	"civiq/internal/repositories"
	"civiq/internal/services"
	"civiq/pkg/config"
	"civiq/pkg/eventbus"
	"civiq/pkg/filestorage"
	"civiq/pkg/middleware"
	"civiq/pkg/service"
	"civiq/pkg/websocket"
)

type Loggers struct {
	Main    *zap.Logger
	Auth    *zap.Logger
	Request *zap.Logger
	History *zap.Logger
}

// NopLoggers - для тестов.
func NopLoggers() *Loggers {
	nop := zap.NewNop()
	return &Loggers{Main: nop, Auth: nop, Request: nop, History: nop}
}

// Dependencies - всё, что создаётся в main и живёт дольше одного запроса.
// Хранилище заявок выбирается снаружи: PostgreSQL или SQLite.
type Dependencies struct {
	RequestRepo    repositories.RequestRepositoryInterface
	CacheRepo      repositories.CacheRepositoryInterface
	CredentialRepo repositories.CredentialRepositoryInterface
	JWT            service.JWTService
	Files          filestorage.FileStorageInterface
	Hub            *websocket.Hub
	Bus            *eventbus.Bus
	Config         *config.Config
	Loggers        *Loggers
}

func InitRouter(e *echo.Echo, deps Dependencies) {
	loggers := deps.Loggers
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	// --- 1. СЕРВИСЫ ---
	authService := services.NewAuthService(deps.CredentialRepo, deps.CacheRepo, deps.JWT, &deps.Config.Auth, loggers.Auth)
	requestService := services.NewRequestService(deps.RequestRepo, lifecycle.NewEngine(), deps.Bus, loggers.Request)
	dashboardService := services.NewDashboardService(deps.RequestRepo, deps.CacheRepo, deps.Config.Cache.DashboardStatsTTL, loggers.Main)
	photoService := services.NewPhotoService(deps.RequestRepo, deps.Files, deps.Config.Upload.PathPrefix, deps.Bus, loggers.Request)
	wsNotificationService := services.NewWebSocketNotificationService(deps.Hub, loggers.History)

	// --- 2. СЛУШАТЕЛИ ---
	listeners.NewNotificationListener(wsNotificationService, dashboardService, loggers.History).Register(deps.Bus)

	// --- 3. РОУТЕРЫ ---
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(deps.JWT, authService, loggers.Auth)
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, controllers.NewAuthController(authService, loggers.Auth), authMW)
	runRequestRouter(api, secureGroup, controllers.NewRequestController(requestService, loggers.Request))
	runPhotoRouter(secureGroup, controllers.NewPhotoController(photoService, deps.Config.Upload, loggers.Request))
	runDashboardRouter(secureGroup, controllers.NewDashboardController(dashboardService, loggers.Main))
	runWebSocketRouter(secureGroup, controllers.NewWebSocketController(deps.Hub, deps.Config.Server.AllowedOrigins, loggers.Main))

	loggers.Main.Info("INIT_ROUTER: Создание маршрутов завершено")
}
