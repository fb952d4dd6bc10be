package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"civiq/internal/repositories"
	"civiq/internal/routes"
	"civiq/pkg/config"
	"civiq/pkg/eventbus"
	"civiq/pkg/filestorage"
	applogger "civiq/pkg/logger"
	"civiq/pkg/service"
	"civiq/pkg/websocket"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Конфиг и логгеры
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.FilePath)
	defer logger.Sync()

	loggers := &routes.Loggers{
		Main:    logger.Named("main"),
		Auth:    logger.Named("auth"),
		Request: logger.Named("request"),
		History: logger.Named("history"),
	}

	// 2. Echo с мидлвэрами и валидатором
	e, err := routes.NewEcho(cfg.Server, loggers.Main)
	if err != nil {
		logger.Fatal("Ошибка регистрации кастомных правил валидации", zap.Error(err))
	}

	// 3. Хранилище заявок (PostgreSQL или SQLite) с миграциями
	requestRepo, closeStore, err := repositories.OpenRequestStore(ctx, cfg.Storage, loggers.Main)
	if err != nil {
		logger.Fatal("не удалось открыть хранилище заявок", zap.Error(err), zap.String("driver", cfg.Storage.Driver))
	}
	defer closeStore()

	// 4. Redis: кеш сводки, отозванные сессии, учётные записи
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
	}

	// 5. Фото заявок на диске, отдаются статикой
	files, err := filestorage.NewLocalFileStorage(cfg.Upload.Dir, cfg.Upload.URLPrefix)
	if err != nil {
		logger.Fatal("не удалось подготовить каталог загрузок", zap.Error(err), zap.String("dir", cfg.Upload.Dir))
	}
	e.Static(cfg.Upload.URLPrefix, cfg.Upload.Dir)

	// 6. Рассылка изменений
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)
	bus := eventbus.New(loggers.History)

	// 7. Роуты
	routes.InitRouter(e, routes.Dependencies{
		RequestRepo:    requestRepo,
		CacheRepo:      repositories.NewRedisCacheRepository(redisClient),
		CredentialRepo: repositories.NewCredentialRepository(redisClient),
		Files:          files,
		JWT:            service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.SessionTTL),
		Hub:            hub,
		Bus:            bus,
		Config:         cfg,
		Loggers:        loggers,
	})

	// 8. Запуск и остановка
	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Driver))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Остановка сервера...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", zap.Error(err))
	}
	bus.Wait()
}
