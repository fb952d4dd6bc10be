package main

import (
	"context"
	"flag"
	"log"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"civiq/internal/integrations/fallback"
	"civiq/internal/repositories"
	"civiq/pkg/config"
	applogger "civiq/pkg/logger"
	"civiq/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runRequests := flag.Bool("requests", false, "Загрузить демо-набор заявок в пустое хранилище")
	runAccounts := flag.Bool("accounts", false, "Создать демо-учётные записи водителя и департаментов")
	runAll := flag.Bool("all", false, "Запустить все сидеры (эквивалентно -requests -accounts)")
	flag.Parse()

	if !*runRequests && !*runAccounts && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -requests")
		log.Println("  go run ./seeders/cmd/seed -all")
		return
	}

	ctx := context.Background()
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, "")
	defer logger.Sync()

	if *runAll || *runRequests {
		repo, closeStore, err := repositories.OpenRequestStore(ctx, cfg.Storage, logger)
		if err != nil {
			logger.Fatal("❌ Не удалось открыть хранилище заявок", zap.Error(err))
		}
		defer closeStore()

		demo, err := fallback.New()
		if err != nil {
			logger.Fatal("❌ Демо-набор повреждён", zap.Error(err))
		}
		records, _ := demo.FetchAll(ctx)
		if _, err := seeders.SeedDemoRequests(ctx, repo, records, logger); err != nil {
			logger.Fatal("❌ Ошибка наполнения заявок", zap.Error(err))
		}
		log.Println("======================================================")
	}

	if *runAll || *runAccounts {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("❌ Не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
		}
		credRepo := repositories.NewCredentialRepository(redisClient)
		if _, err := seeders.SeedDemoAccounts(ctx, credRepo, seeders.DefaultDemoAccounts(), logger); err != nil {
			logger.Fatal("❌ Ошибка создания учётных записей", zap.Error(err))
		}
		log.Println("======================================================")
	}

	log.Println("✅ Все указанные операции сидирования успешно завершены.")
}
