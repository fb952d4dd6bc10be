package repositories

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"civiq/migrations"
	"civiq/pkg/config"
	"civiq/pkg/database/postgresql"
	"civiq/pkg/database/sqlite"
)

// OpenRequestStore подключает хранилище заявок по конфигурации и накатывает миграции.
// Возвращаемая функция закрывает соединения.
func OpenRequestStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (RequestRepositoryInterface, func(), error) {
	switch cfg.Driver {
	case migrations.DialectPostgres, "":
		pool, err := postgresql.ConnectDB(ctx, cfg.DSN, logger)
		if err != nil {
			return nil, nil, err
		}
		db := postgresql.SQLDB(pool)
		applied, err := migrations.Up(ctx, db, migrations.DialectPostgres)
		if err != nil {
			db.Close()
			pool.Close()
			return nil, nil, err
		}
		logger.Info("Миграции PostgreSQL применены", zap.Int("applied", applied))
		return NewRequestRepository(pool, logger), func() {
			db.Close()
			pool.Close()
		}, nil

	case migrations.DialectSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		applied, err := migrations.Up(ctx, db, migrations.DialectSQLite)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("Миграции SQLite применены", zap.Int("applied", applied), zap.String("path", cfg.SQLitePath))
		return NewSQLiteRequestRepository(db, logger), func() { db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("неизвестное хранилище %q (ожидается postgres или sqlite)", cfg.Driver)
}
