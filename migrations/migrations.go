// Package migrations - схема хранилища заявок для PostgreSQL и SQLite.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var embedded embed.FS

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Up применяет все недостающие миграции и возвращает число применённых.
func Up(ctx context.Context, db *sql.DB, dialect string) (int, error) {
	var (
		gooseDialect goose.Dialect
		dir          string
	)
	switch dialect {
	case DialectPostgres:
		gooseDialect, dir = goose.DialectPostgres, "postgres"
	case DialectSQLite:
		gooseDialect, dir = goose.DialectSQLite3, "sqlite"
	default:
		return 0, fmt.Errorf("неизвестный диалект хранилища %q", dialect)
	}

	sub, err := fs.Sub(embedded, dir)
	if err != nil {
		return 0, err
	}
	provider, err := goose.NewProvider(gooseDialect, db, sub)
	if err != nil {
		return 0, fmt.Errorf("ошибка инициализации миграций: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка применения миграций: %w", err)
	}
	return len(results), nil
}
