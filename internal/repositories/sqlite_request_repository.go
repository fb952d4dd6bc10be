package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"civiq/internal/entities"
)

// SQLiteRequestRepository - хранилище заявок во встроенной БД (демо-стенд, тесты).
type SQLiteRequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLiteRequestRepository(db *sql.DB, logger *zap.Logger) RequestRepositoryInterface {
	return &SQLiteRequestRepository{db: db, logger: logger}
}

// sqlQuerier - общее у *sql.DB и *sql.Tx.
type sqlQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SQLiteRequestRepository) List(ctx context.Context, filter RequestFilter) ([]entities.Request, error) {
	return r.list(ctx, r.db, filter)
}

func (r *SQLiteRequestRepository) list(ctx context.Context, q sqlQuerier, filter RequestFilter) ([]entities.Request, error) {
	sqlStr, args, err := selectRequests(sq.Question, filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса списка заявок: %w", err)
	}
	rows, err := q.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка заявок: %w", err)
	}

	list := make([]entities.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("ошибка сканирования заявки в списке: %w", err)
		}
		list = append(list, req)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if err := r.loadHistory(ctx, q, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *SQLiteRequestRepository) FindByID(ctx context.Context, id int64) (entities.Request, error) {
	return r.findByID(ctx, r.db, id)
}

func (r *SQLiteRequestRepository) Create(ctx context.Context, req entities.Request) (entities.Request, error) {
	err := withSQLTx(ctx, r.db, "create", func(tx *sql.Tx) error {
		sqlStr, args, err := insertRequest(sq.Question, req).ToSql()
		if err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx, sqlStr, args...).Scan(&req.ID); err != nil {
			return fmt.Errorf("ошибка создания заявки: %w", err)
		}
		return r.appendHistory(ctx, tx, req.ID, 0, req.History)
	})
	if err != nil {
		return entities.Request{}, err
	}
	r.logger.Info("Заявка создана", zap.Int64("id", req.ID), zap.String("department", req.Department))
	return req, nil
}

// Update сериализуется блокировкой на запись, которую SQLite берёт в начале транзакции.
func (r *SQLiteRequestRepository) Update(ctx context.Context, id int64, fn MutateFunc) (entities.Request, error) {
	var next entities.Request
	err := withSQLTx(ctx, r.db, "update", func(tx *sql.Tx) error {
		stored, err := r.findByID(ctx, tx, id)
		if err != nil {
			return err
		}
		next, err = fn(stored)
		if err != nil {
			return err
		}
		if err := checkAppendOnly(stored, next); err != nil {
			return err
		}
		next.DateSubmitted = stored.DateSubmitted

		sqlStr, args, err := updateRequest(sq.Question, next).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("ошибка обновления заявки: %w", err)
		}
		return r.appendHistory(ctx, tx, id, len(stored.History), next.History[len(stored.History):])
	})
	if err != nil {
		return entities.Request{}, err
	}
	return next, nil
}

func (r *SQLiteRequestRepository) findByID(ctx context.Context, q sqlQuerier, id int64) (entities.Request, error) {
	sqlStr, args, err := selectRequestByID(sq.Question, id).ToSql()
	if err != nil {
		return entities.Request{}, err
	}
	req, err := scanRequest(q.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.Request{}, notFound(id)
		}
		return entities.Request{}, fmt.Errorf("ошибка получения заявки: %w", err)
	}

	list := []entities.Request{req}
	if err := r.loadHistory(ctx, q, list); err != nil {
		return entities.Request{}, err
	}
	return list[0], nil
}

func (r *SQLiteRequestRepository) loadHistory(ctx context.Context, q sqlQuerier, list []entities.Request) error {
	if len(list) == 0 {
		return nil
	}
	sqlStr, args, err := selectHistory(sq.Question, requestIDs(list)).ToSql()
	if err != nil {
		return err
	}
	rows, err := q.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("ошибка получения истории заявок: %w", err)
	}
	defer rows.Close()

	byRequest := make(map[int64][]entities.HistoryEntry, len(list))
	for rows.Next() {
		requestID, entry, err := scanHistory(rows)
		if err != nil {
			return fmt.Errorf("ошибка сканирования истории: %w", err)
		}
		byRequest[requestID] = append(byRequest[requestID], entry)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	attachHistory(list, byRequest)
	return nil
}

func (r *SQLiteRequestRepository) appendHistory(ctx context.Context, tx *sql.Tx, requestID int64, from int, entries []entities.HistoryEntry) error {
	b, ok := insertHistory(sq.Question, requestID, from, entries)
	if !ok {
		return nil
	}
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("ошибка записи истории заявки: %w", err)
	}
	return nil
}
