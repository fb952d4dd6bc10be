package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"civiq/internal/entities"
	apperrors "civiq/pkg/errors"
)

// MutateFunc получает сохранённую заявку и возвращает её новую версию.
// Вызывается внутри транзакции, строка заявки заблокирована до коммита.
type MutateFunc func(stored entities.Request) (entities.Request, error)

type RequestRepositoryInterface interface {
	List(ctx context.Context, filter RequestFilter) ([]entities.Request, error)
	FindByID(ctx context.Context, id int64) (entities.Request, error)
	Create(ctx context.Context, req entities.Request) (entities.Request, error)
	Update(ctx context.Context, id int64, fn MutateFunc) (entities.Request, error)
}

type RequestRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewRequestRepository(storage *pgxpool.Pool, logger *zap.Logger) RequestRepositoryInterface {
	return &RequestRepository{
		storage: storage,
		logger:  logger,
	}
}

func (r *RequestRepository) List(ctx context.Context, filter RequestFilter) ([]entities.Request, error) {
	sqlStr, args, err := selectRequests(sq.Dollar, filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса списка заявок: %w", err)
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка заявок: %w", err)
	}
	defer rows.Close()

	list := make([]entities.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования заявки в списке: %w", err)
		}
		list = append(list, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadHistory(ctx, r.storage, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *RequestRepository) FindByID(ctx context.Context, id int64) (entities.Request, error) {
	return r.findByID(ctx, r.storage, id, false)
}

func (r *RequestRepository) Create(ctx context.Context, req entities.Request) (entities.Request, error) {
	err := withPgTx(ctx, r.storage, "create", func(tx pgx.Tx) error {
		sqlStr, args, err := insertRequest(sq.Dollar, req).ToSql()
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, sqlStr, args...).Scan(&req.ID); err != nil {
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

func (r *RequestRepository) Update(ctx context.Context, id int64, fn MutateFunc) (entities.Request, error) {
	var next entities.Request
	err := withPgTx(ctx, r.storage, "update", func(tx pgx.Tx) error {
		stored, err := r.findByID(ctx, tx, id, true)
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

		sqlStr, args, err := updateRequest(sq.Dollar, next).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("ошибка обновления заявки: %w", err)
		}
		return r.appendHistory(ctx, tx, id, len(stored.History), next.History[len(stored.History):])
	})
	if err != nil {
		return entities.Request{}, err
	}
	return next, nil
}

func (r *RequestRepository) findByID(ctx context.Context, q pgQuerier, id int64, forUpdate bool) (entities.Request, error) {
	b := selectRequestByID(sq.Dollar, id)
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return entities.Request{}, err
	}

	req, err := scanRequest(q.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

func (r *RequestRepository) loadHistory(ctx context.Context, q pgQuerier, list []entities.Request) error {
	if len(list) == 0 {
		return nil
	}
	sqlStr, args, err := selectHistory(sq.Dollar, requestIDs(list)).ToSql()
	if err != nil {
		return err
	}
	rows, err := q.Query(ctx, sqlStr, args...)
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

func (r *RequestRepository) appendHistory(ctx context.Context, tx pgx.Tx, requestID int64, from int, entries []entities.HistoryEntry) error {
	b, ok := insertHistory(sq.Dollar, requestID, from, entries)
	if !ok {
		return nil
	}
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("ошибка записи истории заявки: %w", err)
	}
	return nil
}

// checkAppendOnly - последняя линия защиты журнала: id неизменен, история только растёт.
func checkAppendOnly(stored, next entities.Request) error {
	if next.ID != stored.ID {
		return fmt.Errorf("%w: id заявки менять нельзя", apperrors.ErrBadRequest)
	}
	if len(next.History) < len(stored.History) {
		return apperrors.ErrHistoryRewritten
	}
	return nil
}
