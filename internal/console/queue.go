// Package console - очередь заявок глазами одного пользователя консоли:
// загрузка, фильтрация и действия с откатом на демо-набор при недоступности сервера.
package console

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"civiq/internal/entities"
	"civiq/internal/integrations"
	"civiq/internal/lifecycle"
	"civiq/internal/session"
	"civiq/internal/view"
	apperrors "civiq/pkg/errors"
)

// Mode - откуда взята текущая коллекция.
type Mode string

const (
	ModeLive Mode = "live"
	ModeDemo Mode = "demo"
)

// Outcome - результат действия над заявкой.
type Outcome struct {
	Request entities.Request
	// Saved=false: изменение есть только в памяти этой консоли.
	Saved   bool
	Warning string
}

type Queue struct {
	primary  integrations.DataSource
	fallback integrations.DataSource
	engine   *lifecycle.Engine
	session  session.Session
	logger   *zap.Logger
	now      func() time.Time

	records []entities.Request
	mode    Mode
	unsaved map[int64]struct{}
}

func NewQueue(primary, fallback integrations.DataSource, engine *lifecycle.Engine, s session.Session, logger *zap.Logger) *Queue {
	return &Queue{
		primary:  primary,
		fallback: fallback,
		engine:   engine,
		session:  s,
		logger:   logger.Named("queue"),
		now:      time.Now,
		mode:     ModeLive,
		unsaved:  make(map[int64]struct{}),
	}
}

func (q *Queue) Session() session.Session { return q.session }

func (q *Queue) Mode() Mode { return q.mode }

// Load перечитывает коллекцию целиком. Если сервер недоступен, консоль
// переходит на демо-набор и возвращает предупреждение. Отказ в доступе
// и прочие ответы сервера возвращаются как ошибка.
func (q *Queue) Load(ctx context.Context) (string, error) {
	list, err := q.primary.FetchAll(ctx)
	if err == nil {
		q.records = list
		q.mode = ModeLive
		q.unsaved = make(map[int64]struct{})
		if q.primary.Name() == q.fallback.Name() {
			q.mode = ModeDemo
			return "Офлайн-режим: показаны демо-данные, изменения не сохраняются.", nil
		}
		return "", nil
	}

	if errors.Is(err, apperrors.ErrUnauthorized) {
		return "", fmt.Errorf("сессия отклонена сервером, выполните civiq login заново: %w", err)
	}
	if !errors.Is(err, apperrors.ErrAdapterUnavailable) {
		return "", err
	}

	q.logger.Warn("Сервер недоступен, используются демо-данные", zap.Error(err))
	demo, ferr := q.fallback.FetchAll(ctx)
	if ferr != nil {
		return "", fmt.Errorf("не удалось загрузить ни основной, ни демо-набор: %w", errors.Join(err, ferr))
	}
	q.records = demo
	q.mode = ModeDemo
	q.unsaved = make(map[int64]struct{})
	return fmt.Sprintf("Сервер недоступен (%v). Показаны демо-данные, изменения не сохраняются.", err), nil
}

// Records - текущая коллекция в порядке источника.
func (q *Queue) Records() []entities.Request {
	return q.records
}

func (q *Queue) View(cfg view.Config) []entities.Request {
	return view.Project(q.records, cfg)
}

func (q *Queue) Find(id int64) (entities.Request, error) {
	return lifecycle.Find(q.records, id)
}

// IsUnsaved - заявка изменена локально и не записана на сервер.
func (q *Queue) IsUnsaved(id int64) bool {
	_, ok := q.unsaved[id]
	return ok
}

// Transition применяет действие: проверка по таблице переходов, запись на сервер,
// затем полная перезагрузка. Ошибки жизненного цикла ничего не меняют.
func (q *Queue) Transition(ctx context.Context, id int64, cmd lifecycle.Command) (Outcome, error) {
	current, err := q.Find(id)
	if err != nil {
		return Outcome{}, err
	}
	next, err := q.engine.Apply(current, q.session, cmd)
	if err != nil {
		return Outcome{}, err
	}

	if q.mode == ModeDemo {
		q.replaceLocal(next)
		return Outcome{Request: next, Warning: "Демо-режим: изменение видно только в этой консоли."}, nil
	}

	saved, err := q.primary.Update(ctx, id, next)
	if err != nil {
		if !errors.Is(err, apperrors.ErrAdapterUnavailable) {
			return Outcome{}, err
		}
		q.logger.Warn("Не удалось сохранить заявку, изменение оставлено локально",
			zap.Int64("id", id), zap.Error(err))
		q.replaceLocal(next)
		return Outcome{Request: next, Warning: fmt.Sprintf("Сервер недоступен (%v). Изменение не сохранено.", err)}, nil
	}

	list, err := q.primary.FetchAll(ctx)
	if err != nil {
		q.logger.Warn("Не удалось перечитать очередь после сохранения", zap.Error(err))
		q.replaceSaved(saved)
		return Outcome{Request: saved, Saved: true, Warning: "Сохранено, но список не обновлён."}, nil
	}
	q.records = list
	q.unsaved = make(map[int64]struct{})

	if fresh, ferr := lifecycle.Find(list, id); ferr == nil {
		saved = fresh
	}
	return Outcome{Request: saved, Saved: true}, nil
}

// Stats - сводка с сервера; в демо-режиме или при сбое считается по загруженной коллекции.
func (q *Queue) Stats(ctx context.Context) (view.DashboardStats, string) {
	if q.mode == ModeLive {
		stats, err := q.primary.Stats(ctx)
		if err == nil {
			return stats, ""
		}
		q.logger.Warn("Сводка с сервера недоступна", zap.Error(err))
		return view.Dashboard(q.records, q.now()), "Сводка посчитана по локальному списку."
	}
	return view.Dashboard(q.records, q.now()), ""
}

func (q *Queue) replaceLocal(next entities.Request) {
	q.replaceSaved(next)
	q.unsaved[next.ID] = struct{}{}
}

func (q *Queue) replaceSaved(next entities.Request) {
	out := make([]entities.Request, len(q.records))
	copy(out, q.records)
	for i := range out {
		if out[i].ID == next.ID {
			out[i] = next
		}
	}
	q.records = out
	delete(q.unsaved, next.ID)
}
