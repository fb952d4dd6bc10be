package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"civiq/internal/dto"
	"civiq/internal/entities"
	"civiq/internal/events"
	"civiq/internal/lifecycle"
	"civiq/internal/repositories"
	"civiq/internal/session"
	"civiq/internal/view"
	"civiq/pkg/constants"
	"civiq/pkg/eventbus"
	apperrors "civiq/pkg/errors"
	"civiq/pkg/utils"
)

type RequestServiceInterface interface {
	List(ctx context.Context, cfg view.Config) ([]entities.Request, error)
	Get(ctx context.Context, id int64) (entities.Request, error)
	Create(ctx context.Context, payload dto.CreateRequestDTO) (entities.Request, error)
	Replace(ctx context.Context, id int64, incoming entities.Request) (entities.Request, error)
	Transition(ctx context.Context, id int64, payload dto.TransitionDTO) (entities.Request, error)
}

type RequestService struct {
	repo   repositories.RequestRepositoryInterface
	engine *lifecycle.Engine
	bus    *eventbus.Bus
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewRequestService(
	repo repositories.RequestRepositoryInterface,
	engine *lifecycle.Engine,
	bus *eventbus.Bus,
	logger *zap.Logger,
) RequestServiceInterface {
	return &RequestService{
		repo:   repo,
		engine: engine,
		bus:    bus,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// List отдаёт хранилищу то, что оно фильтрует само, остальное досчитывает view.
func (s *RequestService) List(ctx context.Context, cfg view.Config) ([]entities.Request, error) {
	list, err := s.repo.List(ctx, pushdown(cfg))
	if err != nil {
		return nil, err
	}
	return view.Project(list, cfg), nil
}

func pushdown(cfg view.Config) repositories.RequestFilter {
	f := repositories.RequestFilter{Scope: cfg.Scope, Service: cfg.Service, Priority: cfg.Priority}
	switch cfg.Status {
	case view.Any, view.AwaitingDriver:
	case "", view.All:
		f.Statuses = []constants.RequestStatus{
			constants.StatusSubmitted, constants.StatusAssigned,
			constants.StatusInProgress, constants.StatusWaitingDriverUpdate,
		}
	case view.Active:
		f.Statuses = []constants.RequestStatus{constants.StatusAssigned, constants.StatusInProgress}
	default:
		f.Statuses = []constants.RequestStatus{constants.RequestStatus(cfg.Status)}
	}
	return f
}

func (s *RequestService) Get(ctx context.Context, id int64) (entities.Request, error) {
	return s.repo.FindByID(ctx, id)
}

// Create принимает заявку с приёмного окна. Статус всегда submitted, история пуста.
func (s *RequestService) Create(ctx context.Context, payload dto.CreateRequestDTO) (entities.Request, error) {
	req := entities.Request{
		Service:       strings.TrimSpace(payload.Service),
		Department:    strings.TrimSpace(payload.Department),
		Location:      strings.TrimSpace(payload.Location),
		Phone:         strings.TrimSpace(payload.Phone),
		Description:   strings.TrimSpace(payload.Description),
		Priority:      constants.Priority(payload.Priority),
		Status:        constants.StatusSubmitted,
		DateSubmitted: s.now().UTC().Truncate(time.Microsecond),
		History:       []entities.HistoryEntry{},
	}
	if req.Department == "" {
		req.Department = req.Service
	}
	if session.IsWildcard(req.Department) {
		return entities.Request{}, apperrors.NewBadRequestError(fmt.Sprintf("%q не является департаментом", req.Department))
	}
	if req.Priority == "" {
		req.Priority = constants.PriorityMedium
	}
	if payload.Latitude != nil && payload.Longitude != nil {
		req.Coordinates = &entities.Coordinates{Latitude: *payload.Latitude, Longitude: *payload.Longitude}
	}
	if payload.Photo != nil && *payload.Photo != "" {
		req.Photo = null.StringFrom(*payload.Photo)
	}

	created, err := s.repo.Create(ctx, req)
	if err != nil {
		return entities.Request{}, err
	}
	s.logger.Info("Заявка принята", zap.Int64("id", created.ID), zap.String("department", created.Department))
	s.publish(ctx, events.RequestCreatedEvent, created, entities.Request{})
	return created, nil
}

// Replace - PUT целиком. Новые записи истории без id получают его здесь.
func (s *RequestService) Replace(ctx context.Context, id int64, incoming entities.Request) (entities.Request, error) {
	if incoming.ID == 0 {
		incoming.ID = id
	}
	if incoming.ID != id {
		return entities.Request{}, fmt.Errorf("%w: id в теле (%d) не совпадает с адресом (%d)", apperrors.ErrBadRequest, incoming.ID, id)
	}

	var previous entities.Request
	updated, err := s.repo.Update(ctx, id, func(stored entities.Request) (entities.Request, error) {
		previous = stored
		next := incoming.Clone()
		next.DateSubmitted = stored.DateSubmitted
		for i := len(stored.History); i < len(next.History); i++ {
			if next.History[i].ID == "" {
				next.History[i].ID = s.newID()
			}
			if next.History[i].Timestamp.IsZero() {
				next.History[i].Timestamp = s.now().UTC().Truncate(time.Microsecond)
			}
		}
		if err := lifecycle.CheckReplacement(stored, next); err != nil {
			return entities.Request{}, err
		}
		return next, nil
	})
	if err != nil {
		return entities.Request{}, err
	}
	s.publish(ctx, events.RequestUpdatedEvent, updated, previous)
	return updated, nil
}

// Transition применяет действие от имени пользователя из контекста запроса.
func (s *RequestService) Transition(ctx context.Context, id int64, payload dto.TransitionDTO) (entities.Request, error) {
	sess, err := utils.GetSessionFromContext(ctx)
	if err != nil {
		return entities.Request{}, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}
	cmd := lifecycle.Command{
		Action: lifecycle.Action(strings.ToLower(strings.TrimSpace(payload.Action))),
		Notes:  payload.Notes,
		Target: payload.Target,
	}

	var previous entities.Request
	updated, err := s.repo.Update(ctx, id, func(stored entities.Request) (entities.Request, error) {
		previous = stored
		return s.engine.Apply(stored, sess, cmd)
	})
	if err != nil {
		s.logger.Debug("Переход отклонён",
			zap.Int64("id", id),
			zap.String("action", string(cmd.Action)),
			zap.String("actor", sess.Actor),
			zap.Error(err),
		)
		return entities.Request{}, err
	}
	s.logger.Info("Переход выполнен",
		zap.Int64("id", id),
		zap.String("action", string(cmd.Action)),
		zap.String("from", string(previous.Status)),
		zap.String("to", string(updated.Status)),
		zap.String("actor", sess.Actor),
	)
	s.publish(ctx, events.RequestUpdatedEvent, updated, previous)
	return updated, nil
}

func (s *RequestService) publish(ctx context.Context, kind string, req, previous entities.Request) {
	publishChange(ctx, s.bus, kind, req, previous)
}

// publishChange рассылает изменение; автор берётся из сессии запроса, если она есть.
func publishChange(ctx context.Context, bus *eventbus.Bus, kind string, req, previous entities.Request) {
	if bus == nil {
		return
	}
	actor := ""
	if sess, err := utils.GetSessionFromContext(ctx); err == nil {
		actor = sess.Actor
	}
	bus.Publish(ctx, events.RequestChanged{Kind: kind, Request: req, Previous: previous, Actor: actor})
}
