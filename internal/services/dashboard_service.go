package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"civiq/internal/repositories"
	"civiq/internal/session"
	"civiq/internal/view"
	"civiq/pkg/constants"
)

type DashboardServiceInterface interface {
	GetStats(ctx context.Context, scope string) (view.DashboardStats, error)
	Invalidate(ctx context.Context, departments ...string)
}

// DashboardService считает сводку по заявкам и кладёт её в Redis на короткое время.
// Ошибки кеша не мешают ответу: сводка просто пересчитывается.
type DashboardService struct {
	repo   repositories.RequestRepositoryInterface
	cache  repositories.CacheRepositoryInterface
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewDashboardService(
	repo repositories.RequestRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	ttl time.Duration,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{repo: repo, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

func dashboardKey(scope string) string {
	if session.IsWildcard(scope) {
		scope = constants.AllServices
	}
	return fmt.Sprintf(constants.CacheKeyDashboardStats, scope)
}

func (s *DashboardService) GetStats(ctx context.Context, scope string) (view.DashboardStats, error) {
	key := dashboardKey(scope)

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			var stats view.DashboardStats
			if jsonErr := json.Unmarshal([]byte(raw), &stats); jsonErr == nil {
				return stats, nil
			}
			s.logger.Warn("Повреждённая сводка в кеше, пересчитываем", zap.String("key", key))
		case !errors.Is(err, repositories.ErrCacheMiss):
			s.logger.Warn("Кеш сводки недоступен", zap.String("key", key), zap.Error(err))
		}
	}

	list, err := s.repo.List(ctx, repositories.RequestFilter{Scope: scope})
	if err != nil {
		return view.DashboardStats{}, err
	}
	stats := view.Dashboard(list, s.now())

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
				s.logger.Warn("Не удалось сохранить сводку в кеш", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return stats, nil
}

// Invalidate сбрасывает сводку "все службы" и сводки перечисленных департаментов.
func (s *DashboardService) Invalidate(ctx context.Context, departments ...string) {
	if s.cache == nil {
		return
	}
	keys := []string{dashboardKey(constants.AllServices)}
	for _, d := range departments {
		if !session.IsWildcard(d) {
			keys = append(keys, dashboardKey(d))
		}
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.logger.Warn("Не удалось сбросить кеш сводки", zap.Strings("keys", keys), zap.Error(err))
	}
}
