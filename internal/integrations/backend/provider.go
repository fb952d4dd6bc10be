// Package backend - клиент REST-сервера заявок.
package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"civiq/internal/entities"
	"civiq/internal/view"
)

const Name = "backend"

// Provider ходит в /api сервера заявок от имени пользователя консоли.
type Provider struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger

	token      string
	tokenMutex sync.RWMutex
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Provider {
	return &Provider{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.Named("backend_provider"),
	}
}

func (p *Provider) Name() string {
	return Name
}

// SetToken задаёт токен сессии для последующих запросов.
func (p *Provider) SetToken(token string) {
	p.tokenMutex.Lock()
	defer p.tokenMutex.Unlock()
	p.token = token
}

func (p *Provider) currentToken() string {
	p.tokenMutex.RLock()
	defer p.tokenMutex.RUnlock()
	return p.token
}

func (p *Provider) FetchAll(ctx context.Context) ([]entities.Request, error) {
	list, err := call[[]entities.Request](p, ctx, http.MethodGet, "/requests", nil)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Получен список заявок", zap.Int("count", len(list)))
	return list, nil
}

func (p *Provider) Get(ctx context.Context, id int64) (entities.Request, error) {
	return call[entities.Request](p, ctx, http.MethodGet, fmt.Sprintf("/requests/%d", id), nil)
}

// Update заменяет запись целиком.
func (p *Provider) Update(ctx context.Context, id int64, req entities.Request) (entities.Request, error) {
	return call[entities.Request](p, ctx, http.MethodPut, fmt.Sprintf("/requests/%d", id), req)
}

func (p *Provider) Stats(ctx context.Context) (view.DashboardStats, error) {
	return call[view.DashboardStats](p, ctx, http.MethodGet, "/dashboard-stats", nil)
}
