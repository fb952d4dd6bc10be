// Package integrations - источники данных очереди заявок для консоли:
// сервер заявок и фиксированный демо-набор на случай его недоступности.
package integrations

import (
	"context"

	"civiq/internal/entities"
	"civiq/internal/view"
)

// DataSource - внешний источник коллекции заявок.
// Ошибки транспорта и сбои сервера оборачивают apperrors.ErrAdapterUnavailable.
type DataSource interface {
	Name() string
	FetchAll(ctx context.Context) ([]entities.Request, error)
	Update(ctx context.Context, id int64, req entities.Request) (entities.Request, error)
	Stats(ctx context.Context) (view.DashboardStats, error)
}
