package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"civiq/internal/events"
	"civiq/internal/services"
	"civiq/pkg/constants"
	"civiq/pkg/eventbus"
)

// NotificationListener реагирует на изменения заявок: сбрасывает сводку
// дашборда и рассылает обновление консолям затронутых департаментов.
type NotificationListener struct {
	wsNotificationService services.WebSocketNotificationServiceInterface
	dashboard             services.DashboardServiceInterface
	logger                *zap.Logger
}

func NewNotificationListener(
	wsNotificationService services.WebSocketNotificationServiceInterface,
	dashboard services.DashboardServiceInterface,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		wsNotificationService: wsNotificationService,
		dashboard:             dashboard,
		logger:                logger,
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.RequestCreatedEvent, l.handleRequestChanged)
	bus.Subscribe(events.RequestUpdatedEvent, l.handleRequestChanged)
	l.logger.Info("NotificationListener подписан на события заявок",
		zap.Strings("events", []string{events.RequestCreatedEvent, events.RequestUpdatedEvent}))
}

func (l *NotificationListener) handleRequestChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.RequestChanged)
	if !ok {
		return fmt.Errorf("неожиданный тип события %T", event)
	}

	departments := e.Departments()
	if l.dashboard != nil {
		l.dashboard.Invalidate(ctx, departments...)
	}

	messageType := constants.MessageTypeRequestUpdated
	if e.Kind == events.RequestCreatedEvent {
		messageType = constants.MessageTypeRequestCreated
	}

	var firstErr error
	for _, dept := range departments {
		if err := l.wsNotificationService.NotifyDepartment(dept, e.Request, messageType); err != nil {
			l.logger.Error("Не удалось разослать обновление заявки",
				zap.Int64("id", e.Request.ID),
				zap.String("department", dept),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
