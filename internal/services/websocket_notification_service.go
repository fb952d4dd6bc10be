package services

import (
	"go.uber.org/zap"

	"civiq/pkg/websocket"
)

// Интерфейс, чтобы можно было подменять в тестах
type WebSocketNotificationServiceInterface interface {
	NotifyDepartment(department string, payload interface{}, messageType string) error
}

type WebSocketNotificationService struct {
	hub    *websocket.Hub
	logger *zap.Logger
}

func NewWebSocketNotificationService(hub *websocket.Hub, logger *zap.Logger) WebSocketNotificationServiceInterface {
	return &WebSocketNotificationService{hub: hub, logger: logger}
}

// NotifyDepartment пробрасывает сообщение в хаб: его получат консоли этого
// департамента и все, кто подписан на "все службы".
func (s *WebSocketNotificationService) NotifyDepartment(department string, payload interface{}, messageType string) error {
	s.logger.Debug("Отправка WebSocket-уведомления",
		zap.String("department", department),
		zap.String("type", messageType),
	)
	return s.hub.BroadcastToDepartment(department, payload, messageType)
}
