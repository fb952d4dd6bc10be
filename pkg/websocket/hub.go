package websocket

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"civiq/pkg/constants"
)

// Hub рассылает изменения очереди подключённым консолям.
// Всё состояние принадлежит горутине Run, остальные общаются с ней через каналы.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan scopedMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan scopedMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.Named("ws_hub"),
	}
}

// Register и Unregister не блокируются после остановки хаба.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Run обслуживает хаб до отмены контекста.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.logger.Info("Клиент зарегистрирован", zap.String("actor", client.Actor), zap.String("scope", client.Scope))
		case client := <-h.unregister:
			h.drop(client)
		case msg := <-h.broadcast:
			for client := range h.clients {
				if !subscribed(client.Scope, msg.department) {
					continue
				}
				select {
				case client.Send <- msg.data:
				default:
					h.logger.Warn("Клиент не успевает читать, отключаем", zap.String("actor", client.Actor))
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	h.logger.Info("Клиент отсоединен", zap.String("actor", client.Actor))
}

// BroadcastToDepartment отправляет сообщение подписчикам департамента и тем, кто видит все службы.
func (h *Hub) BroadcastToDepartment(department string, payload interface{}, messageType string) error {
	msg, err := encodeScoped(department, messageType, payload, time.Now())
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("Очередь рассылки переполнена, сообщение пропущено", zap.String("type", messageType))
	}
	return nil
}

func subscribed(scope, department string) bool {
	return scope == "" || scope == constants.AllServices || strings.EqualFold(scope, "all") || scope == department
}
