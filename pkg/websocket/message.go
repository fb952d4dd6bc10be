package websocket

import (
	"encoding/json"
	"time"
)

// Envelope - сообщение об изменении заявки. Department дублирует адресата рассылки:
// клиент с областью "All Services" по нему понимает, чья это заявка.
type Envelope struct {
	Type       string      `json:"type"`
	Department string      `json:"department"`
	Payload    interface{} `json:"payload"`
	Timestamp  time.Time   `json:"timestamp"`
}

// scopedMessage - закодированный Envelope в очереди рассылки хаба.
type scopedMessage struct {
	department string
	data       []byte
}

func encodeScoped(department, messageType string, payload interface{}, at time.Time) (scopedMessage, error) {
	data, err := json.Marshal(Envelope{
		Type:       messageType,
		Department: department,
		Payload:    payload,
		Timestamp:  at.UTC(),
	})
	if err != nil {
		return scopedMessage{}, err
	}
	return scopedMessage{department: department, data: data}, nil
}
