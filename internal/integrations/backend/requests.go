package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"civiq/pkg/api"
	apperrors "civiq/pkg/errors"
)

// call выполняет запрос и разворачивает конверт {status, message, body}.
func call[T any](p *Provider, ctx context.Context, method, endpoint string, payload interface{}) (T, error) {
	var zero T

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return zero, fmt.Errorf("ошибка сериализации тела запроса для '%s': %w", endpoint, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+endpoint, body)
	if err != nil {
		return zero, fmt.Errorf("ошибка создания запроса %s %s: %w", method, endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := p.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("%w: %s %s: %v", apperrors.ErrAdapterUnavailable, method, endpoint, err)
	}
	defer resp.Body.Close()

	var envelope api.Response[T]
	decodeErr := json.NewDecoder(resp.Body).Decode(&envelope)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.logger.Warn("Сервер вернул ошибку",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("message", envelope.Message),
		)
		return zero, statusError(resp.StatusCode, envelope.Message)
	}
	if decodeErr != nil {
		return zero, fmt.Errorf("%w: некорректный ответ на %s %s: %v", apperrors.ErrAdapterUnavailable, method, endpoint, decodeErr)
	}
	return envelope.Body, nil
}

// statusError переводит HTTP-код ответа обратно в доменную ошибку.
func statusError(code int, message string) error {
	var base error
	switch code {
	case http.StatusNotFound:
		base = apperrors.ErrNotFound
	case http.StatusConflict:
		base = apperrors.ErrInvalidTransition
	case http.StatusBadRequest:
		base = apperrors.ErrBadRequest
	case http.StatusUnprocessableEntity:
		base = apperrors.ErrInconsistentState
	case http.StatusUnauthorized, http.StatusForbidden:
		base = apperrors.ErrUnauthorized
	case http.StatusTooManyRequests:
		base = apperrors.ErrAccountLocked
	default:
		base = apperrors.ErrAdapterUnavailable
	}
	if message == "" {
		message = http.StatusText(code)
	}
	return fmt.Errorf("%w: %s", base, message)
}
