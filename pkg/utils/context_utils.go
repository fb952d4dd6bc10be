package utils

import (
	"context"
	"time"

	"civiq/internal/session"
	apperrors "civiq/pkg/errors"
)

// ctxKey - ключи значений, которые AuthMiddleware кладёт в контекст запроса.
type ctxKey int

const (
	sessionKey ctxKey = iota
	tokenIDKey
	tokenExpKey
)

// WithSession привязывает сессию оператора к контексту: по ней сервисы проверяют роль и департамент.
func WithSession(ctx context.Context, s session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// WithToken сохраняет jti и срок действия токена, они нужны для отзыва сессии при logout.
func WithToken(ctx context.Context, id string, expiresAt time.Time) context.Context {
	ctx = context.WithValue(ctx, tokenIDKey, id)
	if !expiresAt.IsZero() {
		ctx = context.WithValue(ctx, tokenExpKey, expiresAt)
	}
	return ctx
}

func GetSessionFromContext(ctx context.Context) (session.Session, error) {
	s, ok := ctx.Value(sessionKey).(session.Session)
	if !ok {
		return session.Session{}, apperrors.ErrSessionNotFoundInContext
	}
	return s, nil
}

// GetTokenFromContext возвращает jti и срок действия токена текущего запроса.
func GetTokenFromContext(ctx context.Context) (string, time.Time, error) {
	id, ok := ctx.Value(tokenIDKey).(string)
	if !ok || id == "" {
		return "", time.Time{}, apperrors.ErrUnauthorized
	}
	exp, _ := ctx.Value(tokenExpKey).(time.Time)
	return id, exp, nil
}
