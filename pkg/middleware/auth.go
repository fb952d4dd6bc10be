package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "civiq/pkg/errors"
	"civiq/pkg/service"
	"civiq/pkg/utils"
)

// RevocationChecker сообщает, был ли токен отозван через logout.
type RevocationChecker interface {
	IsSessionRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthMiddleware struct {
	jwtService service.JWTService
	revoked    RevocationChecker
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, revoked RevocationChecker, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		revoked:    revoked,
		logger:     logger,
	}
}

// Auth проверяет токен сессии и кладёт сессию в контекст запроса.
// Браузерный websocket не умеет ставить заголовки, поэтому допускается ?token=.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString, err := extractToken(c)
		if err != nil {
			m.logger.Warn("AuthMiddleware: токен не передан", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			m.logger.Warn("AuthMiddleware: Ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		ctx := c.Request().Context()
		revoked, err := m.revoked.IsSessionRevoked(ctx, claims.ID)
		if err != nil {
			return utils.ErrorResponse(c, err, m.logger)
		}
		if revoked {
			return utils.ErrorResponse(c, apperrors.ErrTokenRevoked, m.logger)
		}

		s, err := claims.Session()
		if err != nil {
			m.logger.Warn("AuthMiddleware: некорректная сессия в токене", zap.Error(err))
			return utils.ErrorResponse(c, apperrors.ErrInvalidToken, m.logger)
		}

		var expiresAt time.Time
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		ctx = utils.WithToken(utils.WithSession(ctx, s), claims.ID, expiresAt)
		c.SetRequest(c.Request().WithContext(ctx))

		m.logger.Debug("AuthMiddleware: сессия восстановлена",
			zap.String("actor", s.Actor),
			zap.String("role", string(s.Role)),
			zap.String("department", s.Department),
		)
		return next(c)
	}
}

func extractToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		if token := c.QueryParam("token"); token != "" {
			return token, nil
		}
		return "", apperrors.ErrEmptyAuthHeader
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", apperrors.ErrInvalidAuthHeader
	}
	return parts[1], nil
}
