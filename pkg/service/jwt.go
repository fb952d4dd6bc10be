package service

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"civiq/internal/session"
	"civiq/pkg/constants"
	apperrors "civiq/pkg/errors"
)

type SessionClaims struct {
	Actor      string `json:"actor"`
	Role       string `json:"role"`
	Department string `json:"department"`
	jwt.RegisteredClaims
}

// Session восстанавливает сессию из claims токена.
func (c *SessionClaims) Session() (session.Session, error) {
	return session.New(c.Actor, constants.Role(c.Role), c.Department)
}

type JWTService interface {
	GenerateToken(s session.Session) (token string, claims *SessionClaims, err error)
	ValidateToken(tokenString string) (*SessionClaims, error)
	GetSessionTTL() time.Duration
}

type jwtService struct {
	SecretKey  string
	SessionTTL time.Duration
	now        func() time.Time
}

func NewJWTService(secretKey string, sessionTTL time.Duration) JWTService {
	return &jwtService{
		SecretKey:  secretKey,
		SessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func (service *jwtService) GenerateToken(s session.Session) (string, *SessionClaims, error) {
	now := service.now()
	claims := &SessionClaims{
		Actor:      s.Actor,
		Role:       string(s.Role),
		Department: s.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   s.Actor,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(service.SessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(service.SecretKey))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

func (service *jwtService) GetSessionTTL() time.Duration {
	return service.SessionTTL
}

func (service *jwtService) ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			return []byte(service.SecretKey), nil
		default:
			return nil, apperrors.ErrInvalidSigningMethod
		}
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperrors.ErrTokenExpired
		case errors.Is(err, apperrors.ErrInvalidSigningMethod):
			return nil, apperrors.ErrInvalidSigningMethod
		default:
			return nil, apperrors.ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
