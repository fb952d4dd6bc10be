package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"civiq/internal/dto"
	"civiq/internal/entities"
	"civiq/internal/repositories"
	"civiq/internal/session"
	"civiq/pkg/config"
	"civiq/pkg/constants"
	apperrors "civiq/pkg/errors"
	"civiq/pkg/service"
	"civiq/pkg/utils"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, payload dto.RegisterDTO) (dto.UserPublicDTO, error)
	Login(ctx context.Context, payload dto.LoginDTO) (dto.AuthResponseDTO, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsSessionRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthService struct {
	credRepo  repositories.CredentialRepositoryInterface
	cacheRepo repositories.CacheRepositoryInterface
	jwt       service.JWTService
	cfg       *config.AuthConfig
	logger    *zap.Logger
	now       func() time.Time
}

func NewAuthService(
	credRepo repositories.CredentialRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtSvc service.JWTService,
	cfg *config.AuthConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		credRepo:  credRepo,
		cacheRepo: cacheRepo,
		jwt:       jwtSvc,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Register заводит учётную запись. Без роли пользователь считается водителем.
func (s *AuthService) Register(ctx context.Context, payload dto.RegisterDTO) (dto.UserPublicDTO, error) {
	if len(payload.Password) < s.cfg.MinPasswordLength {
		return dto.UserPublicDTO{}, apperrors.NewBadRequestError(
			fmt.Sprintf("Пароль должен содержать не менее %d символов", s.cfg.MinPasswordLength))
	}
	role := constants.Role(payload.Role)
	if role == "" {
		role = constants.RoleDriver
	}
	sess, err := session.New(payload.FullName, role, payload.Department)
	if err != nil {
		return dto.UserPublicDTO{}, apperrors.NewBadRequestError(err.Error())
	}

	hash, err := utils.HashPassword(payload.Password)
	if err != nil {
		return dto.UserPublicDTO{}, err
	}
	cred := entities.Credential{
		FullName:     sess.Actor,
		Username:     strings.TrimSpace(payload.Username),
		PasswordHash: hash,
		Role:         sess.Role,
		Department:   sess.Department,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.credRepo.Create(ctx, cred); err != nil {
		return dto.UserPublicDTO{}, err
	}

	s.logger.Info("Зарегистрирован пользователь", zap.String("username", cred.Username), zap.String("role", string(cred.Role)))
	return toUserPublic(cred), nil
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (dto.AuthResponseDTO, error) {
	username := strings.ToLower(strings.TrimSpace(payload.Username))
	if err := s.checkLockout(ctx, username); err != nil {
		return dto.AuthResponseDTO{}, err
	}

	cred, err := s.credRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.handleFailedLoginAttempt(ctx, username)
			return dto.AuthResponseDTO{}, apperrors.ErrInvalidCredentials
		}
		return dto.AuthResponseDTO{}, err
	}
	if err := utils.CheckPassword(cred.PasswordHash, payload.Password); err != nil {
		if !errors.Is(err, apperrors.ErrInvalidCredentials) {
			s.logger.Error("Не удалось проверить пароль", zap.String("username", cred.Username), zap.Error(err))
		}
		s.handleFailedLoginAttempt(ctx, username)
		return dto.AuthResponseDTO{}, apperrors.ErrInvalidCredentials
	}
	s.resetLoginAttempts(ctx, username)

	sess, err := session.New(cred.FullName, cred.Role, cred.Department)
	if err != nil {
		return dto.AuthResponseDTO{}, fmt.Errorf("учётная запись %q повреждена: %w", cred.Username, err)
	}
	token, claims, err := s.jwt.GenerateToken(sess)
	if err != nil {
		return dto.AuthResponseDTO{}, fmt.Errorf("ошибка выпуска токена: %w", err)
	}

	s.logger.Info("Вход выполнен", zap.String("username", cred.Username), zap.String("jti", claims.ID))
	return dto.AuthResponseDTO{
		Token:      token,
		ExpiresAt:  claims.ExpiresAt.Time,
		Actor:      sess.Actor,
		Role:       string(sess.Role),
		Department: sess.Department,
	}, nil
}

// Logout отзывает токен до истечения его срока действия.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if expiresAt.IsZero() {
		ttl = s.jwt.GetSessionTTL()
	}
	if ttl <= 0 {
		return nil
	}
	key := fmt.Sprintf(constants.CacheKeySessionRevoked, tokenID)
	if err := s.cacheRepo.Set(ctx, key, "revoked", ttl); err != nil {
		return fmt.Errorf("не удалось отозвать сессию: %w", err)
	}
	return nil
}

func (s *AuthService) IsSessionRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.cacheRepo.Exists(ctx, fmt.Sprintf(constants.CacheKeySessionRevoked, tokenID))
}

func (s *AuthService) checkLockout(ctx context.Context, username string) error {
	locked, err := s.cacheRepo.Exists(ctx, fmt.Sprintf(constants.CacheKeyLockout, username))
	if err != nil {
		s.logger.Warn("Не удалось проверить блокировку входа", zap.String("username", username), zap.Error(err))
		return nil
	}
	if locked {
		return apperrors.ErrAccountLocked
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, username string) {
	attemptsKey := fmt.Sprintf(constants.CacheKeyLoginAttempts, username)
	attempts, err := s.cacheRepo.Incr(ctx, attemptsKey)
	if err != nil {
		s.logger.Warn("Не удалось учесть неудачную попытку входа", zap.String("username", username), zap.Error(err))
		return
	}
	if attempts == 1 {
		_, _ = s.cacheRepo.Expire(ctx, attemptsKey, s.cfg.LockoutDuration)
	}
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		lockoutKey := fmt.Sprintf(constants.CacheKeyLockout, username)
		_ = s.cacheRepo.Set(ctx, lockoutKey, "locked", s.cfg.LockoutDuration)
		_ = s.cacheRepo.Del(ctx, attemptsKey)
		s.logger.Warn("Вход заблокирован после неудачных попыток", zap.String("username", username))
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, username string) {
	_ = s.cacheRepo.Del(ctx,
		fmt.Sprintf(constants.CacheKeyLoginAttempts, username),
		fmt.Sprintf(constants.CacheKeyLockout, username),
	)
}

func toUserPublic(c entities.Credential) dto.UserPublicDTO {
	return dto.UserPublicDTO{
		FullName:   c.FullName,
		Username:   c.Username,
		Role:       string(c.Role),
		Department: c.Department,
	}
}
