package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"

	"civiq/internal/entities"
	"civiq/pkg/constants"
	apperrors "civiq/pkg/errors"
)

type CredentialRepositoryInterface interface {
	Create(ctx context.Context, cred entities.Credential) error
	FindByUsername(ctx context.Context, username string) (entities.Credential, error)
}

// CredentialRepository хранит учётные записи в одном хеше Redis: поле - имя пользователя.
type CredentialRepository struct {
	client *redis.Client
	key    string
}

func NewCredentialRepository(client *redis.Client) CredentialRepositoryInterface {
	return &CredentialRepository{client: client, key: constants.CacheKeyCredentials}
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Create атомарно добавляет учётную запись; занятое имя - ErrUsernameTaken.
func (r *CredentialRepository) Create(ctx context.Context, cred entities.Credential) error {
	raw, err := json.Marshal(cred)
	if err != nil {
		return err
	}
	ok, err := r.client.HSetNX(ctx, r.key, normalizeUsername(cred.Username), raw).Result()
	if err != nil {
		return fmt.Errorf("ошибка сохранения учётной записи: %w", err)
	}
	if !ok {
		return apperrors.ErrUsernameTaken
	}
	return nil
}

func (r *CredentialRepository) FindByUsername(ctx context.Context, username string) (entities.Credential, error) {
	raw, err := r.client.HGet(ctx, r.key, normalizeUsername(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return entities.Credential{}, fmt.Errorf("%w: пользователь %q", apperrors.ErrNotFound, username)
		}
		return entities.Credential{}, fmt.Errorf("ошибка чтения учётной записи: %w", err)
	}
	var cred entities.Credential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		return entities.Credential{}, fmt.Errorf("повреждённая учётная запись %q: %w", username, err)
	}
	return cred, nil
}
