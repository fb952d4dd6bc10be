package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"civiq/pkg/constants"
)

// ErrNoSession - пользователь ещё не входил или уже вышел.
var ErrNoSession = errors.New("сессия не найдена, выполните вход")

// persisted - то, что консоль хранит между запусками.
// Ключи совпадают с ключами, которые использовала веб-версия.
type persisted struct {
	User       string `yaml:"civiq_user"`
	Role       string `yaml:"civiq_role"`
	Department string `yaml:"civiq_department,omitempty"`
	Token      string `yaml:"civiq_token,omitempty"`
}

// FileStore хранит сессию консоли в YAML-файле.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load читает сессию и токен. Токена нет, если вход был офлайн.
func (f *FileStore) Load() (Session, string, error) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, "", ErrNoSession
		}
		return Session{}, "", fmt.Errorf("не удалось прочитать файл сессии: %w", err)
	}

	var p persisted
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Session{}, "", fmt.Errorf("файл сессии повреждён: %w", err)
	}

	s, err := New(p.User, constants.Role(p.Role), p.Department)
	if err != nil {
		return Session{}, "", fmt.Errorf("файл сессии содержит некорректные данные: %w", err)
	}
	return s, p.Token, nil
}

func (f *FileStore) Save(s Session, token string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	raw, err := yaml.Marshal(persisted{
		User:       s.Actor,
		Role:       string(s.Role),
		Department: s.Department,
		Token:      token,
	})
	if err != nil {
		return fmt.Errorf("ошибка сериализации сессии: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("не удалось создать каталог для сессии: %w", err)
	}
	return os.WriteFile(f.Path, raw, 0o600)
}

// Clear удаляет сессию (logout). Отсутствие файла ошибкой не считается.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("не удалось удалить файл сессии: %w", err)
	}
	return nil
}
