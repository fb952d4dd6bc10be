// Package seeders наполняет хранилище демо-данными для стенда.
package seeders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"civiq/internal/entities"
	"civiq/internal/repositories"
	"civiq/internal/session"
	"civiq/pkg/constants"
	apperrors "civiq/pkg/errors"
	"civiq/pkg/utils"
)

// SeedDemoRequests переносит демо-набор в пустое хранилище. Если заявки уже
// есть, ничего не делает: сидер не должен смешивать демо с живыми данными.
func SeedDemoRequests(ctx context.Context, repo repositories.RequestRepositoryInterface, records []entities.Request, logger *zap.Logger) (int, error) {
	existing, err := repo.List(ctx, repositories.RequestFilter{Scope: constants.AllServices})
	if err != nil {
		return 0, fmt.Errorf("не удалось проверить хранилище: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("Хранилище уже содержит заявки, демо-набор пропущен", zap.Int("count", len(existing)))
		return 0, nil
	}

	created := 0
	for _, r := range records {
		req := r.Clone()
		req.ID = 0
		saved, err := repo.Create(ctx, req)
		if err != nil {
			return created, fmt.Errorf("демо-заявка %s: %w", utils.RequestLabel(r.ID), err)
		}
		logger.Debug("Демо-заявка добавлена", zap.Int64("id", saved.ID), zap.String("service", saved.Service))
		created++
	}
	logger.Info("Демо-набор заявок загружен", zap.Int("count", created))
	return created, nil
}

// DemoAccount - учётная запись стенда.
type DemoAccount struct {
	FullName   string
	Username   string
	Password   string
	Role       constants.Role
	Department string
}

// DefaultDemoAccounts - водитель и по одному сотруднику на каждую службу.
func DefaultDemoAccounts() []DemoAccount {
	accounts := []DemoAccount{
		{FullName: "Demo Driver", Username: "driver", Password: "driver", Role: constants.RoleDriver},
	}
	for _, dept := range constants.Departments {
		username := strings.ToLower(strings.ReplaceAll(dept, " ", "-"))
		accounts = append(accounts, DemoAccount{
			FullName:   dept + " Desk",
			Username:   username,
			Password:   username,
			Role:       constants.RoleDepartment,
			Department: dept,
		})
	}
	return accounts
}

// SeedDemoAccounts создаёт учётные записи; уже занятые имена пропускаются.
func SeedDemoAccounts(ctx context.Context, repo repositories.CredentialRepositoryInterface, accounts []DemoAccount, logger *zap.Logger) (int, error) {
	created := 0
	for _, a := range accounts {
		s, err := session.New(a.FullName, a.Role, a.Department)
		if err != nil {
			return created, fmt.Errorf("учётная запись %q: %w", a.Username, err)
		}
		hash, err := utils.HashPassword(a.Password)
		if err != nil {
			return created, err
		}
		err = repo.Create(ctx, entities.Credential{
			FullName:     s.Actor,
			Username:     a.Username,
			PasswordHash: hash,
			Role:         s.Role,
			Department:   s.Department,
			CreatedAt:    time.Now().UTC(),
		})
		if errors.Is(err, apperrors.ErrUsernameTaken) {
			logger.Debug("Учётная запись уже существует", zap.String("username", a.Username))
			continue
		}
		if err != nil {
			return created, fmt.Errorf("учётная запись %q: %w", a.Username, err)
		}
		created++
	}
	logger.Info("Демо-учётные записи созданы", zap.Int("count", created))
	return created, nil
}
