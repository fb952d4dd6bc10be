package utils

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	apperrors "civiq/pkg/errors"
)

// MaxPasswordBytes - предел bcrypt, хвост длиннее не участвует в хеше.
const MaxPasswordBytes = 72

// HashPassword готовит пароль учётной записи консоли к записи в хранилище.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", apperrors.NewBadRequestError(fmt.Sprintf("Пароль длиннее %d байт", MaxPasswordBytes))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

// CheckPassword сверяет пароль с сохранённым хешем. Несовпадение даёт ErrInvalidCredentials,
// испорченный хеш в хранилище - отдельную ошибку.
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return apperrors.ErrInvalidCredentials
	default:
		return fmt.Errorf("хеш пароля учётной записи повреждён: %w", err)
	}
}
