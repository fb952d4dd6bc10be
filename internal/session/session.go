// Package session описывает, кто сейчас работает с очередью заявок.
// Сессия передаётся явно во все компоненты вместо глобальных переменных страницы.
package session

import (
	"fmt"
	"strings"

	"civiq/pkg/constants"
)

type Session struct {
	Actor      string         `json:"actor"`
	Role       constants.Role `json:"role"`
	Department string         `json:"department"`
}

// New нормализует сессию: водитель без департамента видит все службы.
func New(actor string, role constants.Role, department string) (Session, error) {
	s := Session{
		Actor:      strings.TrimSpace(actor),
		Role:       role,
		Department: strings.TrimSpace(department),
	}
	if s.Role == constants.RoleDriver && s.Department == "" {
		s.Department = constants.AllServices
	}
	if err := s.Validate(); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (s Session) Validate() error {
	if s.Actor == "" {
		return fmt.Errorf("в сессии не указан пользователь")
	}
	if !s.Role.IsValid() {
		return fmt.Errorf("неизвестная роль %q", s.Role)
	}
	if s.Role == constants.RoleDepartment && (s.Department == "" || IsWildcard(s.Department)) {
		return fmt.Errorf("для сотрудника департамента нужно выбрать конкретный департамент")
	}
	return nil
}

// Scope - департамент, заявки которого видит пользователь, либо подстановка "все".
func (s Session) Scope() string {
	if s.Department == "" {
		return constants.AllServices
	}
	return s.Department
}

// IsWildcard сообщает, означает ли значение области видимости "все службы".
func IsWildcard(scope string) bool {
	return scope == "" || scope == constants.AllServices || strings.EqualFold(scope, "all")
}
