package entities

import (
	"time"

	"civiq/pkg/constants"
)

// Credential - зарегистрированная учётная запись для входа в консоль.
// Пароль хранится только в виде bcrypt-хэша.
type Credential struct {
	FullName     string         `json:"fullName"`
	Username     string         `json:"username"`
	PasswordHash string         `json:"passwordHash"`
	Role         constants.Role `json:"role"`
	Department   string         `json:"department,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}
