package dto

import "time"

type RegisterDTO struct {
	FullName   string `json:"fullName" validate:"required,max=120"`
	Username   string `json:"username" validate:"required,min=3,max=64"`
	Password   string `json:"password" validate:"required"`
	Role       string `json:"role" validate:"omitempty,role"`
	Department string `json:"department" validate:"omitempty,max=120"`
}

type LoginDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponseDTO - токен и сессия, которую он несёт.
type AuthResponseDTO struct {
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Actor      string    `json:"actor"`
	Role       string    `json:"role"`
	Department string    `json:"department"`
}

type UserPublicDTO struct {
	FullName   string `json:"fullName"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	Department string `json:"department"`
}
