package backend

import (
	"context"
	"net/http"

	"civiq/internal/dto"
)

// Login получает токен сессии и запоминает его в провайдере.
func (p *Provider) Login(ctx context.Context, username, password string) (dto.AuthResponseDTO, error) {
	res, err := call[dto.AuthResponseDTO](p, ctx, http.MethodPost, "/auth/login", dto.LoginDTO{
		Username: username,
		Password: password,
	})
	if err != nil {
		return dto.AuthResponseDTO{}, err
	}
	p.SetToken(res.Token)
	return res, nil
}

func (p *Provider) Register(ctx context.Context, in dto.RegisterDTO) (dto.UserPublicDTO, error) {
	return call[dto.UserPublicDTO](p, ctx, http.MethodPost, "/auth/register", in)
}

// Logout отзывает токен на сервере. Локальный токен сбрасывается в любом случае.
func (p *Provider) Logout(ctx context.Context) error {
	_, err := call[struct{}](p, ctx, http.MethodPost, "/auth/logout", nil)
	p.SetToken("")
	return err
}
