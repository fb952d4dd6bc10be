package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"civiq/internal/services"
	"civiq/pkg/config"
	apperrors "civiq/pkg/errors"
	"civiq/pkg/utils"
)

type PhotoController struct {
	photoService services.PhotoServiceInterface
	rules        config.UploadConfig
	logger       *zap.Logger
}

func NewPhotoController(photoService services.PhotoServiceInterface, rules config.UploadConfig, logger *zap.Logger) *PhotoController {
	return &PhotoController{photoService: photoService, rules: rules, logger: logger}
}

// UploadPhoto принимает multipart-поле "photo" и прикрепляет его к заявке.
func (c *PhotoController) UploadPhoto(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	fileHeader, err := ctx.FormFile("photo")
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Файл не был передан", apperrors.ErrBadRequest, nil), c.logger)
	}
	src, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusInternalServerError, "Ошибка обработки файла", err, nil), c.logger)
	}
	defer src.Close()

	if _, err := utils.ValidateFile(fileHeader.Size, src, c.rules); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	req, err := c.photoService.Attach(ctx.Request().Context(), id, src, fileHeader.Filename)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, req, "Фото прикреплено", http.StatusOK)
}
