package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"civiq/internal/dto"
	"civiq/internal/entities"
	"civiq/internal/services"
	"civiq/internal/view"
	"civiq/pkg/api"
	apperrors "civiq/pkg/errors"
	"civiq/pkg/utils"
)

type RequestController struct {
	requestService services.RequestServiceInterface
	logger         *zap.Logger
}

func NewRequestController(requestService services.RequestServiceInterface, logger *zap.Logger) *RequestController {
	return &RequestController{requestService: requestService, logger: logger}
}

// GetRequests - вся коллекция либо её проекция по query-параметрам.
func (c *RequestController) GetRequests(ctx echo.Context) error {
	cfg := view.ParseConfig(ctx.QueryParams())
	list, err := c.requestService.List(ctx.Request().Context(), cfg)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Список заявок получен", list)
}

func (c *RequestController) FindRequest(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	req, err := c.requestService.Get(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Заявка найдена", req)
}

func (c *RequestController) CreateRequest(ctx echo.Context) error {
	var payload dto.CreateRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	req, err := c.requestService.Create(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, req, "Заявка принята", http.StatusCreated)
}

// UpdateRequest - PUT полной записи, частичных изменений нет.
func (c *RequestController) UpdateRequest(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload entities.Request
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат заявки", err, nil), c.logger)
	}

	req, err := c.requestService.Replace(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, req, "Заявка обновлена", http.StatusOK)
}

func (c *RequestController) TransitionRequest(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.TransitionDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	req, err := c.requestService.Transition(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, req, "Действие выполнено", http.StatusOK)
}

var exportHeaders = []interface{}{
	"Номер", "Служба", "Департамент", "Адрес", "Телефон", "Описание",
	"Приоритет", "Статус", "Дата подачи", "Исполнитель", "Ждёт водителя", "Карта",
}

func exportRow(r entities.Request) []interface{} {
	mapLink, _ := utils.MapLink(r.Coordinates)
	awaiting := ""
	if r.DepartmentCompleted && !r.DriverCompleted {
		awaiting = "да"
	}
	return []interface{}{
		utils.RequestLabel(r.ID), r.Service, r.Department, r.Location, r.Phone, r.Description,
		string(r.Priority), string(r.Status), r.DateSubmitted.Format("02.01.2006 15:04"),
		r.AssignedTo.String, awaiting, mapLink,
	}
}

// ExportRequests выгружает текущую проекцию очереди в xlsx.
func (c *RequestController) ExportRequests(ctx echo.Context) error {
	format := strings.ToLower(ctx.QueryParam("format"))
	if format != "" && format != "xlsx" {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(fmt.Sprintf("Формат %q не поддерживается", format)), c.logger)
	}

	list, err := c.requestService.List(ctx.Request().Context(), view.ParseConfig(ctx.QueryParams()))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Заявки"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	f.SetSheetRow(sheet, "A1", &exportHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "L1", style)

	for i, r := range list {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := exportRow(r)
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "B", "D", 22)
	f.SetColWidth(sheet, "F", "F", 40)
	f.SetColWidth(sheet, "L", "L", 45)

	fileName := fmt.Sprintf("requests_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
