package services

import (
	"context"
	"io"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"civiq/internal/entities"
	"civiq/internal/events"
	"civiq/internal/repositories"
	"civiq/pkg/eventbus"
	"civiq/pkg/filestorage"
)

type PhotoServiceInterface interface {
	Attach(ctx context.Context, id int64, file io.Reader, fileName string) (entities.Request, error)
}

// PhotoService прикрепляет к заявке фото с места. Загруженный файл заменяет
// прежнее фото; внешние ссылки, пришедшие при создании, не удаляются.
type PhotoService struct {
	repo       repositories.RequestRepositoryInterface
	storage    filestorage.FileStorageInterface
	pathPrefix string
	bus        *eventbus.Bus
	logger     *zap.Logger
}

func NewPhotoService(
	repo repositories.RequestRepositoryInterface,
	storage filestorage.FileStorageInterface,
	pathPrefix string,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *PhotoService {
	return &PhotoService{repo: repo, storage: storage, pathPrefix: pathPrefix, bus: bus, logger: logger}
}

func (s *PhotoService) Attach(ctx context.Context, id int64, file io.Reader, fileName string) (entities.Request, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return entities.Request{}, err
	}

	url, err := s.storage.Save(file, fileName, s.pathPrefix)
	if err != nil {
		return entities.Request{}, err
	}

	var previous entities.Request
	updated, err := s.repo.Update(ctx, id, func(stored entities.Request) (entities.Request, error) {
		previous = stored
		next := stored.Clone()
		next.Photo = null.StringFrom(url)
		return next, nil
	})
	if err != nil {
		if derr := s.storage.Delete(url); derr != nil {
			s.logger.Warn("Не удалось удалить осиротевший файл", zap.String("url", url), zap.Error(derr))
		}
		return entities.Request{}, err
	}

	if previous.Photo.Valid && s.storage.Owns(previous.Photo.String) {
		if err := s.storage.Delete(previous.Photo.String); err != nil {
			s.logger.Warn("Не удалось удалить прежнее фото", zap.String("url", previous.Photo.String), zap.Error(err))
		}
	}

	s.logger.Info("Фото прикреплено к заявке", zap.Int64("id", id), zap.String("url", url))
	publishChange(ctx, s.bus, events.RequestUpdatedEvent, updated, previous)
	return updated, nil
}
