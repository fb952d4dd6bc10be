package filestorage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type FileStorageInterface interface {
	// Save возвращает публичный URL сохранённого файла.
	Save(file io.Reader, originalFileName string, prefix string) (fileURL string, err error)
	Delete(fileURL string) error
	// Owns - URL указывает на файл этого хранилища, а не на внешний ресурс.
	Owns(fileURL string) bool
}

// LocalFileStorage раскладывает файлы по датам: <prefix>/2006/01/02/<uuid>.ext.
type LocalFileStorage struct {
	basePath  string
	urlPrefix string
	now       func() time.Time
}

func NewLocalFileStorage(basePath, urlPrefix string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию: %w", err)
	}
	return &LocalFileStorage{
		basePath:  basePath,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		now:       time.Now,
	}, nil
}

func (s *LocalFileStorage) Save(file io.Reader, originalFileName string, prefix string) (string, error) {
	now := s.now()
	ext := strings.ToLower(filepath.Ext(originalFileName))
	uniqueFileName := fmt.Sprintf("%s-%s%s", now.Format("2006-01-02"), uuid.New().String(), ext)

	datePath := now.Format("2006/01/02")
	fullDirPath := filepath.Join(s.basePath, prefix, filepath.FromSlash(datePath))
	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(filepath.Join(fullDirPath, uniqueFileName))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		return "", err
	}
	return path.Join(s.urlPrefix, prefix, datePath, uniqueFileName), nil
}

func (s *LocalFileStorage) Owns(fileURL string) bool {
	return strings.HasPrefix(fileURL, s.urlPrefix+"/")
}

// Delete удаляет файл по его URL. Отсутствие файла ошибкой не считается.
func (s *LocalFileStorage) Delete(fileURL string) error {
	if !s.Owns(fileURL) {
		return fmt.Errorf("файл %q не принадлежит хранилищу", fileURL)
	}
	relativePath := path.Clean(strings.TrimPrefix(fileURL, s.urlPrefix+"/"))
	if strings.HasPrefix(relativePath, "..") {
		return fmt.Errorf("некорректный путь файла %q", fileURL)
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(relativePath))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
