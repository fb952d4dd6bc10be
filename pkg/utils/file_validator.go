package utils

import (
	"fmt"
	"io"
	"slices"

	"github.com/gabriel-vasile/mimetype"

	"civiq/pkg/config"
	apperrors "civiq/pkg/errors"
)

// ValidateFile проверяет размер и тип по содержимому, а не по расширению.
// Возвращает определённый MIME-тип; указатель файла возвращается в начало.
func ValidateFile(size int64, file io.ReadSeeker, rules config.UploadConfig) (string, error) {
	if rules.MaxSizeMB > 0 && size > rules.MaxSizeMB*1024*1024 {
		return "", fmt.Errorf("%w: размер файла (%d KB) превышает лимит в %d MB", apperrors.ErrBadRequest, size/1024, rules.MaxSizeMB)
	}

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("%w: не удалось прочитать файл для определения типа", apperrors.ErrBadRequest)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("не удалось сбросить указатель файла: %w", err)
	}

	if !slices.ContainsFunc(rules.AllowedMimeTypes, mtype.Is) {
		return "", fmt.Errorf("%w: недопустимый тип файла %s", apperrors.ErrBadRequest, mtype.String())
	}
	return mtype.String(), nil
}
