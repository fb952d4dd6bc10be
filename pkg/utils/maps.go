package utils

import (
	"fmt"

	"civiq/internal/entities"
	"civiq/pkg/constants"
)

// MapLink - ссылка на карту по координатам заявки, ok=false если координат нет.
func MapLink(c *entities.Coordinates) (string, bool) {
	if c == nil {
		return "", false
	}
	return fmt.Sprintf("%s?q=%g,%g", constants.MapsBaseURL, c.Latitude, c.Longitude), true
}

// RequestLabel - отображаемый номер заявки, например SR000042.
func RequestLabel(id int64) string {
	return fmt.Sprintf("SR%06d", id)
}
