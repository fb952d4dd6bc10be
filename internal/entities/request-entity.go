package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"civiq/pkg/constants"
)

// Coordinates - точка на карте для ссылки на место заявки.
type Coordinates struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Request - заявка горожанина. Единственная сущность очереди.
type Request struct {
	ID                    int64                   `json:"id" yaml:"id"`
	Service               string                  `json:"service" yaml:"service"`
	Department            string                  `json:"department" yaml:"department"`
	Location              string                  `json:"location" yaml:"location"`
	Phone                 string                  `json:"phone" yaml:"phone"`
	Description           string                  `json:"description" yaml:"description"`
	Priority              constants.Priority      `json:"priority" yaml:"priority"`
	Status                constants.RequestStatus `json:"status" yaml:"status"`
	DateSubmitted         time.Time               `json:"dateSubmitted" yaml:"dateSubmitted"`
	DepartmentCompleted   bool                    `json:"departmentCompleted" yaml:"departmentCompleted"`
	DepartmentCompletedAt null.Time               `json:"departmentCompletedAt" yaml:"-"`
	DriverCompleted       bool                    `json:"driverCompleted" yaml:"driverCompleted"`
	AssignedTo            null.String             `json:"assignedTo" yaml:"-"`
	Coordinates           *Coordinates            `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
	Photo                 null.String             `json:"photo" yaml:"-"`
	History               []HistoryEntry          `json:"history" yaml:"-"`
}

// Clone возвращает копию, не разделяющую с оригиналом ни историю, ни координаты.
func (r Request) Clone() Request {
	out := r
	if r.Coordinates != nil {
		c := *r.Coordinates
		out.Coordinates = &c
	}
	if r.History != nil {
		out.History = make([]HistoryEntry, len(r.History))
		copy(out.History, r.History)
	}
	return out
}
