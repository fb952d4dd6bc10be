package events

import (
	"civiq/internal/entities"
)

const (
	RequestCreatedEvent = "request.created"
	RequestUpdatedEvent = "request.updated"
)

// RequestChanged - заявка создана или изменена. Previous пуст при создании.
type RequestChanged struct {
	Kind     string
	Request  entities.Request
	Previous entities.Request
	Actor    string
}

func (e RequestChanged) Name() string {
	return e.Kind
}

// Departments - департаменты, которых касается изменение (при пересылке их два).
func (e RequestChanged) Departments() []string {
	if e.Previous.Department != "" && e.Previous.Department != e.Request.Department {
		return []string{e.Previous.Department, e.Request.Department}
	}
	return []string{e.Request.Department}
}
