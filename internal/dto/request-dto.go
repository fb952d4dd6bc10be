package dto

// CreateRequestDTO - приём новой заявки. Статус всегда submitted.
type CreateRequestDTO struct {
	Service     string   `json:"service" validate:"required,max=120"`
	Department  string   `json:"department" validate:"omitempty,max=120"`
	Location    string   `json:"location" validate:"required,max=255"`
	Phone       string   `json:"phone" validate:"required,phone"`
	Description string   `json:"description" validate:"required,max=2000"`
	Priority    string   `json:"priority" validate:"required,priority"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Photo       *string  `json:"photo,omitempty" validate:"omitempty,url"`
}

// TransitionDTO - действие участника над заявкой.
type TransitionDTO struct {
	Action string `json:"action" validate:"required"`
	Notes  string `json:"notes" validate:"max=2000"`
	Target string `json:"target" validate:"max=120"`
}
