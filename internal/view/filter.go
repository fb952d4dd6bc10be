// Package view строит отображаемые подмножества очереди заявок.
// Исходная коллекция никогда не меняется и не пересортировывается.
package view

import (
	"net/url"
	"strconv"
	"strings"

	"civiq/internal/entities"
	"civiq/internal/lifecycle"
	"civiq/internal/session"
	"civiq/pkg/constants"
)

// Значения фильтра статуса помимо самих статусов.
const (
	// All - всё, кроме завершённых (завершённые скрыты по умолчанию).
	All = "all"
	// Active - назначенные и в работе: "мои текущие" у водителя.
	Active = "active"
	// AwaitingDriver - департамент закончил, водитель не подтвердил, независимо от статуса.
	AwaitingDriver = "awaiting-driver"
	// Any - без фильтра по статусу, включая завершённые.
	Any = "any"
)

type Config struct {
	Scope    string `json:"scope" query:"scope"`
	Status   string `json:"status" query:"status"`
	Service  string `json:"service" query:"service"`
	Priority string `json:"priority" query:"priority"`
	Search   string `json:"search" query:"search"`
}

// ForSession - конфигурация по умолчанию для пользователя: его департамент, всё незавершённое.
func ForSession(s session.Session) Config {
	return Config{Scope: s.Scope(), Status: All, Service: All, Priority: All}
}

// ParseConfig читает фильтры из query-параметров. department - синоним scope.
// Без параметра status возвращается вся коллекция, включая завершённые.
func ParseConfig(values url.Values) Config {
	cfg := Config{
		Scope:    values.Get("scope"),
		Status:   values.Get("status"),
		Service:  values.Get("service"),
		Priority: values.Get("priority"),
		Search:   values.Get("search"),
	}
	if cfg.Scope == "" {
		cfg.Scope = values.Get("department")
	}
	if cfg.Status == "" {
		cfg.Status = Any
	}
	return cfg
}

// Project возвращает копии заявок, подходящих под конфигурацию, в исходном порядке.
// Изменение результата не затрагивает коллекцию.
func Project(collection []entities.Request, cfg Config) []entities.Request {
	out := make([]entities.Request, 0, len(collection))
	for _, r := range collection {
		if Matches(r, cfg) {
			out = append(out, r.Clone())
		}
	}
	return out
}

func Matches(r entities.Request, cfg Config) bool {
	if !session.IsWildcard(cfg.Scope) && r.Department != cfg.Scope {
		return false
	}
	if !matchStatus(r, cfg.Status) {
		return false
	}
	if !isAll(cfg.Service) && r.Service != cfg.Service {
		return false
	}
	if !isAll(cfg.Priority) && string(r.Priority) != cfg.Priority {
		return false
	}
	return matchSearch(r, cfg.Search)
}

func matchStatus(r entities.Request, filter string) bool {
	switch filter {
	case "", All:
		return r.Status != constants.StatusCompleted
	case Any:
		return true
	case Active:
		return r.Status == constants.StatusAssigned || r.Status == constants.StatusInProgress
	case AwaitingDriver:
		return lifecycle.AwaitingDriverConfirmation(r)
	default:
		return string(r.Status) == filter
	}
}

func matchSearch(r entities.Request, search string) bool {
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return true
	}
	haystack := strings.ToLower(strconv.FormatInt(r.ID, 10) + " " + r.Location + " " + r.Phone + " " + r.Service)
	return strings.Contains(haystack, q)
}

func isAll(v string) bool {
	return v == "" || v == All
}
