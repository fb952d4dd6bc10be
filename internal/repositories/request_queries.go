package repositories

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"civiq/internal/entities"
	"civiq/internal/session"
	"civiq/pkg/constants"
	apperrors "civiq/pkg/errors"
)

// SQL-построители общие для PostgreSQL и SQLite, отличается только формат плейсхолдеров.

const (
	requestTable = "requests"
	historyTable = "request_history"
)

var requestColumns = []string{
	"id", "service", "department", "location", "phone", "description",
	"priority", "status", "date_submitted",
	"department_completed", "department_completed_at", "driver_completed",
	"assigned_to", "latitude", "longitude", "photo",
}

var historyColumns = []string{
	"request_id", "position", "id", "actor", "role", "action", "notes", "target", "created_at",
}

// RequestFilter - условия, которые хранилище умеет отфильтровать само.
// Остальная семантика фильтров (поиск, синтетические статусы) применяется поверх.
type RequestFilter struct {
	Scope    string
	Service  string
	Priority string
	Statuses []constants.RequestStatus
}

type rowScanner interface {
	Scan(dest ...any) error
}

func selectRequests(ph sq.PlaceholderFormat, f RequestFilter) sq.SelectBuilder {
	b := sq.Select(requestColumns...).From(requestTable).OrderBy("id ASC").PlaceholderFormat(ph)
	if !session.IsWildcard(f.Scope) {
		b = b.Where(sq.Eq{"department": f.Scope})
	}
	if f.Service != "" && f.Service != "all" {
		b = b.Where(sq.Eq{"service": f.Service})
	}
	if f.Priority != "" && f.Priority != "all" {
		b = b.Where(sq.Eq{"priority": f.Priority})
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		b = b.Where(sq.Eq{"status": statuses})
	}
	return b
}

func selectRequestByID(ph sq.PlaceholderFormat, id int64) sq.SelectBuilder {
	return sq.Select(requestColumns...).From(requestTable).Where(sq.Eq{"id": id}).PlaceholderFormat(ph)
}

func scanRequest(row rowScanner) (entities.Request, error) {
	var (
		r        entities.Request
		priority string
		status   string
		lat, lng sql.NullFloat64
	)
	err := row.Scan(
		&r.ID, &r.Service, &r.Department, &r.Location, &r.Phone, &r.Description,
		&priority, &status, &r.DateSubmitted,
		&r.DepartmentCompleted, &r.DepartmentCompletedAt, &r.DriverCompleted,
		&r.AssignedTo, &lat, &lng, &r.Photo,
	)
	if err != nil {
		return entities.Request{}, err
	}
	r.DateSubmitted = r.DateSubmitted.UTC()
	if r.DepartmentCompletedAt.Valid {
		r.DepartmentCompletedAt.Time = r.DepartmentCompletedAt.Time.UTC()
	}
	r.Priority = constants.Priority(priority)
	r.Status = constants.RequestStatus(status)
	if lat.Valid && lng.Valid {
		r.Coordinates = &entities.Coordinates{Latitude: lat.Float64, Longitude: lng.Float64}
	}
	return r, nil
}

func coordinateArgs(c *entities.Coordinates) (lat, lng sql.NullFloat64) {
	if c == nil {
		return
	}
	return sql.NullFloat64{Float64: c.Latitude, Valid: true}, sql.NullFloat64{Float64: c.Longitude, Valid: true}
}

func insertRequest(ph sq.PlaceholderFormat, r entities.Request) sq.InsertBuilder {
	lat, lng := coordinateArgs(r.Coordinates)
	return sq.Insert(requestTable).
		Columns(requestColumns[1:]...).
		Values(
			r.Service, r.Department, r.Location, r.Phone, r.Description,
			string(r.Priority), string(r.Status), r.DateSubmitted.UTC(),
			r.DepartmentCompleted, utcNullTime(r), r.DriverCompleted,
			r.AssignedTo, lat, lng, r.Photo,
		).
		Suffix("RETURNING id").
		PlaceholderFormat(ph)
}

// updateRequest перезаписывает все изменяемые поля; id и дата подачи неизменны.
func updateRequest(ph sq.PlaceholderFormat, r entities.Request) sq.UpdateBuilder {
	lat, lng := coordinateArgs(r.Coordinates)
	return sq.Update(requestTable).
		SetMap(map[string]interface{}{
			"service":                 r.Service,
			"department":              r.Department,
			"location":                r.Location,
			"phone":                   r.Phone,
			"description":             r.Description,
			"priority":                string(r.Priority),
			"status":                  string(r.Status),
			"department_completed":    r.DepartmentCompleted,
			"department_completed_at": utcNullTime(r),
			"driver_completed":        r.DriverCompleted,
			"assigned_to":             r.AssignedTo,
			"latitude":                lat,
			"longitude":               lng,
			"photo":                   r.Photo,
		}).
		Where(sq.Eq{"id": r.ID}).
		PlaceholderFormat(ph)
}

func utcNullTime(r entities.Request) interface{} {
	if !r.DepartmentCompletedAt.Valid {
		return nil
	}
	return r.DepartmentCompletedAt.Time.UTC()
}

func selectHistory(ph sq.PlaceholderFormat, ids []int64) sq.SelectBuilder {
	return sq.Select(historyColumns...).
		From(historyTable).
		Where(sq.Eq{"request_id": ids}).
		OrderBy("request_id ASC", "position ASC").
		PlaceholderFormat(ph)
}

func scanHistory(row rowScanner) (int64, entities.HistoryEntry, error) {
	var (
		requestID int64
		position  int
		e         entities.HistoryEntry
	)
	err := row.Scan(&requestID, &position, &e.ID, &e.By, &e.Role, &e.Action, &e.Notes, &e.Target, &e.Timestamp)
	e.Timestamp = e.Timestamp.UTC()
	return requestID, e, err
}

// insertHistory дописывает записи начиная с позиции from. Пустой набор не строится.
func insertHistory(ph sq.PlaceholderFormat, requestID int64, from int, entries []entities.HistoryEntry) (sq.InsertBuilder, bool) {
	if len(entries) == 0 {
		return sq.InsertBuilder{}, false
	}
	b := sq.Insert(historyTable).Columns(historyColumns...).PlaceholderFormat(ph)
	for i, e := range entries {
		b = b.Values(requestID, from+i, e.ID, e.By, e.Role, e.Action, e.Notes, e.Target, e.Timestamp.UTC())
	}
	return b, true
}

// attachHistory раскладывает записи истории по заявкам, сохраняя порядок заявок.
func attachHistory(list []entities.Request, byRequest map[int64][]entities.HistoryEntry) {
	for i := range list {
		list[i].History = byRequest[list[i].ID]
	}
}

func requestIDs(list []entities.Request) []int64 {
	ids := make([]int64, len(list))
	for i, r := range list {
		ids[i] = r.ID
	}
	return ids
}

func notFound(id int64) error {
	return fmt.Errorf("%w: заявка #%d", apperrors.ErrNotFound, id)
}
