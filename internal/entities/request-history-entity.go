package entities

import "time"

// HistoryEntry - одна запись журнала действий по заявке.
// Порядок в Request.History и есть порядок аудита.
type HistoryEntry struct {
	ID        string    `json:"id,omitempty" db:"id"`
	By        string    `json:"by" db:"actor"`
	Role      string    `json:"role,omitempty" db:"role"`
	Action    string    `json:"action" db:"action"`
	Notes     string    `json:"notes" db:"notes"`
	Target    string    `json:"target,omitempty" db:"target"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`
}
