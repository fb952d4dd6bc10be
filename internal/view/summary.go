package view

import (
	"time"

	"civiq/internal/entities"
	"civiq/internal/lifecycle"
	"civiq/pkg/constants"
)

// Summary - счётчики для консоли департамента.
type Summary struct {
	Pending        int `json:"pending"`
	InProgress     int `json:"inProgress"`
	AwaitingDriver int `json:"awaitingDriver"`
	Completed      int `json:"completed"`
	Total          int `json:"total"`
}

func Summarize(collection []entities.Request) Summary {
	var s Summary
	for _, r := range collection {
		s.Total++
		switch r.Status {
		case constants.StatusSubmitted:
			s.Pending++
		case constants.StatusAssigned, constants.StatusInProgress:
			s.InProgress++
		case constants.StatusCompleted:
			s.Completed++
		}
		if lifecycle.AwaitingDriverConfirmation(r) {
			s.AwaitingDriver++
		}
	}
	return s
}

// DashboardStats - агрегат для GET /dashboard-stats.
type DashboardStats struct {
	Pending        int `json:"pending"`
	Active         int `json:"active"`
	CompletedToday int `json:"completedToday"`
	Total          int `json:"total"`
}

// Dashboard считает сводку; "сегодня" определяется по календарному дню now в его часовом поясе.
func Dashboard(collection []entities.Request, now time.Time) DashboardStats {
	var s DashboardStats
	y, m, d := now.Date()
	for _, r := range collection {
		s.Total++
		switch r.Status {
		case constants.StatusSubmitted:
			s.Pending++
		case constants.StatusAssigned, constants.StatusInProgress, constants.StatusWaitingDriverUpdate:
			s.Active++
		case constants.StatusCompleted:
			at, ok := CompletedAt(r)
			if !ok {
				continue
			}
			at = at.In(now.Location())
			if cy, cm, cd := at.Date(); cy == y && cm == m && cd == d {
				s.CompletedToday++
			}
		}
	}
	return s
}

// CompletedAt - время последней записи истории завершённой заявки.
func CompletedAt(r entities.Request) (time.Time, bool) {
	if r.Status != constants.StatusCompleted || len(r.History) == 0 {
		return time.Time{}, false
	}
	return r.History[len(r.History)-1].Timestamp, true
}
