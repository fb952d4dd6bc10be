package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"civiq/internal/entities"
	"civiq/internal/lifecycle"
	"civiq/pkg/constants"
)

var statusLabels = map[constants.RequestStatus]string{
	constants.StatusSubmitted:           "Новая",
	constants.StatusAssigned:            "Назначена",
	constants.StatusInProgress:          "В работе",
	constants.StatusWaitingDriverUpdate: "Ждёт водителя",
	constants.StatusCompleted:           "Завершена",
}

var statusColors = map[constants.RequestStatus]color.Attribute{
	constants.StatusSubmitted:           color.FgBlue,
	constants.StatusAssigned:            color.FgCyan,
	constants.StatusInProgress:          color.FgYellow,
	constants.StatusWaitingDriverUpdate: color.FgMagenta,
	constants.StatusCompleted:           color.FgGreen,
}

var priorityColors = map[constants.Priority]color.Attribute{
	constants.PriorityUrgent: color.FgRed,
	constants.PriorityHigh:   color.FgHiYellow,
	constants.PriorityMedium: color.FgWhite,
	constants.PriorityLow:    color.FgHiBlack,
}

var actionLabels = map[lifecycle.Action]string{
	lifecycle.ActionAssign:   "взять заявку",
	lifecycle.ActionStart:    "начать работу",
	lifecycle.ActionComplete: "завершить",
	lifecycle.ActionForward:  "перенаправить (--target)",
	lifecycle.ActionConfirm:  "подтвердить выполнение",
}

func statusLabel(s constants.RequestStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// statusBadge выравнивает метку до раскраски: escape-коды ломают ширину колонок.
func statusBadge(s constants.RequestStatus, width int) string {
	text := pad(statusLabel(s), width)
	if attr, ok := statusColors[s]; ok {
		return color.New(attr).Sprint(text)
	}
	return text
}

func priorityBadge(p constants.Priority, width int) string {
	text := pad(string(p), width)
	if attr, ok := priorityColors[p]; ok {
		if p == constants.PriorityUrgent {
			return color.New(attr, color.Bold).Sprint(text)
		}
		return color.New(attr).Sprint(text)
	}
	return text
}

func roleLabel(r constants.Role) string {
	switch r {
	case constants.RoleDriver:
		return "водитель"
	case constants.RoleDepartment:
		return "департамент"
	}
	return string(r)
}

// pad дополняет строку пробелами по числу символов, а не байт.
func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.ToUpper(raw), "SR"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("некорректный номер заявки %q", raw)
	}
	return id, nil
}

func formatHistoryEntry(h entities.HistoryEntry) string {
	line := fmt.Sprintf("%s  %-10s %s", h.Timestamp.Local().Format("02.01.2006 15:04"), h.Action, h.By)
	if h.Target != "" {
		line += " → " + h.Target
	}
	if h.Notes != "" {
		line += ": " + h.Notes
	}
	return line
}
