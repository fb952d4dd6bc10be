package lifecycle

import (
	"time"

	"github.com/aarondl/null/v8"

	"civiq/internal/entities"
	"civiq/internal/session"
	"civiq/pkg/constants"
)

// Action - действие участника над заявкой.
type Action string

const (
	ActionAssign   Action = "assign"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionForward  Action = "forward"
	ActionConfirm  Action = "confirm"
)

// Command - запрос участника на переход.
type Command struct {
	Action Action
	Notes  string
	Target string // департамент назначения, только для forward
}

type transitionKey struct {
	from   constants.RequestStatus
	role   constants.Role
	action Action
}

type transition struct {
	to     constants.RequestStatus
	effect func(r *entities.Request, s session.Session, cmd Command, now time.Time)
}

func assignToActor(r *entities.Request, s session.Session, _ Command, _ time.Time) {
	r.AssignedTo = null.StringFrom(s.Actor)
}

func markDriverCompleted(r *entities.Request, _ session.Session, _ Command, _ time.Time) {
	r.DriverCompleted = true
}

func markDepartmentCompleted(r *entities.Request, _ session.Session, _ Command, now time.Time) {
	r.DepartmentCompleted = true
	r.DepartmentCompletedAt = null.TimeFrom(now)
}

// forwardTo сбрасывает только прогресс департамента. Флаг водителя не трогаем:
// на нефинальной заявке он всегда false.
func forwardTo(r *entities.Request, _ session.Session, cmd Command, _ time.Time) {
	r.Department = cmd.Target
	r.DepartmentCompleted = false
	r.DepartmentCompletedAt = null.Time{}
}

// transitions - единственный источник правды о том, кто, что и из какого статуса может сделать.
var transitions = map[transitionKey]transition{
	{constants.StatusSubmitted, constants.RoleDriver, ActionAssign}:             {constants.StatusAssigned, assignToActor},
	{constants.StatusAssigned, constants.RoleDriver, ActionStart}:               {constants.StatusInProgress, nil},
	{constants.StatusInProgress, constants.RoleDriver, ActionComplete}:          {constants.StatusCompleted, markDriverCompleted},
	{constants.StatusWaitingDriverUpdate, constants.RoleDriver, ActionConfirm}:  {constants.StatusCompleted, markDriverCompleted},
	{constants.StatusSubmitted, constants.RoleDepartment, ActionStart}:          {constants.StatusInProgress, assignToActor},
	{constants.StatusAssigned, constants.RoleDepartment, ActionStart}:           {constants.StatusInProgress, assignToActor},
	{constants.StatusInProgress, constants.RoleDepartment, ActionStart}:         {constants.StatusInProgress, assignToActor},
	{constants.StatusInProgress, constants.RoleDepartment, ActionComplete}:      {constants.StatusWaitingDriverUpdate, markDepartmentCompleted},
}

func init() {
	// forward разрешён обеим ролям из любого нефинального статуса.
	for _, status := range constants.AllStatuses {
		if status.IsFinal() {
			continue
		}
		for _, role := range []constants.Role{constants.RoleDriver, constants.RoleDepartment} {
			transitions[transitionKey{status, role, ActionForward}] = transition{constants.StatusSubmitted, forwardTo}
		}
	}
}

// actionOrder - порядок, в котором действия предлагаются в меню.
var actionOrder = []Action{ActionAssign, ActionStart, ActionComplete, ActionConfirm, ActionForward}

// IsKnownAction сообщает, входит ли действие в словарь хоть одной роли.
func IsKnownAction(a Action) bool {
	for _, known := range actionOrder {
		if a == known {
			return true
		}
	}
	return false
}
