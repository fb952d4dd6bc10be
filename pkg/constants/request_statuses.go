package constants

// RequestStatus - статус жизненного цикла заявки. Значения совпадают с тем, что
// хранится в БД и передаётся по API.
type RequestStatus string

const (
	StatusSubmitted           RequestStatus = "submitted"
	StatusAssigned            RequestStatus = "assigned"
	StatusInProgress          RequestStatus = "in-progress"
	StatusWaitingDriverUpdate RequestStatus = "waiting-driver-update"
	StatusCompleted           RequestStatus = "completed"
)

// AllStatuses в порядке прохождения жизненного цикла.
var AllStatuses = []RequestStatus{
	StatusSubmitted,
	StatusAssigned,
	StatusInProgress,
	StatusWaitingDriverUpdate,
	StatusCompleted,
}

func (s RequestStatus) String() string { return string(s) }

func (s RequestStatus) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsFinal - из финального статуса переходов нет.
func (s RequestStatus) IsFinal() bool {
	return s == StatusCompleted
}

// Priority - срочность заявки.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var AllPriorities = []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) IsValid() bool {
	for _, known := range AllPriorities {
		if p == known {
			return true
		}
	}
	return false
}

// Role - роль участника: полевой сотрудник (водитель) или сотрудник департамента.
type Role string

const (
	RoleDriver     Role = "driver"
	RoleDepartment Role = "department"
)

func (r Role) IsValid() bool {
	return r == RoleDriver || r == RoleDepartment
}

// AllServices - подстановочная область видимости: без ограничения по департаменту.
const AllServices = "All Services"

// Departments - известные службы, они же категории заявок.
var Departments = []string{
	"Road Repair",
	"Water Supply",
	"Street Lighting",
	"Waste Management",
	"Drainage",
}
