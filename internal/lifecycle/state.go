package lifecycle

import (
	"fmt"

	"civiq/internal/entities"
	"civiq/pkg/constants"
	apperrors "civiq/pkg/errors"
)

// State - каноническое состояние заявки: статус плюс подсостояние
// "департамент закончил, ждём подтверждения водителя".
type State struct {
	Status         constants.RequestStatus
	AwaitingDriver bool
}

// AwaitingDriverConfirmation - работа департамента завершена, водитель ещё не подтвердил.
// Это вычисляемый признак, а не отдельный статус для фильтров.
func AwaitingDriverConfirmation(r entities.Request) bool {
	return r.DepartmentCompleted && !r.DriverCompleted
}

// StateOf сводит флаги заявки к одному состоянию таблицы переходов.
// Любое сочетание, которого нет в таблице, - ErrInconsistentState.
func StateOf(r entities.Request) (State, error) {
	if !r.Status.IsValid() {
		return State{}, fmt.Errorf("%w: неизвестный статус %q", apperrors.ErrInconsistentState, r.Status)
	}
	if r.DepartmentCompleted != r.DepartmentCompletedAt.Valid {
		return State{}, fmt.Errorf("%w: departmentCompletedAt должен быть задан тогда и только тогда, когда departmentCompleted", apperrors.ErrInconsistentState)
	}

	switch r.Status {
	case constants.StatusSubmitted, constants.StatusAssigned, constants.StatusInProgress:
		if r.DepartmentCompleted || r.DriverCompleted {
			return State{}, fmt.Errorf("%w: статус %s несовместим с флагами завершения", apperrors.ErrInconsistentState, r.Status)
		}
	case constants.StatusWaitingDriverUpdate:
		if !r.DepartmentCompleted || r.DriverCompleted {
			return State{}, fmt.Errorf("%w: ожидание водителя требует departmentCompleted=true и driverCompleted=false", apperrors.ErrInconsistentState)
		}
	case constants.StatusCompleted:
		if !r.DriverCompleted {
			return State{}, fmt.Errorf("%w: завершённая заявка должна быть подтверждена водителем", apperrors.ErrInconsistentState)
		}
	}

	return State{Status: r.Status, AwaitingDriver: AwaitingDriverConfirmation(r)}, nil
}

// Validate проверяет заявку целиком: состояние, приоритет и обязательные поля.
func Validate(r entities.Request) error {
	if r.ID <= 0 {
		return fmt.Errorf("%w: id заявки должен быть положительным", apperrors.ErrInconsistentState)
	}
	if r.Department == "" {
		return fmt.Errorf("%w: у заявки не указан департамент", apperrors.ErrInconsistentState)
	}
	if !r.Priority.IsValid() {
		return fmt.Errorf("%w: неизвестный приоритет %q", apperrors.ErrInconsistentState, r.Priority)
	}
	_, err := StateOf(r)
	return err
}

// CheckReplacement - правила полной замены записи через PUT: id не меняется,
// история только дополняется, новая запись в допустимом состоянии,
// завершённая заявка не переоткрывается, а смена статуса сопровождается
// новыми записями истории, которые проходят по таблице переходов.
func CheckReplacement(stored, incoming entities.Request) error {
	if stored.ID != incoming.ID {
		return fmt.Errorf("%w: id заявки менять нельзя", apperrors.ErrBadRequest)
	}
	if len(incoming.History) < len(stored.History) {
		return apperrors.ErrHistoryRewritten
	}
	for i := range stored.History {
		if !sameEntry(stored.History[i], incoming.History[i]) {
			return fmt.Errorf("%w: запись %d изменена", apperrors.ErrHistoryRewritten, i)
		}
	}
	if err := Validate(incoming); err != nil {
		return err
	}
	if stored.Status == incoming.Status {
		return nil
	}
	if stored.Status.IsFinal() {
		return fmt.Errorf("%w: заявка в статусе %s закрыта", apperrors.ErrInvalidTransition, stored.Status)
	}
	if len(incoming.History) == len(stored.History) {
		return fmt.Errorf("%w: смена статуса без записи в истории", apperrors.ErrInvalidTransition)
	}
	return checkAppended(stored.Status, incoming.Status, incoming.History[len(stored.History):])
}

// checkAppended проигрывает новые записи истории по таблице переходов.
// Записи без роли (старые клиенты) таблицей не проверяются.
func checkAppended(from, to constants.RequestStatus, appended []entities.HistoryEntry) error {
	status := from
	for _, h := range appended {
		if h.Role == "" {
			return nil
		}
		t, ok := transitions[transitionKey{status, constants.Role(h.Role), Action(h.Action)}]
		if !ok {
			return fmt.Errorf("%w: %s не может выполнить %q в статусе %s", apperrors.ErrInvalidTransition, h.Role, h.Action, status)
		}
		status = t.to
	}
	if status != to {
		return fmt.Errorf("%w: история ведёт в статус %s, а не %s", apperrors.ErrInvalidTransition, status, to)
	}
	return nil
}

func sameEntry(a, b entities.HistoryEntry) bool {
	return a.ID == b.ID &&
		a.By == b.By &&
		a.Role == b.Role &&
		a.Action == b.Action &&
		a.Notes == b.Notes &&
		a.Target == b.Target &&
		a.Timestamp.Equal(b.Timestamp)
}
