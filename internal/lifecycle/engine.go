// Package lifecycle - правила жизненного цикла заявки и протокол совместной
// работы водителя и департамента над одной записью.
package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"civiq/internal/entities"
	"civiq/internal/session"
	"civiq/pkg/constants"
	apperrors "civiq/pkg/errors"
)

// Engine применяет переходы. Часы и генератор id подменяются в тестах,
// в остальном Apply - чистая функция от своих аргументов.
type Engine struct {
	Now   func() time.Time
	NewID func() string
}

func NewEngine() *Engine {
	return &Engine{
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

// Apply проверяет и применяет действие участника к заявке.
// Переход выполняется целиком или не выполняется вовсе: при ошибке возвращается
// пустая заявка, а входная не изменяется никогда.
func (e *Engine) Apply(req entities.Request, s session.Session, cmd Command) (entities.Request, error) {
	if err := s.Validate(); err != nil {
		return entities.Request{}, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}
	if _, err := StateOf(req); err != nil {
		return entities.Request{}, err
	}

	t, ok := transitions[transitionKey{req.Status, s.Role, cmd.Action}]
	if !ok {
		return entities.Request{}, fmt.Errorf("%w: %s не может выполнить %q в статусе %s",
			apperrors.ErrInvalidTransition, s.Role, cmd.Action, req.Status)
	}

	cmd.Target = strings.TrimSpace(cmd.Target)
	if cmd.Action == ActionForward {
		if cmd.Target == "" {
			return entities.Request{}, apperrors.ErrMissingTarget
		}
		// "Все службы" - область просмотра, а не департамент: такую заявку не увидит ни один департамент.
		if session.IsWildcard(cmd.Target) {
			return entities.Request{}, fmt.Errorf("%w: %q не является департаментом", apperrors.ErrMissingTarget, cmd.Target)
		}
	}

	now := e.Now().UTC().Truncate(time.Microsecond)
	next := req.Clone()
	next.Status = t.to
	if t.effect != nil {
		t.effect(&next, s, cmd, now)
	}

	entry := entities.HistoryEntry{
		ID:        e.NewID(),
		By:        s.Actor,
		Role:      string(s.Role),
		Action:    string(cmd.Action),
		Notes:     cmd.Notes,
		Timestamp: now,
	}
	if cmd.Action == ActionForward {
		entry.Target = cmd.Target
	}
	next.History = append(next.History, entry)

	return next, nil
}

// AvailableActions - действия, которые роль может выполнить над заявкой прямо сейчас.
func AvailableActions(req entities.Request, role constants.Role) []Action {
	if _, err := StateOf(req); err != nil {
		return nil
	}
	var out []Action
	for _, a := range actionOrder {
		if _, ok := transitions[transitionKey{req.Status, role, a}]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Find ищет заявку в загруженной коллекции. ErrNotFound означает, что
// представление устарело и коллекцию нужно перечитать.
func Find(collection []entities.Request, id int64) (entities.Request, error) {
	for _, r := range collection {
		if r.ID == id {
			return r, nil
		}
	}
	return entities.Request{}, fmt.Errorf("%w: заявка #%d отсутствует в текущем списке", apperrors.ErrNotFound, id)
}
