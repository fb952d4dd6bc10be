package lifecycle

import (
	"fmt"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civiq/internal/entities"
	"civiq/internal/session"
	"civiq/pkg/constants"
	apperrors "civiq/pkg/errors"
)

var fixedNow = time.Date(2024, 11, 26, 10, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	n := 0
	return &Engine{
		Now: func() time.Time { return fixedNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("h-%d", n)
		},
	}
}

var (
	driver = session.Session{Actor: "Ravi Kumar", Role: constants.RoleDriver, Department: constants.AllServices}
	dept   = session.Session{Actor: "Anita", Role: constants.RoleDepartment, Department: "Road Repair"}
)

// requestIn строит согласованную заявку в нужном статусе.
func requestIn(status constants.RequestStatus) entities.Request {
	r := entities.Request{
		ID:            1,
		Service:       "Road Repair",
		Department:    "Road Repair",
		Location:      "MP Nagar, Zone 1, Bhopal",
		Phone:         "+91 98765 43210",
		Priority:      constants.PriorityUrgent,
		Status:        status,
		DateSubmitted: fixedNow.Add(-time.Hour),
		History: []entities.HistoryEntry{
			{ID: "h-0", By: "intake", Action: "submit", Timestamp: fixedNow.Add(-time.Hour)},
		},
	}
	switch status {
	case constants.StatusWaitingDriverUpdate:
		r.DepartmentCompleted = true
		r.DepartmentCompletedAt = null.TimeFrom(fixedNow.Add(-time.Minute))
	case constants.StatusCompleted:
		r.DriverCompleted = true
	}
	return r
}

func TestApply_TableEntries(t *testing.T) {
	tests := []struct {
		from   constants.RequestStatus
		actor  session.Session
		action Action
		to     constants.RequestStatus
	}{
		{constants.StatusSubmitted, driver, ActionAssign, constants.StatusAssigned},
		{constants.StatusAssigned, driver, ActionStart, constants.StatusInProgress},
		{constants.StatusInProgress, driver, ActionComplete, constants.StatusCompleted},
		{constants.StatusWaitingDriverUpdate, driver, ActionConfirm, constants.StatusCompleted},
		{constants.StatusSubmitted, dept, ActionStart, constants.StatusInProgress},
		{constants.StatusAssigned, dept, ActionStart, constants.StatusInProgress},
		{constants.StatusInProgress, dept, ActionStart, constants.StatusInProgress},
		{constants.StatusInProgress, dept, ActionComplete, constants.StatusWaitingDriverUpdate},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s/%s", tt.from, tt.actor.Role, tt.action), func(t *testing.T) {
			in := requestIn(tt.from)
			out, err := testEngine().Apply(in, tt.actor, Command{Action: tt.action, Notes: "ok"})
			require.NoError(t, err)

			assert.Equal(t, tt.to, out.Status)
			require.Len(t, out.History, len(in.History)+1, "каждый переход добавляет ровно одну запись")
			last := out.History[len(out.History)-1]
			assert.Equal(t, tt.actor.Actor, last.By)
			assert.Equal(t, string(tt.action), last.Action)
			assert.Equal(t, "ok", last.Notes)
			assert.Equal(t, fixedNow, last.Timestamp)

			_, err = StateOf(out)
			assert.NoError(t, err, "результат перехода должен быть согласованным")
		})
	}
}

func TestApply_RejectsEverythingOutsideTable(t *testing.T) {
	actions := []Action{ActionAssign, ActionStart, ActionComplete, ActionForward, ActionConfirm, Action("reopen")}
	for _, status := range constants.AllStatuses {
		for _, actor := range []session.Session{driver, dept} {
			for _, action := range actions {
				if _, ok := transitions[transitionKey{status, actor.Role, action}]; ok {
					continue
				}
				in := requestIn(status)
				snapshot := in.Clone()

				out, err := testEngine().Apply(in, actor, Command{Action: action, Target: "Drainage"})

				assert.ErrorIs(t, err, apperrors.ErrInvalidTransition, "%s/%s/%s", status, actor.Role, action)
				assert.Equal(t, entities.Request{}, out)
				assert.Equal(t, snapshot, in, "заявка не должна меняться при отказе")
			}
		}
	}
}

func TestApply_ForwardResetsDepartmentProgress(t *testing.T) {
	for _, status := range constants.AllStatuses {
		if status.IsFinal() {
			continue
		}
		for _, actor := range []session.Session{driver, dept} {
			t.Run(fmt.Sprintf("%s/%s", status, actor.Role), func(t *testing.T) {
				in := requestIn(status)
				out, err := testEngine().Apply(in, actor, Command{Action: ActionForward, Target: "Water Supply"})
				require.NoError(t, err)

				assert.Equal(t, constants.StatusSubmitted, out.Status)
				assert.Equal(t, "Water Supply", out.Department)
				assert.False(t, out.DepartmentCompleted)
				assert.False(t, out.DepartmentCompletedAt.Valid)
				assert.Equal(t, in.DriverCompleted, out.DriverCompleted)
				assert.Equal(t, "Water Supply", out.History[len(out.History)-1].Target)
			})
		}
	}
}

func TestApply_ForwardWithoutTarget(t *testing.T) {
	in := requestIn(constants.StatusInProgress)
	snapshot := in.Clone()

	for _, target := range []string{"   ", constants.AllServices, "all", "ALL"} {
		_, err := testEngine().Apply(in, dept, Command{Action: ActionForward, Target: target})
		assert.ErrorIs(t, err, apperrors.ErrMissingTarget, "target %q", target)
	}
	assert.Equal(t, snapshot, in)
}

func TestApply_ForwardFromCompletedIsInvalid(t *testing.T) {
	_, err := testEngine().Apply(requestIn(constants.StatusCompleted), dept, Command{Action: ActionForward})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestScenario_DriverAssign(t *testing.T) {
	in := requestIn(constants.StatusSubmitted)
	out, err := testEngine().Apply(in, driver, Command{Action: ActionAssign})
	require.NoError(t, err)

	assert.Equal(t, constants.StatusAssigned, out.Status)
	assert.Equal(t, null.StringFrom("Ravi Kumar"), out.AssignedTo)
	assert.Len(t, out.History, len(in.History)+1)
}

func TestScenario_DepartmentComplete(t *testing.T) {
	out, err := testEngine().Apply(requestIn(constants.StatusInProgress), dept, Command{Action: ActionComplete})
	require.NoError(t, err)

	assert.Equal(t, constants.StatusWaitingDriverUpdate, out.Status)
	assert.True(t, out.DepartmentCompleted)
	assert.Equal(t, null.TimeFrom(fixedNow), out.DepartmentCompletedAt)
	assert.True(t, AwaitingDriverConfirmation(out))
}

func TestScenario_DriverConfirm(t *testing.T) {
	in := requestIn(constants.StatusWaitingDriverUpdate)
	require.True(t, AwaitingDriverConfirmation(in))

	out, err := testEngine().Apply(in, driver, Command{Action: ActionConfirm})
	require.NoError(t, err)

	assert.Equal(t, constants.StatusCompleted, out.Status)
	assert.True(t, out.DriverCompleted)
	assert.True(t, out.DepartmentCompleted, "подтверждение не стирает отметку департамента")
}

func TestApply_DoesNotAliasHistory(t *testing.T) {
	in := requestIn(constants.StatusSubmitted)
	in.History = make([]entities.HistoryEntry, 1, 10)
	in.History[0] = entities.HistoryEntry{ID: "h-0", By: "intake", Action: "submit"}

	a, err := testEngine().Apply(in, driver, Command{Action: ActionAssign, Notes: "first"})
	require.NoError(t, err)
	b, err := testEngine().Apply(in, dept, Command{Action: ActionStart, Notes: "second"})
	require.NoError(t, err)

	assert.Equal(t, "first", a.History[1].Notes)
	assert.Equal(t, "second", b.History[1].Notes)
	assert.Len(t, in.History, 1)
}

func TestApply_RejectsInconsistentRecord(t *testing.T) {
	in := requestIn(constants.StatusInProgress)
	in.DepartmentCompleted = true

	_, err := testEngine().Apply(in, dept, Command{Action: ActionComplete})
	assert.ErrorIs(t, err, apperrors.ErrInconsistentState)
}

func TestApply_RequiresValidSession(t *testing.T) {
	_, err := testEngine().Apply(requestIn(constants.StatusSubmitted), session.Session{Role: constants.RoleDriver}, Command{Action: ActionAssign})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAvailableActions(t *testing.T) {
	assert.Equal(t, []Action{ActionAssign, ActionForward}, AvailableActions(requestIn(constants.StatusSubmitted), constants.RoleDriver))
	assert.Equal(t, []Action{ActionStart, ActionForward}, AvailableActions(requestIn(constants.StatusSubmitted), constants.RoleDepartment))
	assert.Equal(t, []Action{ActionConfirm, ActionForward}, AvailableActions(requestIn(constants.StatusWaitingDriverUpdate), constants.RoleDriver))
	assert.Equal(t, []Action{ActionForward}, AvailableActions(requestIn(constants.StatusWaitingDriverUpdate), constants.RoleDepartment))
	assert.Empty(t, AvailableActions(requestIn(constants.StatusCompleted), constants.RoleDriver))
}

func TestStateOf(t *testing.T) {
	for _, status := range constants.AllStatuses {
		st, err := StateOf(requestIn(status))
		require.NoError(t, err, status)
		assert.Equal(t, status, st.Status)
		assert.Equal(t, status == constants.StatusWaitingDriverUpdate, st.AwaitingDriver)
	}

	bad := requestIn(constants.StatusWaitingDriverUpdate)
	bad.DepartmentCompletedAt = null.Time{}
	_, err := StateOf(bad)
	assert.ErrorIs(t, err, apperrors.ErrInconsistentState)

	bad = requestIn(constants.StatusCompleted)
	bad.DriverCompleted = false
	_, err = StateOf(bad)
	assert.ErrorIs(t, err, apperrors.ErrInconsistentState)

	bad = requestIn(constants.StatusSubmitted)
	bad.Status = "closed"
	_, err = StateOf(bad)
	assert.ErrorIs(t, err, apperrors.ErrInconsistentState)
}

func TestFind(t *testing.T) {
	collection := []entities.Request{requestIn(constants.StatusSubmitted)}

	found, err := Find(collection, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.ID)

	_, err = Find(collection, 42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCheckReplacement(t *testing.T) {
	stored := requestIn(constants.StatusSubmitted)
	next, err := testEngine().Apply(stored, driver, Command{Action: ActionAssign})
	require.NoError(t, err)

	assert.NoError(t, CheckReplacement(stored, next))

	t.Run("id change", func(t *testing.T) {
		moved := next.Clone()
		moved.ID = 2
		assert.ErrorIs(t, CheckReplacement(stored, moved), apperrors.ErrBadRequest)
	})

	t.Run("history truncated", func(t *testing.T) {
		cut := next.Clone()
		cut.History = nil
		assert.ErrorIs(t, CheckReplacement(stored, cut), apperrors.ErrHistoryRewritten)
	})

	t.Run("history edited", func(t *testing.T) {
		edited := next.Clone()
		edited.History[0].Notes = "переписано"
		assert.ErrorIs(t, CheckReplacement(stored, edited), apperrors.ErrHistoryRewritten)
	})

	t.Run("status change without history", func(t *testing.T) {
		silent := stored.Clone()
		silent.Status = constants.StatusAssigned
		assert.ErrorIs(t, CheckReplacement(stored, silent), apperrors.ErrInvalidTransition)
	})

	t.Run("reopen completed", func(t *testing.T) {
		done := requestIn(constants.StatusCompleted)
		reopened := done.Clone()
		reopened.Status = constants.StatusSubmitted
		reopened.DriverCompleted = false
		reopened.History = append(reopened.History, entities.HistoryEntry{By: "Ravi Kumar", Role: "driver", Action: "forward"})
		assert.ErrorIs(t, CheckReplacement(done, reopened), apperrors.ErrInvalidTransition)
	})

	t.Run("status jump under wrong action", func(t *testing.T) {
		jumped := stored.Clone()
		jumped.Status = constants.StatusCompleted
		jumped.DriverCompleted = true
		jumped.History = append(jumped.History, entities.HistoryEntry{By: "Ravi Kumar", Role: "driver", Action: "assign"})
		assert.ErrorIs(t, CheckReplacement(stored, jumped), apperrors.ErrInvalidTransition)
	})

	t.Run("two legal steps", func(t *testing.T) {
		started := next.Clone()
		started.Status = constants.StatusInProgress
		started.History = append(started.History, entities.HistoryEntry{By: "Ravi Kumar", Role: "driver", Action: "start"})
		assert.NoError(t, CheckReplacement(stored, started))
	})

	t.Run("entry without role", func(t *testing.T) {
		legacy := stored.Clone()
		legacy.Status = constants.StatusAssigned
		legacy.History = append(legacy.History, entities.HistoryEntry{By: "Ravi Kumar", Action: "Assigned"})
		assert.NoError(t, CheckReplacement(stored, legacy))
	})

	t.Run("illegal flags", func(t *testing.T) {
		broken := next.Clone()
		broken.DriverCompleted = true
		assert.ErrorIs(t, CheckReplacement(stored, broken), apperrors.ErrInconsistentState)
	})
}
