package console

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"civiq/internal/entities"
	"civiq/internal/lifecycle"
	"civiq/internal/session"
	"civiq/internal/view"
	"civiq/pkg/constants"
	apperrors "civiq/pkg/errors"
)

// fakeSource - источник в памяти с управляемыми сбоями.
type fakeSource struct {
	name      string
	records   []entities.Request
	fetchErr  error
	updateErr error
	updates   int
	fetches   int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchAll(ctx context.Context) ([]entities.Request, error) {
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]entities.Request, len(f.records))
	for i, r := range f.records {
		out[i] = r.Clone()
	}
	return out, nil
}

func (f *fakeSource) Update(ctx context.Context, id int64, req entities.Request) (entities.Request, error) {
	f.updates++
	if f.updateErr != nil {
		return entities.Request{}, f.updateErr
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i] = req.Clone()
			return req, nil
		}
	}
	return entities.Request{}, apperrors.ErrNotFound
}

func (f *fakeSource) Stats(ctx context.Context) (view.DashboardStats, error) {
	if f.fetchErr != nil {
		return view.DashboardStats{}, f.fetchErr
	}
	return view.DashboardStats{Total: len(f.records)}, nil
}

func submitted(id int64, dept string) entities.Request {
	return entities.Request{
		ID: id, Service: dept, Department: dept, Location: "Zone 1",
		Priority: constants.PriorityHigh, Status: constants.StatusSubmitted,
	}
}

func newTestQueue(t *testing.T, primary, demo *fakeSource, role constants.Role, dept string) *Queue {
	t.Helper()
	s, err := session.New("Ravi", role, dept)
	require.NoError(t, err)
	engine := &lifecycle.Engine{
		Now:   func() time.Time { return time.Date(2024, 11, 26, 10, 0, 0, 0, time.UTC) },
		NewID: func() string { return "h-1" },
	}
	return NewQueue(primary, demo, engine, s, zap.NewNop())
}

func TestLoad_Live(t *testing.T) {
	primary := &fakeSource{name: "backend", records: []entities.Request{submitted(1, "Road Repair")}}
	demo := &fakeSource{name: "demo", records: []entities.Request{submitted(101, "Road Repair")}}
	q := newTestQueue(t, primary, demo, constants.RoleDriver, "")

	warning, err := q.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, warning)
	assert.Equal(t, ModeLive, q.Mode())
	assert.Len(t, q.Records(), 1)
	assert.Equal(t, 0, demo.fetches)
}

func TestLoad_FallsBackToDemo(t *testing.T) {
	primary := &fakeSource{name: "backend", fetchErr: fmt.Errorf("%w: dial tcp", apperrors.ErrAdapterUnavailable)}
	demo := &fakeSource{name: "demo", records: []entities.Request{submitted(101, "Road Repair"), submitted(102, "Water Supply")}}
	q := newTestQueue(t, primary, demo, constants.RoleDriver, "")

	warning, err := q.Load(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, warning)
	assert.Equal(t, ModeDemo, q.Mode())
	assert.Len(t, q.Records(), 2)
}

func TestLoad_BothFail(t *testing.T) {
	primary := &fakeSource{name: "backend", fetchErr: apperrors.ErrAdapterUnavailable}
	demo := &fakeSource{name: "demo", fetchErr: fmt.Errorf("broken seed")}
	q := newTestQueue(t, primary, demo, constants.RoleDriver, "")

	_, err := q.Load(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrAdapterUnavailable)
}

func TestLoad_RejectedSessionIsNotMaskedByDemo(t *testing.T) {
	cases := []error{
		fmt.Errorf("%w: 401 token expired", apperrors.ErrUnauthorized),
		fmt.Errorf("%w: 400 bad filter", apperrors.ErrBadRequest),
	}
	for _, fetchErr := range cases {
		primary := &fakeSource{name: "backend", fetchErr: fetchErr}
		demo := &fakeSource{name: "demo", records: []entities.Request{submitted(101, "Road Repair")}}
		q := newTestQueue(t, primary, demo, constants.RoleDriver, "")

		_, err := q.Load(context.Background())
		assert.ErrorIs(t, err, fetchErr)
		assert.Equal(t, 0, demo.fetches)
		assert.Empty(t, q.Records())
	}

	primary := &fakeSource{name: "backend", fetchErr: apperrors.ErrUnauthorized}
	q := newTestQueue(t, primary, &fakeSource{name: "demo"}, constants.RoleDriver, "")
	_, err := q.Load(context.Background())
	assert.ErrorContains(t, err, "civiq login")
}

func TestTransition_SavesAndRefetches(t *testing.T) {
	primary := &fakeSource{name: "backend", records: []entities.Request{submitted(1, "Road Repair")}}
	q := newTestQueue(t, primary, &fakeSource{name: "demo"}, constants.RoleDriver, "")
	_, err := q.Load(context.Background())
	require.NoError(t, err)

	out, err := q.Transition(context.Background(), 1, lifecycle.Command{Action: lifecycle.ActionAssign, Notes: "on my way"})
	require.NoError(t, err)
	assert.True(t, out.Saved)
	assert.Empty(t, out.Warning)
	assert.Equal(t, constants.StatusAssigned, out.Request.Status)
	assert.Equal(t, 1, primary.updates)
	assert.Equal(t, 2, primary.fetches)
	assert.False(t, q.IsUnsaved(1))

	stored, err := q.Find(1)
	require.NoError(t, err)
	require.Len(t, stored.History, 1)
	assert.Equal(t, "Ravi", stored.History[0].By)
}

func TestTransition_LifecycleErrorHasNoSideEffects(t *testing.T) {
	primary := &fakeSource{name: "backend", records: []entities.Request{submitted(1, "Road Repair")}}
	q := newTestQueue(t, primary, &fakeSource{name: "demo"}, constants.RoleDriver, "")
	_, err := q.Load(context.Background())
	require.NoError(t, err)

	_, err = q.Transition(context.Background(), 1, lifecycle.Command{Action: lifecycle.ActionConfirm})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = q.Transition(context.Background(), 1, lifecycle.Command{Action: lifecycle.ActionForward})
	assert.ErrorIs(t, err, apperrors.ErrMissingTarget)

	_, err = q.Transition(context.Background(), 99, lifecycle.Command{Action: lifecycle.ActionAssign})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.Equal(t, 0, primary.updates)
	r, _ := q.Find(1)
	assert.Equal(t, constants.StatusSubmitted, r.Status)
	assert.Empty(t, r.History)
}

func TestTransition_WriteFailureKeepsLocalMutation(t *testing.T) {
	primary := &fakeSource{name: "backend", records: []entities.Request{submitted(1, "Road Repair")}}
	q := newTestQueue(t, primary, &fakeSource{name: "demo"}, constants.RoleDepartment, "Road Repair")
	_, err := q.Load(context.Background())
	require.NoError(t, err)

	primary.updateErr = fmt.Errorf("%w: connection reset", apperrors.ErrAdapterUnavailable)
	out, err := q.Transition(context.Background(), 1, lifecycle.Command{Action: lifecycle.ActionStart})
	require.NoError(t, err)
	assert.False(t, out.Saved)
	assert.NotEmpty(t, out.Warning)
	assert.True(t, q.IsUnsaved(1))

	r, _ := q.Find(1)
	assert.Equal(t, constants.StatusInProgress, r.Status)
	assert.Equal(t, constants.StatusSubmitted, primary.records[0].Status)
}

func TestTransition_ServerRejectionSurfaces(t *testing.T) {
	primary := &fakeSource{name: "backend", records: []entities.Request{submitted(1, "Road Repair")}}
	q := newTestQueue(t, primary, &fakeSource{name: "demo"}, constants.RoleDriver, "")
	_, err := q.Load(context.Background())
	require.NoError(t, err)

	primary.updateErr = fmt.Errorf("%w: stale", apperrors.ErrInvalidTransition)
	_, err = q.Transition(context.Background(), 1, lifecycle.Command{Action: lifecycle.ActionAssign})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.False(t, q.IsUnsaved(1))

	r, _ := q.Find(1)
	assert.Equal(t, constants.StatusSubmitted, r.Status)
}

func TestTransition_DemoModeNeverWritesToPrimary(t *testing.T) {
	primary := &fakeSource{name: "backend", fetchErr: apperrors.ErrAdapterUnavailable}
	demo := &fakeSource{name: "demo", records: []entities.Request{submitted(101, "Road Repair")}}
	q := newTestQueue(t, primary, demo, constants.RoleDriver, "")
	_, err := q.Load(context.Background())
	require.NoError(t, err)

	out, err := q.Transition(context.Background(), 101, lifecycle.Command{Action: lifecycle.ActionAssign})
	require.NoError(t, err)
	assert.False(t, out.Saved)
	assert.Equal(t, 0, primary.updates)
	assert.True(t, q.IsUnsaved(101))

	// Перезагрузка возвращает исходный демо-набор.
	_, err = q.Load(context.Background())
	require.NoError(t, err)
	r, _ := q.Find(101)
	assert.Equal(t, constants.StatusSubmitted, r.Status)
}

func TestStats(t *testing.T) {
	primary := &fakeSource{name: "backend", records: []entities.Request{submitted(1, "Road Repair"), submitted(2, "Drainage")}}
	q := newTestQueue(t, primary, &fakeSource{name: "demo"}, constants.RoleDriver, "")
	_, err := q.Load(context.Background())
	require.NoError(t, err)

	stats, warning := q.Stats(context.Background())
	assert.Empty(t, warning)
	assert.Equal(t, 2, stats.Total)

	primary.fetchErr = apperrors.ErrAdapterUnavailable
	stats, warning = q.Stats(context.Background())
	assert.NotEmpty(t, warning)
	assert.Equal(t, 2, stats.Pending)
}

func TestLoad_OfflineWhenPrimaryIsDemo(t *testing.T) {
	demo := &fakeSource{name: "demo", records: []entities.Request{submitted(101, "Road Repair")}}
	q := newTestQueue(t, demo, demo, constants.RoleDriver, "")

	warning, err := q.Load(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, warning)
	assert.Equal(t, ModeDemo, q.Mode())

	out, err := q.Transition(context.Background(), 101, lifecycle.Command{Action: lifecycle.ActionAssign})
	require.NoError(t, err)
	assert.False(t, out.Saved)
	assert.Equal(t, 0, demo.updates)
}
