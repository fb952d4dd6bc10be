package services

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"civiq/internal/dto"
	"civiq/internal/entities"
	"civiq/internal/events"
	"civiq/internal/lifecycle"
	"civiq/internal/session"
	"civiq/internal/view"
	"civiq/pkg/constants"
	"civiq/pkg/eventbus"
	apperrors "civiq/pkg/errors"
	"civiq/pkg/utils"
)

var fixedNow = time.Date(2024, 11, 27, 10, 0, 0, 0, time.UTC)

func seedRequests() []entities.Request {
	submitted := fixedNow.Add(-48 * time.Hour)
	return []entities.Request{
		{ID: 1, Service: "Road Repair", Department: "Road Repair", Location: "MP Nagar", Phone: "+91 98765 43210",
			Description: "Pothole", Priority: constants.PriorityUrgent, Status: constants.StatusSubmitted,
			DateSubmitted: submitted, History: []entities.HistoryEntry{}},
		{ID: 2, Service: "Water Supply", Department: "Water Supply", Location: "Arera Colony", Phone: "+91 98765 43211",
			Description: "No water", Priority: constants.PriorityHigh, Status: constants.StatusCompleted, DriverCompleted: true,
			DateSubmitted: submitted, History: []entities.HistoryEntry{{ID: "h1", By: "Ravi", Role: "driver", Action: "complete", Timestamp: submitted}}},
	}
}

type recorder struct {
	mu     sync.Mutex
	events []events.RequestChanged
}

func (r *recorder) listen(_ context.Context, e eventbus.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e.(events.RequestChanged))
	return nil
}

func newTestRequestService(t *testing.T, seed ...entities.Request) (*RequestService, *memRequestRepo, *eventbus.Bus, *recorder) {
	t.Helper()
	repo := newMemRequestRepo(seed...)
	bus := eventbus.New(zap.NewNop())
	rec := &recorder{}
	bus.Subscribe(events.RequestCreatedEvent, rec.listen)
	bus.Subscribe(events.RequestUpdatedEvent, rec.listen)

	engine := lifecycle.NewEngine()
	engine.Now = func() time.Time { return fixedNow }
	ids := 0
	engine.NewID = func() string { ids++; return "e" + string(rune('0'+ids)) }

	svc := NewRequestService(repo, engine, bus, zap.NewNop()).(*RequestService)
	svc.now = func() time.Time { return fixedNow }
	svc.newID = func() string { return "generated" }
	return svc, repo, bus, rec
}

func withSession(t *testing.T, actor string, role constants.Role, dept string) context.Context {
	t.Helper()
	s, err := session.New(actor, role, dept)
	require.NoError(t, err)
	return utils.WithSession(context.Background(), s)
}

func TestRequestService_CreateForcesSubmitted(t *testing.T) {
	svc, _, bus, rec := newTestRequestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateRequestDTO{
		Service: "Street Lighting", Location: " Park Ave ", Phone: "+91 98766 00022",
		Description: "Lamp out", Priority: "low",
	})
	require.NoError(t, err)
	bus.Wait()

	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, constants.StatusSubmitted, created.Status)
	assert.Equal(t, "Street Lighting", created.Department)
	assert.Equal(t, "Park Ave", created.Location)
	assert.Equal(t, fixedNow, created.DateSubmitted)
	assert.Empty(t, created.History)
	require.Len(t, rec.events, 1)
	assert.Equal(t, events.RequestCreatedEvent, rec.events[0].Kind)
}

func TestRequestService_CreateRejectsWildcardDepartment(t *testing.T) {
	svc, repo, _, _ := newTestRequestService(t)
	ctx := context.Background()

	for _, payload := range []dto.CreateRequestDTO{
		{Service: "Road Repair", Department: constants.AllServices, Location: "Zone 1", Phone: "+91 98765 43210", Description: "Pothole", Priority: "high"},
		{Service: "all", Location: "Zone 1", Phone: "+91 98765 43210", Description: "Pothole", Priority: "high"},
	} {
		_, err := svc.Create(ctx, payload)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, utils.StatusFor(err))
	}
	assert.Empty(t, repo.rows)
}

func TestRequestService_TransitionAppliesAndPublishes(t *testing.T) {
	svc, repo, bus, rec := newTestRequestService(t, seedRequests()...)
	ctx := withSession(t, "Ravi", constants.RoleDriver, "")

	updated, err := svc.Transition(ctx, 1, dto.TransitionDTO{Action: "Assign", Notes: "on my way"})
	require.NoError(t, err)
	bus.Wait()

	assert.Equal(t, constants.StatusAssigned, updated.Status)
	assert.Equal(t, "Ravi", updated.AssignedTo.String)
	require.Len(t, updated.History, 1)
	assert.Equal(t, "assign", updated.History[0].Action)
	assert.Equal(t, "on my way", updated.History[0].Notes)

	stored, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)

	require.Len(t, rec.events, 1)
	assert.Equal(t, constants.StatusSubmitted, rec.events[0].Previous.Status)
	assert.Equal(t, "Ravi", rec.events[0].Actor)
}

func TestRequestService_TransitionRejected(t *testing.T) {
	svc, repo, bus, rec := newTestRequestService(t, seedRequests()...)

	_, err := svc.Transition(withSession(t, "Ravi", constants.RoleDriver, ""), 2, dto.TransitionDTO{Action: "start"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = svc.Transition(withSession(t, "Asha", constants.RoleDepartment, "Road Repair"), 1, dto.TransitionDTO{Action: "forward"})
	assert.ErrorIs(t, err, apperrors.ErrMissingTarget)

	_, err = svc.Transition(context.Background(), 1, dto.TransitionDTO{Action: "assign"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Transition(withSession(t, "Ravi", constants.RoleDriver, ""), 99, dto.TransitionDTO{Action: "assign"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	bus.Wait()
	assert.Empty(t, rec.events)
	stored, _ := repo.FindByID(context.Background(), 1)
	assert.Equal(t, constants.StatusSubmitted, stored.Status)
}

func TestRequestService_Replace(t *testing.T) {
	svc, _, _, _ := newTestRequestService(t, seedRequests()...)
	ctx := context.Background()

	stored, err := svc.Get(ctx, 1)
	require.NoError(t, err)

	incoming := stored.Clone()
	incoming.Status = constants.StatusAssigned
	incoming.DateSubmitted = fixedNow.Add(time.Hour)
	incoming.History = append(incoming.History, entities.HistoryEntry{By: "Ravi", Role: "driver", Action: "assign"})

	updated, err := svc.Replace(ctx, 1, incoming)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusAssigned, updated.Status)
	assert.Equal(t, stored.DateSubmitted, updated.DateSubmitted)
	require.Len(t, updated.History, 1)
	assert.Equal(t, "generated", updated.History[0].ID)
	assert.Equal(t, fixedNow, updated.History[0].Timestamp)
}

func TestRequestService_ReplaceRejectsBadRecords(t *testing.T) {
	svc, _, _, _ := newTestRequestService(t, seedRequests()...)
	ctx := context.Background()
	done, err := svc.Get(ctx, 2)
	require.NoError(t, err)

	rewritten := done.Clone()
	rewritten.History = nil
	_, err = svc.Replace(ctx, 2, rewritten)
	assert.ErrorIs(t, err, apperrors.ErrHistoryRewritten)

	_, err = svc.Replace(ctx, 1, done)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	broken := done.Clone()
	broken.DriverCompleted = false
	_, err = svc.Replace(ctx, 2, broken)
	assert.ErrorIs(t, err, apperrors.ErrInconsistentState)
}

func TestRequestService_ListPushesStatusesDown(t *testing.T) {
	svc, repo, _, _ := newTestRequestService(t, seedRequests()...)
	ctx := context.Background()

	list, err := svc.List(ctx, view.Config{Status: view.All})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NotContains(t, repo.last.Statuses, constants.StatusCompleted)

	list, err = svc.List(ctx, view.Config{Status: view.Any})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Empty(t, repo.last.Statuses)

	list, err = svc.List(ctx, view.Config{Status: view.Any, Search: "arera"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(2), list[0].ID)
}
