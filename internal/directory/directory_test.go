package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdesk/internal/model"
)

type fakeBackend struct {
	mu        sync.Mutex
	events    []model.Event
	cancelErr error
	blockOn   chan struct{}
	cancelled []int64
	restored  []int64
	deleted   []int64
}

func (f *fakeBackend) FetchEvents(context.Context) ([]model.Event, error) {
	return append([]model.Event(nil), f.events...), nil
}

func (f *fakeBackend) CancelEvent(_ context.Context, id int64, _ string, _ bool, _ string) error {
	if f.blockOn != nil {
		<-f.blockOn
	}
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.mu.Lock()
	f.cancelled = append(f.cancelled, id)
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) RestoreEvent(_ context.Context, id int64) error {
	f.mu.Lock()
	f.restored = append(f.restored, id)
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) DeleteEvent(_ context.Context, id int64) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	f.mu.Unlock()
	return nil
}

func testEvents(n int) []model.Event {
	events := make([]model.Event, 0, n)
	for i := 1; i <= n; i++ {
		events = append(events, model.Event{
			ID:         int64(i),
			Nome:       fmt.Sprintf("Evento %d", i),
			Tipo:       model.TypeWorkshop,
			Local:      "Auditório Central",
			DataInicio: "10/03/2025 09:00",
			DataFinal:  "10/03/2025 18:00",
		})
	}
	return events
}

func newTestStore(t *testing.T, backend *fakeBackend, isAdmin bool) *Store {
	t.Helper()
	log := zerolog.Nop()
	s := NewStore(backend, FixedCounter{Participants: 42, Capacity: 100}, isAdmin, &log)
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestApplyQueryFilterOrderAndIdempotence(t *testing.T) {
	backend := &fakeBackend{events: []model.Event{
		{ID: 1, Nome: "Go Conf", Tipo: model.TypeCongresso, Local: "Recife", DataInicio: "10/03/2025 09:00"},
		{ID: 2, Nome: "Intro Workshop", Tipo: model.TypeWorkshop, Local: "Recife", DataInicio: "11/03/2025 09:00"},
		{ID: 3, Nome: "Cancelled Conf", Tipo: model.TypeCongresso, Local: "Recife", DataInicio: "12/03/2025 09:00", Cancelado: true},
		{ID: 4, Nome: "Outra Reunião", Tipo: model.TypeReuniao, Local: "São Paulo", Descricao: "pauta de go", DataInicio: "13/03/2025 09:00"},
	}}
	s := newTestStore(t, backend, false)

	q := Query{Search: "  GO  ", Type: model.TypeAll}
	first := s.ApplyQuery(q)
	second := s.ApplyQuery(q)
	assert.Equal(t, first, second, "same query twice must yield the same sequence")

	// search matches name and description, case-insensitive, trimmed
	ids := func(events []model.Event) []int64 {
		out := make([]int64, 0, len(events))
		for _, e := range events {
			out = append(out, e.ID)
		}
		return out
	}
	assert.Equal(t, []int64{1, 4}, ids(first))

	// cancelled events only appear when asked for
	withCancelled := s.ApplyQuery(Query{Type: model.TypeCongresso, IncludeCancelled: true})
	assert.Equal(t, []int64{1, 3}, ids(withCancelled))
	withoutCancelled := s.ApplyQuery(Query{Type: model.TypeCongresso})
	assert.Equal(t, []int64{1}, ids(withoutCancelled))

	// empty search matches everything active
	all := s.ApplyQuery(Query{Search: "   ", Type: model.TypeAll})
	assert.Len(t, all, 3)
}

func TestPaginationSixPerPage(t *testing.T) {
	backend := &fakeBackend{events: testEvents(14)}
	s := newTestStore(t, backend, false)
	s.ApplyQuery(Query{Type: model.TypeAll})

	sizes := []int{}
	view := s.Page()
	require.Equal(t, 3, view.TotalPages)
	require.Equal(t, 14, view.Total)
	for page := 1; page <= view.TotalPages; page++ {
		v := s.SetPage(page)
		sizes = append(sizes, len(v.Events))
	}
	assert.Equal(t, []int{6, 6, 2}, sizes)

	// out-of-range pages clamp
	assert.Equal(t, 3, s.SetPage(99).Page)
	assert.Equal(t, 1, s.SetPage(-1).Page)

	// a query change resets to page 1
	s.SetPage(3)
	s.ApplyQuery(Query{Type: model.TypeAll})
	assert.Equal(t, 1, s.Page().Page)

	// relative moves clamp at both ends
	assert.Equal(t, 2, s.NextPage().Page)
	assert.Equal(t, 3, s.NextPage().Page)
	assert.Equal(t, 3, s.NextPage().Page)
	s.SetPage(1)
	assert.Equal(t, 1, s.PrevPage().Page)
}

func TestGroupByDateOrdersAscending(t *testing.T) {
	backend := &fakeBackend{events: []model.Event{
		{ID: 1, Nome: "A", Tipo: model.TypeOutro, DataInicio: "12/03/2025 10:00"},
		{ID: 2, Nome: "B", Tipo: model.TypeOutro, DataInicio: "10/03/2025 09:00"},
		{ID: 3, Nome: "C", Tipo: model.TypeOutro, DataInicio: "10/03/2025 15:00"},
	}}
	s := newTestStore(t, backend, false)
	s.ApplyQuery(Query{Type: model.TypeAll})

	groups := s.GroupByDate()
	require.Len(t, groups, 2)
	assert.Equal(t, "10/03/2025", groups[0].Date)
	assert.Len(t, groups[0].Events, 2)
	assert.Equal(t, "12/03/2025", groups[1].Date)
	assert.Len(t, groups[1].Events, 1)
}

func TestStatsIdentity(t *testing.T) {
	backend := &fakeBackend{events: []model.Event{
		{ID: 1, Tipo: model.TypeOutro, DataInicio: "10/03/2030 09:00"},
		{ID: 2, Tipo: model.TypeOutro, DataInicio: "10/03/2020 09:00"},
		{ID: 3, Tipo: model.TypeOutro, DataInicio: "10/03/2030 09:00", Cancelado: true},
	}}
	s := newTestStore(t, backend, false)
	s.now = func() time.Time {
		return time.Date(2025, time.March, 8, 12, 0, 0, 0, time.Local)
	}

	st := s.Stats()
	assert.Equal(t, st.Total, st.Active+st.Cancelled)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 2, st.Active)
	assert.Equal(t, 1, st.Cancelled)
	// only the future, non-cancelled event counts as upcoming
	assert.Equal(t, 1, st.Upcoming)
}

func TestCancelRequiresReason(t *testing.T) {
	backend := &fakeBackend{events: testEvents(1)}
	s := newTestStore(t, backend, true)

	err := s.Cancel(context.Background(), 1, "   ", false, "")
	assert.ErrorIs(t, err, ErrEmptyReason)

	e, err := s.EventByID(1)
	require.NoError(t, err)
	assert.False(t, e.Cancelado)
	assert.Empty(t, backend.cancelled)
}

func TestCancelSuccessIsOptimisticAfterConfirmation(t *testing.T) {
	backend := &fakeBackend{events: testEvents(3)}
	s := newTestStore(t, backend, true)
	s.ApplyQuery(Query{Type: model.TypeAll})

	err := s.Cancel(context.Background(), 2, "venue flooded", true, "Lamentamos informar que o evento foi cancelado.")
	require.NoError(t, err)

	e, err := s.EventByID(2)
	require.NoError(t, err)
	assert.True(t, e.Cancelado)
	assert.Equal(t, "venue flooded", e.MotivoCancelamento)
	assert.NotEmpty(t, e.DataCancelamento)

	for _, filtered := range s.Page().Events {
		assert.NotEqual(t, int64(2), filtered.ID, "cancelled event must leave the filtered view at once")
	}
	assert.Equal(t, []int64{2}, backend.cancelled)
}

func TestCancelBackendFailureLeavesStateUntouched(t *testing.T) {
	backend := &fakeBackend{events: testEvents(1), cancelErr: errors.New("boom")}
	s := newTestStore(t, backend, true)

	err := s.Cancel(context.Background(), 1, "reason", false, "")
	require.Error(t, err)

	e, _ := s.EventByID(1)
	assert.False(t, e.Cancelado, "no partial optimistic update on failure")
}

func TestAdminOperationsNeedCapability(t *testing.T) {
	backend := &fakeBackend{events: testEvents(1)}
	s := newTestStore(t, backend, false)

	assert.ErrorIs(t, s.Cancel(context.Background(), 1, "reason", false, ""), ErrNotAdmin)
	assert.ErrorIs(t, s.Restore(context.Background(), 1, true), ErrNotAdmin)
	assert.ErrorIs(t, s.Purge(context.Background(), 1, true), ErrNotAdmin)
}

func TestRestoreAndPurgeNeedConfirmation(t *testing.T) {
	backend := &fakeBackend{events: testEvents(2)}
	s := newTestStore(t, backend, true)

	assert.ErrorIs(t, s.Restore(context.Background(), 1, false), ErrConfirmRequired)
	assert.ErrorIs(t, s.Purge(context.Background(), 1, false), ErrConfirmRequired)

	require.NoError(t, s.Cancel(context.Background(), 1, "reason", false, ""))
	require.NoError(t, s.Restore(context.Background(), 1, true))
	e, _ := s.EventByID(1)
	assert.False(t, e.Cancelado)
	assert.Empty(t, e.MotivoCancelamento)
	assert.Empty(t, e.DataCancelamento)

	require.NoError(t, s.Purge(context.Background(), 2, true))
	_, err := s.EventByID(2)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.Equal(t, 1, s.Stats().Total)
}

func TestOverlappingCancelIsRejected(t *testing.T) {
	backend := &fakeBackend{events: testEvents(1), blockOn: make(chan struct{})}
	s := newTestStore(t, backend, true)

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- s.Cancel(context.Background(), 1, "first", false, "")
	}()

	// wait until the first call holds the busy flag
	require.Eventually(t, func() bool {
		return errors.Is(s.Cancel(context.Background(), 1, "second", false, ""), ErrBusy)
	}, time.Second, 5*time.Millisecond)

	close(backend.blockOn)
	require.NoError(t, <-firstDone)
	assert.Equal(t, []int64{1}, backend.cancelled)
}

func TestActiveLeavesViewStateAlone(t *testing.T) {
	backend := &fakeBackend{events: testEvents(14)}
	backend.events[0].Cancelado = true
	s := newTestStore(t, backend, false)

	s.ApplyQuery(Query{Search: "Evento", Type: model.TypeAll})
	before := s.SetPage(2)
	require.Equal(t, 2, before.Page)

	active := s.Active()
	assert.Len(t, active, 13)
	for _, e := range active {
		assert.False(t, e.Cancelado)
	}

	after := s.Page()
	assert.Equal(t, before.Page, after.Page)
	assert.Equal(t, before.Total, after.Total)
	assert.Equal(t, before.Events, after.Events)
}

func TestTypeOptions(t *testing.T) {
	backend := &fakeBackend{events: []model.Event{
		{ID: 1, Tipo: model.TypeWorkshop, DataInicio: "10/03/2025 09:00"},
		{ID: 2, Tipo: model.TypeCongresso, DataInicio: "10/03/2025 09:00"},
		{ID: 3, Tipo: model.TypeWorkshop, DataInicio: "10/03/2025 09:00"},
	}}
	s := newTestStore(t, backend, false)

	assert.Equal(t, []string{model.TypeAll, model.TypeWorkshop, model.TypeCongresso}, s.TypeOptions())
}

func TestLoadAttachesParticipantFigures(t *testing.T) {
	backend := &fakeBackend{events: testEvents(2)}
	s := newTestStore(t, backend, false)

	e, err := s.EventByID(1)
	require.NoError(t, err)
	assert.Equal(t, 42, e.Participantes)
	assert.Equal(t, 100, e.Capacidade)
}
