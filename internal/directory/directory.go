// Package directory holds the client-side event collection and the
// filtering, grouping, pagination and admin operations every view is
// served from. The backend stays authoritative; the store owns only the
// in-memory copy.
package directory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"eventdesk/internal/datetoken"
	"eventdesk/internal/model"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrNotAdmin        = errors.New("operation requires admin capability")
	ErrEmptyReason     = errors.New("cancellation reason is required")
	ErrConfirmRequired = errors.New("operation requires explicit confirmation")
	ErrBusy            = errors.New("another operation is in flight for this event")
)

// PageSize is the fixed number of events per page.
const PageSize = 6

// Backend is the remote collaborator the store dispatches mutations to.
type Backend interface {
	FetchEvents(ctx context.Context) ([]model.Event, error)
	CancelEvent(ctx context.Context, id int64, motivo string, notificar bool, mensagem string) error
	RestoreEvent(ctx context.Context, id int64) error
	DeleteEvent(ctx context.Context, id int64) error
}

// ParticipantCounter supplies the participant/capacity figures attached
// to events at load time. The production feed does not carry them yet,
// so the default implementation fakes them; views only display them.
type ParticipantCounter interface {
	Count(e model.Event) (participants, capacity int)
}

// Query is the filter state of a view. Zero value means "everything
// active": no search text, all types, cancelled hidden.
type Query struct {
	Search           string
	Type             string
	IncludeCancelled bool
}

// PageView is one page of the filtered sequence plus paging metadata.
type PageView struct {
	Events     []model.Event
	Page       int
	TotalPages int
	Total      int
}

// Stats are the derived counters shown on the admin dashboard.
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"ativos"`
	Cancelled int `json:"cancelados"`
	Upcoming  int `json:"proximos"`
}

// DateGroup is one calendar day of events, keyed by the date part of the
// start token.
type DateGroup struct {
	Date   string        `json:"data"`
	Events []model.Event `json:"eventos"`
}

// Store is safe for use from concurrent handlers. Admin mutations are
// serialized per event via a busy flag; a second cancel/restore/purge on
// the same id while one is in flight fails with ErrBusy.
type Store struct {
	backend Backend
	counter ParticipantCounter
	log     *zerolog.Logger
	isAdmin bool
	now     func() time.Time

	mu       sync.Mutex
	events   []model.Event
	filtered []model.Event
	query    Query
	page     int
	busy     map[int64]bool
}

// NewStore builds a directory store. The admin capability is injected
// here and never mutated afterwards; it comes from the session
// collaborator, not from the store's concern.
func NewStore(backend Backend, counter ParticipantCounter, isAdmin bool, log *zerolog.Logger) *Store {
	return &Store{
		backend: backend,
		counter: counter,
		log:     log,
		isAdmin: isAdmin,
		now:     time.Now,
		query:   Query{Type: model.TypeAll},
		page:    1,
		busy:    make(map[int64]bool),
	}
}

// Load replaces the whole collection with a fresh fetch, decorates each
// event with participant figures and re-applies the current query.
func (s *Store) Load(ctx context.Context) error {
	events, err := s.backend.FetchEvents(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to fetch events from backend")
		return err
	}

	for i := range events {
		if s.counter != nil {
			events[i].Participantes, events[i].Capacidade = s.counter.Count(events[i])
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
	s.refilterLocked()
	s.page = 1
	s.log.Info().Int("count", len(events)).Msg("event directory loaded")
	return nil
}

// ApplyQuery recomputes the filtered sequence and resets pagination to
// page 1. The reset is a UX contract: a new query always starts at the
// first page.
func (s *Store) ApplyQuery(q Query) []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
	s.refilterLocked()
	s.page = 1
	return append([]model.Event(nil), s.filtered...)
}

// refilterLocked applies the predicates in fixed order: cancelled flag,
// type, then case-insensitive substring over name/location/description.
func (s *Store) refilterLocked() {
	filtered := make([]model.Event, 0, len(s.events))
	needle := strings.ToLower(strings.TrimSpace(s.query.Search))

	for _, e := range s.events {
		if e.Cancelado && !s.query.IncludeCancelled {
			continue
		}
		if s.query.Type != "" && s.query.Type != model.TypeAll && e.Tipo != s.query.Type {
			continue
		}
		if needle != "" && !matches(e, needle) {
			continue
		}
		filtered = append(filtered, e)
	}
	s.filtered = filtered
}

func matches(e model.Event, needle string) bool {
	return strings.Contains(strings.ToLower(e.Nome), needle) ||
		strings.Contains(strings.ToLower(e.Local), needle) ||
		strings.Contains(strings.ToLower(e.Descricao), needle)
}

// Active returns the non-cancelled events in load order. Unlike
// ApplyQuery it leaves the view's query and page state alone, so read
// endpoints can use it without disturbing another caller's filter.
func (s *Store) Active() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Event, 0, len(s.events))
	for _, e := range s.events {
		if e.Cancelado {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Page returns the current page of the filtered sequence.
func (s *Store) Page() PageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageLocked()
}

func (s *Store) pageLocked() PageView {
	total := len(s.filtered)
	totalPages := (total + PageSize - 1) / PageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if s.page > totalPages {
		s.page = totalPages
	}

	from := (s.page - 1) * PageSize
	to := from + PageSize
	if to > total {
		to = total
	}
	if from > total {
		from = total
	}

	return PageView{
		Events:     append([]model.Event(nil), s.filtered[from:to]...),
		Page:       s.page,
		TotalPages: totalPages,
		Total:      total,
	}
}

// SetPage moves to the given page, clamped to the valid range.
func (s *Store) SetPage(page int) PageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page < 1 {
		page = 1
	}
	s.page = page
	return s.pageLocked()
}

// NextPage advances one page, clamped at the last.
func (s *Store) NextPage() PageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page++
	return s.pageLocked()
}

// PrevPage steps back one page, clamped at the first.
func (s *Store) PrevPage() PageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page > 1 {
		s.page--
	}
	return s.pageLocked()
}

// GroupByDate buckets the filtered events by the date part of their
// start token, groups sorted by ascending calendar date. Events whose
// token does not parse are skipped with a warning.
func (s *Store) GroupByDate() []DateGroup {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDate := make(map[string][]model.Event)
	order := make(map[string]time.Time)
	for _, e := range s.filtered {
		tok, err := datetoken.Parse(e.DataInicio)
		if err != nil {
			s.log.Warn().Int64("event_id", e.ID).Str("token", e.DataInicio).Msg("skipping event with bad start token")
			continue
		}
		key, _, _ := strings.Cut(e.DataInicio, " ")
		byDate[key] = append(byDate[key], e)
		order[key] = tok.Date()
	}

	groups := make([]DateGroup, 0, len(byDate))
	for key, events := range byDate {
		groups = append(groups, DateGroup{Date: key, Events: events})
	}
	sort.Slice(groups, func(i, j int) bool {
		return order[groups[i].Date].Before(order[groups[j].Date])
	})
	return groups
}

// Stats derives the dashboard counters over the full collection. The
// upcoming count uses the unclamped day difference: an event starting
// today is not upcoming.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Total: len(s.events)}
	now := s.now()
	for _, e := range s.events {
		if e.Cancelado {
			st.Cancelled++
			continue
		}
		st.Active++
		if days, err := datetoken.DaysUntil(e.DataInicio, now); err == nil && days > 0 {
			st.Upcoming++
		}
	}
	return st
}

// TypeOptions lists the distinct event types present in the collection,
// with the "all" sentinel first, in first-seen order.
func (s *Store) TypeOptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := []string{model.TypeAll}
	seen := make(map[string]bool)
	for _, e := range s.events {
		if e.Tipo == "" || seen[e.Tipo] {
			continue
		}
		seen[e.Tipo] = true
		opts = append(opts, e.Tipo)
	}
	return opts
}

// EventByID looks an event up in the full collection.
func (s *Store) EventByID(id int64) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.ID == id {
			return e, nil
		}
	}
	return model.Event{}, ErrEventNotFound
}

// Cancel flips an event to cancelled after backend confirmation. The
// reason is mandatory; the event disappears from the materialized
// filtered view immediately instead of waiting for a re-fetch.
func (s *Store) Cancel(ctx context.Context, id int64, motivo string, notificar bool, mensagem string) error {
	if !s.isAdmin {
		return ErrNotAdmin
	}
	if strings.TrimSpace(motivo) == "" {
		return ErrEmptyReason
	}
	if err := s.acquire(id); err != nil {
		return err
	}
	defer s.release(id)

	if err := s.backend.CancelEvent(ctx, id, motivo, notificar, mensagem); err != nil {
		s.log.Error().Err(err).Int64("event_id", id).Msg("backend refused cancellation")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID != id {
			continue
		}
		s.events[i].Cancelado = true
		s.events[i].MotivoCancelamento = motivo
		s.events[i].DataCancelamento = datetoken.Format(s.now())
		s.dropFromFilteredLocked(id)
		s.log.Info().Int64("event_id", id).Msg("event cancelled")
		return nil
	}
	return ErrEventNotFound
}

// Restore clears the cancellation metadata. The confirm flag is the
// yes/no gate the caller must have shown the user.
func (s *Store) Restore(ctx context.Context, id int64, confirm bool) error {
	if !s.isAdmin {
		return ErrNotAdmin
	}
	if !confirm {
		return ErrConfirmRequired
	}
	if err := s.acquire(id); err != nil {
		return err
	}
	defer s.release(id)

	if err := s.backend.RestoreEvent(ctx, id); err != nil {
		s.log.Error().Err(err).Int64("event_id", id).Msg("backend refused restore")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID != id {
			continue
		}
		s.events[i].Cancelado = false
		s.events[i].MotivoCancelamento = ""
		s.events[i].DataCancelamento = ""
		s.refilterLocked()
		s.log.Info().Int64("event_id", id).Msg("event restored")
		return nil
	}
	return ErrEventNotFound
}

// Purge removes the event from the in-memory collection for good. There
// is no undo; the confirm flag gates it the same way Restore is gated.
func (s *Store) Purge(ctx context.Context, id int64, confirm bool) error {
	if !s.isAdmin {
		return ErrNotAdmin
	}
	if !confirm {
		return ErrConfirmRequired
	}
	if err := s.acquire(id); err != nil {
		return err
	}
	defer s.release(id)

	if err := s.backend.DeleteEvent(ctx, id); err != nil {
		s.log.Error().Err(err).Int64("event_id", id).Msg("backend refused delete")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID != id {
			continue
		}
		s.events = append(s.events[:i], s.events[i+1:]...)
		s.dropFromFilteredLocked(id)
		s.log.Info().Int64("event_id", id).Msg("event permanently deleted")
		return nil
	}
	return ErrEventNotFound
}

func (s *Store) dropFromFilteredLocked(id int64) {
	for i := range s.filtered {
		if s.filtered[i].ID == id {
			s.filtered = append(s.filtered[:i], s.filtered[i+1:]...)
			return
		}
	}
}

func (s *Store) acquire(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[id] {
		return ErrBusy
	}
	s.busy[id] = true
	return nil
}

func (s *Store) release(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, id)
}
