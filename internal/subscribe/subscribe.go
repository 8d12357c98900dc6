// Package subscribe drives the enrollment modal: participant
// validation, payload construction and a small submit state machine.
package subscribe

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"eventdesk/internal/datetoken"
	"eventdesk/internal/model"
)

type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrInFlight rejects a second submit while one is outstanding.
	ErrInFlight = errors.New("subscription submit already in flight")
	// ErrDone rejects submits after success; the modal instance is spent.
	ErrDone = errors.New("subscription already succeeded")

	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidationError is field-scoped so the view can attach it to the
// offending input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate checks the participant fields before any network traffic.
func Validate(nome, email string) error {
	if strings.TrimSpace(nome) == "" {
		return &ValidationError{Field: "nome", Reason: "O nome é obrigatório"}
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Reason: "O email é obrigatório"}
	}
	if !emailRe.MatchString(email) {
		return &ValidationError{Field: "email", Reason: "Email inválido"}
	}
	return nil
}

// Build assembles the backend-bound payload: an event snapshot with
// timestamps converted to the sortable form, plus the participant.
func Build(e model.Event, nome, email string) (model.Subscription, error) {
	start, err := datetoken.Parse(e.DataInicio)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("event start: %w", err)
	}
	snapshot := model.EventSnapshot{
		ID:         e.ID,
		Nome:       e.Nome,
		Tipo:       e.Tipo,
		Local:      e.Local,
		DataInicio: start.Sortable(),
	}
	if e.DataFinal != "" {
		end, err := datetoken.Parse(e.DataFinal)
		if err != nil {
			return model.Subscription{}, fmt.Errorf("event end: %w", err)
		}
		snapshot.DataFinal = end.Sortable()
	}
	return model.Subscription{
		Evento:  snapshot,
		Usuario: model.Participant{Nome: strings.TrimSpace(nome), Email: strings.TrimSpace(email)},
	}, nil
}

// Sender is the backend call the workflow dispatches through.
type Sender interface {
	CreateSubscription(ctx context.Context, sub model.Subscription) error
}

// Workflow is one modal instance: Idle -> Submitting -> Success|Failed.
// Failed returns to Idle on the next field edit; Success is terminal
// until Reset (the modal being reopened).
type Workflow struct {
	sender Sender
	log    *zerolog.Logger

	mu    sync.Mutex
	state State
}

func NewWorkflow(sender Sender, log *zerolog.Logger) *Workflow {
	return &Workflow{sender: sender, log: log, state: StateIdle}
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Submit performs the single network call. No retry: failure leaves the
// user on an interactive path.
func (w *Workflow) Submit(ctx context.Context, sub model.Subscription) error {
	w.mu.Lock()
	switch w.state {
	case StateSubmitting:
		w.mu.Unlock()
		return ErrInFlight
	case StateSuccess:
		w.mu.Unlock()
		return ErrDone
	}
	w.state = StateSubmitting
	w.mu.Unlock()

	err := w.sender.CreateSubscription(ctx, sub)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.state = StateFailed
		w.log.Error().Err(err).Int64("evento_id", sub.Evento.ID).Msg("subscription submit failed")
		return err
	}
	w.state = StateSuccess
	w.log.Info().Int64("evento_id", sub.Evento.ID).Str("email", sub.Usuario.Email).Msg("subscription created")
	return nil
}

// FieldEdited moves Failed back to Idle; any other state is untouched.
func (w *Workflow) FieldEdited() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateFailed {
		w.state = StateIdle
	}
}

// Reset returns the workflow to Idle for the next modal open.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StateIdle
}
