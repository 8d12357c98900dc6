package inbox

import (
	"context"
	"time"

	"eventdesk/internal/model"
)

// MockFeed serves a canned set of notifications while no real feed is
// configured. It stands in for the queue-backed feed during development
// and in tests.
type MockFeed struct {
	Notifications []model.Notification
	Err           error
}

func (f *MockFeed) Fetch(context.Context) ([]model.Notification, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]model.Notification(nil), f.Notifications...), nil
}

// SampleFeed builds a MockFeed with representative entries relative to
// the given time.
func SampleFeed(now time.Time) *MockFeed {
	return &MockFeed{Notifications: []model.Notification{
		{
			ID: 1, Tipo: model.NotifNewEvent, Titulo: "Novo evento publicado",
			Mensagem: "O evento \"Go Conf Recife\" acabou de ser publicado.",
			EventoID: 1, EventoNome: "Go Conf Recife",
			Timestamp: now.Add(-10 * time.Minute), Prioridade: model.PriorityMedium,
		},
		{
			ID: 2, Tipo: model.NotifEventReminder, Titulo: "Evento amanhã",
			Mensagem: "Não esqueça: \"Workshop de Docker\" começa amanhã às 09:00.",
			EventoID: 2, EventoNome: "Workshop de Docker",
			Timestamp: now.Add(-3 * time.Hour), Prioridade: model.PriorityHigh,
		},
		{
			ID: 3, Tipo: model.NotifEventUpdate, Titulo: "Evento atualizado",
			Mensagem: "O local do evento \"Hackaton 2025\" mudou.",
			EventoID: 3, EventoNome: "Hackaton 2025",
			Timestamp: now.Add(-2 * 24 * time.Hour), Lida: true, Prioridade: model.PriorityLow,
		},
	}}
}
