package model

import "time"

// Event type values accepted by the backend.
const (
	TypeCongresso   = "CONGRESSO"
	TypeTreinamento = "TREINAMENTO"
	TypeWorkshop    = "WORKSHOP"
	TypeImersao     = "IMERSÃO"
	TypeReuniao     = "REUNIÃO"
	TypeHackaton    = "HACKATON"
	TypeStartup     = "STARTUP"
	TypeOutro       = "OUTRO"
)

// TypeAll is the sentinel filter value meaning "no type filter".
const TypeAll = "todos"

// User roles.
const (
	RoleUsuario       = "USUARIO"
	RoleOrganizador   = "ORGANIZADOR"
	RoleAdministrador = "ADMINISTRADOR"
)

// Notification types and priorities.
const (
	NotifNewEvent      = "new_event"
	NotifEventUpdate   = "event_update"
	NotifEventReminder = "event_reminder"
	NotifOldEvent      = "old_event"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Event mirrors the backend wire format. The two timestamps stay in the
// textual "dd/MM/yyyy HH:mm" token form the backend exchanges.
type Event struct {
	ID                 int64  `json:"id"`
	Nome               string `json:"nome"`
	Descricao          string `json:"descricao,omitempty"`
	Tipo               string `json:"tipo"`
	Local              string `json:"local,omitempty"`
	DataInicio         string `json:"dataInicio"`
	DataFinal          string `json:"dataFinal,omitempty"`
	LinkEvento         string `json:"linkEvento,omitempty"`
	LinkImagem         string `json:"linkImagem,omitempty"`
	Cancelado          bool   `json:"cancelado"`
	MotivoCancelamento string `json:"motivoCancelamento,omitempty"`
	DataCancelamento   string `json:"dataCancelamento,omitempty"`

	// Filled client-side at load time, not part of the backend payload.
	Participantes int `json:"participantes,omitempty"`
	Capacidade    int `json:"capacidade,omitempty"`
}

type Notification struct {
	ID         int64     `json:"id"`
	Tipo       string    `json:"tipo"`
	Titulo     string    `json:"titulo"`
	Mensagem   string    `json:"mensagem"`
	EventoID   int64     `json:"eventoId,omitempty"`
	EventoNome string    `json:"eventoNome,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Lida       bool      `json:"lida"`
	Prioridade string    `json:"prioridade"`
}

// User carries Senha only on the way in; the backend never echoes it back.
type User struct {
	ID             int64  `json:"id"`
	Nome           string `json:"nome"`
	Email          string `json:"email"`
	Senha          string `json:"senha,omitempty"`
	CPF            string `json:"cpf,omitempty"`
	Telefone       string `json:"telefone,omitempty"`
	Tipo           string `json:"tipo"`
	DataNascimento string `json:"dataNascimento,omitempty"`
}

// EventSnapshot is the subset of event fields embedded in a subscription,
// with timestamps converted to the sortable "yyyy-MM-ddTHH:mm:ss" form.
type EventSnapshot struct {
	ID         int64  `json:"id"`
	Nome       string `json:"nome"`
	Tipo       string `json:"tipo"`
	Local      string `json:"local,omitempty"`
	DataInicio string `json:"dataInicio"`
	DataFinal  string `json:"dataFinal,omitempty"`
}

// Subscription is built at submit time and discarded after the result is
// shown; nothing retains it client-side.
type Subscription struct {
	Evento  EventSnapshot `json:"evento"`
	Usuario Participant   `json:"usuario"`
}

type Participant struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
}

// EventTypes lists the valid event type values in form order.
func EventTypes() []string {
	return []string{
		TypeCongresso, TypeTreinamento, TypeWorkshop, TypeImersao,
		TypeReuniao, TypeHackaton, TypeStartup, TypeOutro,
	}
}

// UserRoles lists the valid account roles.
func UserRoles() []string {
	return []string{RoleUsuario, RoleOrganizador, RoleAdministrador}
}
