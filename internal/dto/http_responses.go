package dto

import (
	"github.com/wb-go/wbf/ginext"

	"eventdesk/internal/directory"
	"eventdesk/internal/model"
)

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	EventNotFound        = "EVENT_NOT_FOUND"
	NotificationNotFound = "NOTIFICATION_NOT_FOUND"
	UserNotFound         = "USER_NOT_FOUND"
	PermissionDenied     = "PERMISSION_DENIED"
	ConfirmationRequired = "CONFIRMATION_REQUIRED"
	OperationPending     = "OPERATION_PENDING"
	BackendRejected      = "BACKEND_REJECTED"
	LoginFailed          = "LOGIN_FAILED"
)

type CreateEventRequest struct {
	Nome       string `json:"nome" validate:"required,max=150"`
	Descricao  string `json:"descricao" validate:"required,max=500"`
	Tipo       string `json:"tipo" validate:"required,eventtype"`
	Local      string `json:"local" validate:"required,max=150"`
	DataInicio string `json:"dataInicio" validate:"required,datetoken"`
	DataFinal  string `json:"dataFinal" validate:"required,datetoken"`
	LinkEvento string `json:"linkEvento" validate:"omitempty,url"`
	LinkImagem string `json:"linkImagem" validate:"omitempty,url"`
}

type CancelEventRequest struct {
	Motivo              string `json:"motivo" validate:"required"`
	EnviarNotificacao   bool   `json:"enviarNotificacao"`
	MensagemNotificacao string `json:"mensagemNotificacao"`
}

// ConfirmRequest carries the explicit yes/no gate for restore, purge
// and inbox clearing.
type ConfirmRequest struct {
	Confirmar bool `json:"confirmar"`
}

type SubscribeRequest struct {
	EventoID int64  `json:"eventoId" validate:"required"`
	Nome     string `json:"nome"`
	Email    string `json:"email"`
}

type CreateUserRequest struct {
	Nome           string `json:"nome" validate:"required,min=3,max=150"`
	Email          string `json:"email" validate:"required,email"`
	Senha          string `json:"senha" validate:"required,min=6"`
	CPF            string `json:"cpf" validate:"required,cpf"`
	Telefone       string `json:"telefone" validate:"required,phone"`
	Tipo           string `json:"tipo" validate:"required,userrole"`
	DataNascimento string `json:"dataNascimento" validate:"required"`
}

type UpdateUserRequest struct {
	Nome           string `json:"nome" validate:"required,min=3,max=150"`
	Email          string `json:"email" validate:"required,email"`
	Telefone       string `json:"telefone" validate:"required,phone"`
	Tipo           string `json:"tipo" validate:"required,userrole"`
	DataNascimento string `json:"dataNascimento" validate:"required"`
}

type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required"`
}

// EventListResponse is one page of the filtered directory.
type EventListResponse struct {
	Eventos    []model.Event `json:"eventos"`
	Pagina     int           `json:"pagina"`
	TotalPages int           `json:"totalPaginas"`
	Total      int           `json:"total"`
}

// HomeResponse mirrors the original landing view: the first event
// featured, the rest listed, each with its remaining-days counter.
type HomeResponse struct {
	Destaque *EventView  `json:"destaque,omitempty"`
	Proximos []EventView `json:"proximos"`
}

// EventView decorates an event with the clamped remaining-days display
// value.
type EventView struct {
	model.Event
	DiasRestantes int `json:"diasRestantes"`
}

type GroupsResponse struct {
	Grupos []directory.DateGroup `json:"grupos"`
}

// NotificationView decorates a notification with its relative-time
// label.
type NotificationView struct {
	model.Notification
	Quando string `json:"quando"`
}

type InboxResponse struct {
	Notificacoes []NotificationView `json:"notificacoes"`
	NaoLidas     int                `json:"naoLidas"`
}

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code   string            `json:"code"`
	Desc   string            `json:"desc"`
	Fields map[string]string `json:"fields,omitempty"`
}

func BadResponseError(c *ginext.Context, code, desc string) {
	c.JSON(400, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

// BackendFieldError relays a backend 400 with its field map intact so
// the view can attach messages to inputs.
func BackendFieldError(c *ginext.Context, desc string, fields map[string]string) {
	c.JSON(400, Response{
		Status: "error",
		Error: &Error{
			Code:   BackendRejected,
			Desc:   desc,
			Fields: fields,
		},
	})
}

func InternalServerError(c *ginext.Context) {
	c.JSON(500, Response{
		Status: "error",
		Error: &Error{
			Code: ServiceUnavailable,
			Desc: InternalError,
		},
	})
}

func ForbiddenError(c *ginext.Context) {
	c.JSON(403, Response{
		Status: "error",
		Error: &Error{
			Code: PermissionDenied,
			Desc: "Only administrators can perform this operation",
		},
	})
}

func NotFoundError(c *ginext.Context, code, desc string) {
	c.JSON(404, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func ConflictError(c *ginext.Context, desc string) {
	c.JSON(409, Response{
		Status: "error",
		Error: &Error{
			Code: OperationPending,
			Desc: desc,
		},
	})
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(200, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(201, Response{
		Status: "ok",
		Data:   data,
	})
}
