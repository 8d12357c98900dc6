package service

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"eventdesk/internal/backend"
	"eventdesk/internal/datetoken"
	"eventdesk/internal/directory"
	"eventdesk/internal/dto"
	"eventdesk/internal/inbox"
	"eventdesk/internal/model"
	"eventdesk/internal/subscribe"
	"eventdesk/internal/users"
	"eventdesk/pkg/validator"
)

type Service interface {
	Home(ctx *ginext.Context)
	ListEvents(ctx *ginext.Context)
	SearchKeystroke(ctx *ginext.Context)
	EventGroups(ctx *ginext.Context)
	EventStats(ctx *ginext.Context)
	EventTypes(ctx *ginext.Context)
	CreateEvent(ctx *ginext.Context)
	CancelEvent(ctx *ginext.Context)
	RestoreEvent(ctx *ginext.Context)
	PurgeEvent(ctx *ginext.Context)
	Subscribe(ctx *ginext.Context)
	ListUsers(ctx *ginext.Context)
	CreateUser(ctx *ginext.Context)
	UpdateUser(ctx *ginext.Context)
	DeleteUser(ctx *ginext.Context)
	Login(ctx *ginext.Context)
	Inbox(ctx *ginext.Context)
	MarkNotificationRead(ctx *ginext.Context)
	MarkAllNotificationsRead(ctx *ginext.Context)
	DeleteNotification(ctx *ginext.Context)
	ClearInbox(ctx *ginext.Context)
}

type service struct {
	dir      *directory.Store
	box      *inbox.Store
	api      *backend.Client
	log      *zerolog.Logger
	searcher *directory.Searcher
	now      func() time.Time

	mu     sync.Mutex
	modals map[int64]*subscribe.Workflow
	loaded bool
}

func NewService(dir *directory.Store, box *inbox.Store, api *backend.Client, logger *zerolog.Logger) Service {
	s := &service{
		dir:    dir,
		box:    box,
		api:    api,
		log:    logger,
		now:    time.Now,
		modals: make(map[int64]*subscribe.Workflow),
	}
	s.searcher = directory.NewSearcher(func(q directory.Query) {
		s.dir.ApplyQuery(q)
	}, directory.DebounceDelay)
	return s
}

// ensureLoaded fetches the directory on first use or when the caller
// asks for a refresh.
func (s *service) ensureLoaded(ctx *ginext.Context, refresh bool) error {
	s.mu.Lock()
	needed := refresh || !s.loaded
	s.mu.Unlock()
	if !needed {
		return nil
	}
	if err := s.dir.Load(ctx.Request.Context()); err != nil {
		return err
	}
	s.mu.Lock()
	s.loaded = true
	s.mu.Unlock()
	return nil
}

func queryFromParams(ctx *ginext.Context) directory.Query {
	q := directory.Query{
		Search: ctx.Query("q"),
		Type:   ctx.DefaultQuery("tipo", model.TypeAll),
	}
	q.IncludeCancelled = ctx.Query("cancelados") == "true"
	return q
}

// Home serves the landing view: first active event featured, the rest
// listed, each with the clamped remaining-days counter.
func (s *service) Home(ctx *ginext.Context) {
	if err := s.ensureLoaded(ctx, ctx.Query("atualizar") == "true"); err != nil {
		dto.InternalServerError(ctx)
		return
	}

	events := s.dir.Active()
	now := s.now()

	views := make([]dto.EventView, 0, len(events))
	for _, e := range events {
		days, err := datetoken.DaysLeft(e.DataInicio, now)
		if err != nil {
			s.log.Warn().Int64("event_id", e.ID).Msg("event start token unparsable, showing 0 days")
		}
		views = append(views, dto.EventView{Event: e, DiasRestantes: days})
	}

	resp := dto.HomeResponse{Proximos: []dto.EventView{}}
	if len(views) > 0 {
		resp.Destaque = &views[0]
		resp.Proximos = views[1:]
	}
	dto.SuccessResponse(ctx, resp)
}

func (s *service) ListEvents(ctx *ginext.Context) {
	if err := s.ensureLoaded(ctx, ctx.Query("atualizar") == "true"); err != nil {
		dto.InternalServerError(ctx)
		return
	}

	s.dir.ApplyQuery(queryFromParams(ctx))

	view := s.dir.Page()
	if raw := ctx.Query("pagina"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid page number")
			return
		}
		view = s.dir.SetPage(page)
	}

	dto.SuccessResponse(ctx, dto.EventListResponse{
		Eventos:    view.Events,
		Pagina:     view.Page,
		TotalPages: view.TotalPages,
		Total:      view.Total,
	})
}

// SearchKeystroke feeds one keystroke's worth of query state into the
// debounced searcher. Rapid calls coalesce; the filtered view settles
// 300ms after the last one.
func (s *service) SearchKeystroke(ctx *ginext.Context) {
	s.searcher.Update(queryFromParams(ctx))
	ctx.JSON(202, dto.Response{Status: "ok"})
}

func (s *service) EventGroups(ctx *ginext.Context) {
	if err := s.ensureLoaded(ctx, false); err != nil {
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, dto.GroupsResponse{Grupos: s.dir.GroupByDate()})
}

func (s *service) EventStats(ctx *ginext.Context) {
	if err := s.ensureLoaded(ctx, false); err != nil {
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, s.dir.Stats())
}

func (s *service) EventTypes(ctx *ginext.Context) {
	if err := s.ensureLoaded(ctx, false); err != nil {
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, s.dir.TypeOptions())
}

func (s *service) CreateEvent(ctx *ginext.Context) {
	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.log.Error().Err(err).Msg("failed to parse create event request")
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		s.log.Error().Msgf("validation failed: %v", verr)
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	event := model.Event{
		Nome:       req.Nome,
		Descricao:  req.Descricao,
		Tipo:       req.Tipo,
		Local:      req.Local,
		DataInicio: req.DataInicio,
		DataFinal:  req.DataFinal,
		LinkEvento: req.LinkEvento,
		LinkImagem: req.LinkImagem,
	}

	created, err := s.api.CreateEvent(ctx.Request.Context(), event)
	if err != nil {
		s.respondBackendError(ctx, err)
		return
	}

	s.log.Info().Int64("event_id", created.ID).Msg("event created")

	// pull the fresh collection so the new event shows up immediately
	if err := s.dir.Load(ctx.Request.Context()); err != nil {
		s.log.Warn().Err(err).Msg("reload after create failed; view may lag")
	}
	dto.SuccessCreatedResponse(ctx, created)
}

func (s *service) CancelEvent(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	var req dto.CancelEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if req.EnviarNotificacao && req.MensagemNotificacao == "" {
		if e, lookupErr := s.dir.EventByID(id); lookupErr == nil {
			req.MensagemNotificacao = fmt.Sprintf("Lamentamos informar que o evento %q foi cancelado.", e.Nome)
		}
	}

	err = s.dir.Cancel(ctx.Request.Context(), id, req.Motivo, req.EnviarNotificacao, req.MensagemNotificacao)
	if err != nil {
		s.respondDirectoryError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, s.dir.Stats())
}

func (s *service) RestoreEvent(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	var req dto.ConfirmRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if err := s.dir.Restore(ctx.Request.Context(), id, req.Confirmar); err != nil {
		s.respondDirectoryError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, s.dir.Stats())
}

func (s *service) PurgeEvent(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	confirm := ctx.Query("confirmar") == "true"
	if err := s.dir.Purge(ctx.Request.Context(), id, confirm); err != nil {
		s.respondDirectoryError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, s.dir.Stats())
}

// modal returns the per-event subscription workflow, creating it on
// first use.
func (s *service) modal(eventID int64) *subscribe.Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.modals[eventID]
	if !ok {
		w = subscribe.NewWorkflow(s.api, s.log)
		s.modals[eventID] = w
	}
	return w
}

func (s *service) Subscribe(ctx *ginext.Context) {
	var req dto.SubscribeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if err := subscribe.Validate(req.Nome, req.Email); err != nil {
		var verr *subscribe.ValidationError
		if errors.As(err, &verr) {
			dto.BackendFieldError(ctx, "Validation failed", map[string]string{verr.Field: verr.Reason})
			return
		}
		dto.BadResponseError(ctx, dto.FieldIncorrect, err.Error())
		return
	}

	event, err := s.dir.EventByID(req.EventoID)
	if err != nil {
		dto.NotFoundError(ctx, dto.EventNotFound, "Event not found")
		return
	}

	payload, err := subscribe.Build(event, req.Nome, req.Email)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldBadFormat, err.Error())
		return
	}

	w := s.modal(req.EventoID)
	err = w.Submit(ctx.Request.Context(), payload)
	switch {
	case errors.Is(err, subscribe.ErrInFlight):
		dto.ConflictError(ctx, "A subscription for this event is already being submitted")
		return
	case errors.Is(err, subscribe.ErrDone):
		// previous modal instance succeeded and was never closed; start
		// a fresh one for this submit
		w.Reset()
		err = w.Submit(ctx.Request.Context(), payload)
		if err != nil {
			s.respondBackendError(ctx, err)
			return
		}
	case err != nil:
		s.respondBackendError(ctx, err)
		return
	}

	dto.SuccessCreatedResponse(ctx, payload)
}

func (s *service) ListUsers(ctx *ginext.Context) {
	list, err := s.api.ListUsers(ctx.Request.Context())
	if err != nil {
		s.respondBackendError(ctx, err)
		return
	}
	for i := range list {
		list[i].CPF = users.FormatCPF(list[i].CPF)
		list[i].Telefone = users.FormatPhone(list[i].Telefone)
	}
	dto.SuccessResponse(ctx, list)
}

func (s *service) CreateUser(ctx *ginext.Context) {
	var req dto.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	user := model.User{
		Nome:           req.Nome,
		Email:          req.Email,
		Senha:          req.Senha,
		CPF:            validator.Digits(req.CPF),
		Telefone:       validator.Digits(req.Telefone),
		Tipo:           req.Tipo,
		DataNascimento: req.DataNascimento,
	}

	created, err := s.api.CreateUser(ctx.Request.Context(), user)
	if err != nil {
		s.respondBackendError(ctx, err)
		return
	}
	created.Senha = ""
	s.log.Info().Int64("user_id", created.ID).Msg("user registered")
	dto.SuccessCreatedResponse(ctx, created)
}

func (s *service) UpdateUser(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid user ID")
		return
	}

	var req dto.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	user := model.User{
		Nome:           req.Nome,
		Email:          req.Email,
		Telefone:       validator.Digits(req.Telefone),
		Tipo:           req.Tipo,
		DataNascimento: req.DataNascimento,
	}

	updated, err := s.api.UpdateUser(ctx.Request.Context(), id, user)
	if err != nil {
		s.respondBackendError(ctx, err)
		return
	}
	updated.Senha = ""
	dto.SuccessResponse(ctx, updated)
}

func (s *service) DeleteUser(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid user ID")
		return
	}

	if ctx.Query("confirmar") != "true" {
		dto.BadResponseError(ctx, dto.ConfirmationRequired, "Deletion must be confirmed")
		return
	}

	if err := s.api.DeleteUser(ctx.Request.Context(), id); err != nil {
		s.respondBackendError(ctx, err)
		return
	}
	s.log.Info().Int64("user_id", id).Msg("user deleted")
	dto.SuccessResponse(ctx, nil)
}

func (s *service) Login(ctx *ginext.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	result, err := s.api.Login(ctx.Request.Context(), req.Email, req.Senha)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && (apiErr.Status == 400 || apiErr.Status == 401) {
			dto.BadResponseError(ctx, dto.LoginFailed, "Email ou senha incorretos")
			return
		}
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Str("email", req.Email).Msg("login succeeded")
	dto.SuccessResponse(ctx, result)
}

func (s *service) Inbox(ctx *ginext.Context) {
	now := s.now()
	notifications := s.box.All()
	views := make([]dto.NotificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, dto.NotificationView{
			Notification: n,
			Quando:       inbox.RelativeTime(n.Timestamp, now),
		})
	}
	dto.SuccessResponse(ctx, dto.InboxResponse{
		Notificacoes: views,
		NaoLidas:     s.box.UnreadCount(),
	})
}

func (s *service) MarkNotificationRead(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid notification ID")
		return
	}
	if err := s.box.MarkRead(id); err != nil {
		dto.NotFoundError(ctx, dto.NotificationNotFound, "Notification not found")
		return
	}
	dto.SuccessResponse(ctx, map[string]int{"naoLidas": s.box.UnreadCount()})
}

func (s *service) MarkAllNotificationsRead(ctx *ginext.Context) {
	s.box.MarkAllRead()
	dto.SuccessResponse(ctx, map[string]int{"naoLidas": 0})
}

func (s *service) DeleteNotification(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid notification ID")
		return
	}
	if err := s.box.Delete(id); err != nil {
		dto.NotFoundError(ctx, dto.NotificationNotFound, "Notification not found")
		return
	}
	dto.SuccessResponse(ctx, map[string]int{"naoLidas": s.box.UnreadCount()})
}

func (s *service) ClearInbox(ctx *ginext.Context) {
	confirm := ctx.Query("confirmar") == "true"
	if err := s.box.ClearAll(confirm); err != nil {
		dto.BadResponseError(ctx, dto.ConfirmationRequired, "Clearing the inbox must be confirmed")
		return
	}
	dto.SuccessResponse(ctx, nil)
}

// respondDirectoryError maps store errors onto the response envelope.
func (s *service) respondDirectoryError(ctx *ginext.Context, err error) {
	switch {
	case errors.Is(err, directory.ErrNotAdmin):
		dto.ForbiddenError(ctx)
	case errors.Is(err, directory.ErrEmptyReason):
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Cancellation reason is required")
	case errors.Is(err, directory.ErrConfirmRequired):
		dto.BadResponseError(ctx, dto.ConfirmationRequired, "Operation must be confirmed")
	case errors.Is(err, directory.ErrBusy):
		dto.ConflictError(ctx, "Another operation is in flight for this event")
	case errors.Is(err, directory.ErrEventNotFound):
		dto.NotFoundError(ctx, dto.EventNotFound, "Event not found")
	default:
		s.respondBackendError(ctx, err)
	}
}

// respondBackendError relays a backend refusal or reports a generic
// failure; prior local state is untouched either way.
func (s *service) respondBackendError(ctx *ginext.Context, err error) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status == 400 {
		desc := apiErr.Message
		if desc == "" {
			desc = "Request rejected by backend"
		}
		dto.BackendFieldError(ctx, desc, apiErr.Fields)
		return
	}
	s.log.Error().Err(err).Msg("backend call failed")
	dto.InternalServerError(ctx)
}
