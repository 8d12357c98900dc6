// Package backend is the typed client of the remote event-management
// REST API. Timestamps cross this boundary in the backend's textual
// "dd/MM/yyyy HH:mm" form; the client never reshapes them.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/retry"

	"eventdesk/internal/model"
)

// APIError is a non-2xx backend reply. A 400 may carry a field->message
// map or a single message; anything else is a generic failure.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend: unexpected status %d", e.Status)
}

type Client struct {
	baseURL  string
	hc       *http.Client
	log      *zerolog.Logger
	strategy retry.Strategy

	// the client is shared across handlers; the token may be replaced
	// by a login racing other requests
	mu    sync.Mutex
	token string
}

func New(baseURL string, log *zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 10 * time.Second},
		log:     log,
		strategy: retry.Strategy{
			Attempts: 3,
			Delay:    500 * time.Millisecond,
			Backoff:  2,
		},
	}
}

// SetToken attaches the session token returned by Login to subsequent
// requests. The client never validates or refreshes it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode}
	var reply struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err == nil {
		apiErr.Message = reply.Message
		if resp.StatusCode == http.StatusBadRequest {
			apiErr.Fields = reply.Errors
		}
	}
	c.log.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("backend returned error")
	return apiErr
}

// getWithRetry retries transport failures and 5xx replies on idempotent
// reads; 4xx replies are final and returned as-is.
func (c *Client) getWithRetry(ctx context.Context, path string, out any) error {
	var final error
	err := retry.Do(func() error {
		err := c.do(ctx, http.MethodGet, path, nil, out)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			final = err
			return nil
		}
		return err
	}, c.strategy)
	if err != nil {
		return err
	}
	return final
}

func (c *Client) FetchEvents(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := c.getWithRetry(ctx, "/evento", &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) CreateEvent(ctx context.Context, e model.Event) (model.Event, error) {
	var created model.Event
	if err := c.do(ctx, http.MethodPost, "/evento", e, &created); err != nil {
		return model.Event{}, err
	}
	return created, nil
}

type cancelBody struct {
	EventoID            int64  `json:"eventoId"`
	Motivo              string `json:"motivo"`
	EnviarNotificacao   bool   `json:"enviarNotificacao"`
	MensagemNotificacao string `json:"mensagemNotificacao"`
}

func (c *Client) CancelEvent(ctx context.Context, id int64, motivo string, notificar bool, mensagem string) error {
	body := cancelBody{
		EventoID:            id,
		Motivo:              motivo,
		EnviarNotificacao:   notificar,
		MensagemNotificacao: mensagem,
	}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/evento/%d/cancelar", id), body, nil)
}

func (c *Client) RestoreEvent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/evento/%d/restaurar", id), nil, nil)
}

func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/evento/%d", id), nil, nil)
}

func (c *Client) CreateSubscription(ctx context.Context, sub model.Subscription) error {
	return c.do(ctx, http.MethodPost, "/inscricao", sub, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.getWithRetry(ctx, "/usuario", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	var created model.User
	if err := c.do(ctx, http.MethodPost, "/usuario", u, &created); err != nil {
		return model.User{}, err
	}
	return created, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, u model.User) (model.User, error) {
	var updated model.User
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/usuario/%d", id), u, &updated); err != nil {
		return model.User{}, err
	}
	return updated, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/usuario/%d", id), nil, nil)
}

// LoginResult is the backend's auth reply.
type LoginResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login authenticates and remembers the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, senha string) (LoginResult, error) {
	body := map[string]string{"email": email, "senha": senha}
	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &result); err != nil {
		return LoginResult{}, err
	}
	c.SetToken(result.Token)
	return result, nil
}
