package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdesk/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	log := zerolog.Nop()
	return New(srv.URL, &log)
}

func TestFetchEvents(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/evento", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]model.Event{
			{ID: 1, Nome: "Go Conf", Tipo: model.TypeCongresso, DataInicio: "10/03/2025 09:00"},
		})
	})

	events, err := c.FetchEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Go Conf", events[0].Nome)
	assert.Equal(t, "10/03/2025 09:00", events[0].DataInicio)
}

func TestCancelEventBodyShape(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/evento/7/cancelar", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	err := c.CancelEvent(context.Background(), 7, "venue flooded", true, "Lamentamos informar.")
	require.NoError(t, err)

	assert.Equal(t, float64(7), got["eventoId"])
	assert.Equal(t, "venue flooded", got["motivo"])
	assert.Equal(t, true, got["enviarNotificacao"])
	assert.Equal(t, "Lamentamos informar.", got["mensagemNotificacao"])
}

func TestBadRequestCarriesFieldErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"errors": map[string]string{"nome": "O nome é obrigatório"},
		})
	})

	_, err := c.CreateEvent(context.Background(), model.Event{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "O nome é obrigatório", apiErr.Fields["nome"])
}

func TestNonJSONErrorIsGeneric(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	err := c.DeleteEvent(context.Background(), 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Empty(t, apiErr.Fields)
}

func TestGetRetriesServerErrors(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode([]model.User{{ID: 1, Nome: "Ana", Tipo: model.RoleUsuario}})
	})
	c.strategy.Delay = 0

	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	require.Len(t, users, 1)
	assert.Equal(t, "Ana", users[0].Nome)
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "bad filter"})
	})
	c.strategy.Delay = 0

	_, err := c.FetchEvents(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "bad filter", apiErr.Message)
}

func TestLoginStoresToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "ana@example.com", body["email"])
			_ = json.NewEncoder(w).Encode(LoginResult{
				Token: "tok-123",
				User:  model.User{ID: 1, Nome: "Ana", Tipo: model.RoleAdministrador},
			})
		case "/usuario":
			assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode([]model.User{})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	result, err := c.Login(context.Background(), "ana@example.com", "s3nha")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", result.Token)
	assert.Equal(t, model.RoleAdministrador, result.User.Tipo)

	_, err = c.ListUsers(context.Background())
	require.NoError(t, err)
}

func TestConcurrentLoginAndRequests(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			_ = json.NewEncoder(w).Encode(LoginResult{Token: "tok-123"})
		case "/evento":
			_ = json.NewEncoder(w).Encode([]model.Event{})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := c.Login(context.Background(), "ana@example.com", "s3nha")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := c.FetchEvents(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, "tok-123", c.bearer())
}

func TestSubscriptionPayloadShape(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/inscricao", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})

	sub := model.Subscription{
		Evento: model.EventSnapshot{
			ID: 3, Nome: "Go Conf", Tipo: model.TypeCongresso,
			DataInicio: "2025-03-10T09:00:00", DataFinal: "2025-03-10T18:00:00",
		},
		Usuario: model.Participant{Nome: "Ana", Email: "ana@example.com"},
	}
	require.NoError(t, c.CreateSubscription(context.Background(), sub))

	evento, ok := got["evento"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2025-03-10T09:00:00", evento["dataInicio"])
	usuario, ok := got["usuario"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ana", usuario["nome"])
	assert.Equal(t, "ana@example.com", usuario["email"])
}
