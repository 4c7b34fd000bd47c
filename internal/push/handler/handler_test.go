package handler

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conocida/internal/audit"
	"conocida/internal/push"
	"conocida/pkg/testutil"
)

type fakeDispatcher struct {
	failOn map[string]bool
}

func (d *fakeDispatcher) Send(_ context.Context, token string, _ push.Message) error {
	if d.failOn[token] {
		return assert.AnError
	}
	return nil
}

func newPushRouter(dispatcher push.Dispatcher) *chi.Mux {
	logger := slog.New(slog.DiscardHandler)
	svc := push.NewService(push.NewMemoryTokenStore(), dispatcher, logger)

	r := chi.NewRouter()
	h := New(svc, audit.NopPublisher{}, logger)
	h.Register(r)
	h.RegisterAdmin(r)
	return r
}

func TestHandleRegister(t *testing.T) {
	router := newPushRouter(&fakeDispatcher{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/push/register",
		map[string]string{"token": "tok-1", "platform": "android"})
	rr := testutil.DoRequest(router, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	req = testutil.NewJSONRequest(t, http.MethodPost, "/push/register", map[string]string{"platform": "android"})
	rr = testutil.DoRequest(router, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleSend(t *testing.T) {
	router := newPushRouter(&fakeDispatcher{failOn: map[string]bool{"bad": true}})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/send-push", map[string]any{
		"tokens": []string{"a", "bad"},
		"title":  "hola",
		"body":   "mundo",
	})
	rr := testutil.DoRequest(router, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := testutil.UnmarshalResponse[struct {
		Success bool `json:"success"`
		Sent    int  `json:"sent"`
		Failed  int  `json:"failed"`
		Errors  []struct {
			Token string `json:"token"`
		} `json:"errors"`
	}](t, rr)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Sent)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "bad", resp.Errors[0].Token)

	t.Run("missing title", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/send-push", map[string]any{
			"tokens": []string{"a"},
			"body":   "mundo",
		})
		rr := testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
