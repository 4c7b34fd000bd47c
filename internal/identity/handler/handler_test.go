package handler

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conocida/internal/audit"
	"conocida/internal/identity"
	dErrors "conocida/pkg/domain-errors"
	"conocida/pkg/testutil"
)

func newUsersRouter(directory identity.Directory) *chi.Mux {
	r := chi.NewRouter()
	New(directory, audit.NopPublisher{}, slog.New(slog.DiscardHandler)).Register(r)
	return r
}

func TestHandleList(t *testing.T) {
	t.Run("lists accounts", func(t *testing.T) {
		router := newUsersRouter(identity.NewMemoryDirectory(
			identity.Account{UID: "u1", Email: "ana@example.com"},
			identity.Account{UID: "u2", Email: "eva@example.com"},
		))

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/users"))
		require.Equal(t, http.StatusOK, rr.Code)

		resp := testutil.UnmarshalResponse[struct {
			Success bool               `json:"success"`
			Users   []identity.Account `json:"users"`
			Total   int                `json:"total"`
		}](t, rr)
		assert.True(t, resp.Success)
		assert.Equal(t, 2, resp.Total)
		require.Len(t, resp.Users, 2)
		assert.Equal(t, "u1", resp.Users[0].UID)
	})

	t.Run("unconfigured directory is 503", func(t *testing.T) {
		router := newUsersRouter(nil)
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/users"))
		require.Equal(t, http.StatusServiceUnavailable, rr.Code)
		errBody := testutil.UnmarshalErrorResponse(t, rr)
		assert.Equal(t, string(dErrors.CodeUnavailable), errBody["error"])
	})
}

func TestHandleDelete(t *testing.T) {
	directory := identity.NewMemoryDirectory(identity.Account{UID: "u1"})
	router := newUsersRouter(directory)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, "/users/u1"))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, "/users/u1"))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	t.Run("unconfigured directory is 503", func(t *testing.T) {
		router := newUsersRouter(nil)
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, "/users/u1"))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}
