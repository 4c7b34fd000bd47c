package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conocida/internal/platform/config"
	dErrors "conocida/pkg/domain-errors"
)

func TestNewHTTPDirectory_Unconfigured(t *testing.T) {
	assert.Nil(t, NewHTTPDirectory(config.DirectoryConfig{}))
}

func TestHTTPDirectory_List(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.RequestURI()
		_, _ = w.Write([]byte(`{"users":[
			{"uid":"u1","email":"ana@example.com","displayName":"Ana","emailVerified":true},
			{"uid":"u2","email":"eva@example.com","disabled":true}
		]}`))
	}))
	defer srv.Close()

	d := NewHTTPDirectory(config.DirectoryConfig{BaseURL: srv.URL, APIKey: "admin-key"})
	users, err := d.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer admin-key", gotAuth)
	assert.Equal(t, "/users?limit=1000", gotPath)
	require.Len(t, users, 2)
	assert.Equal(t, "ana@example.com", users[0].Email)
	assert.True(t, users[1].Disabled)
}

func TestHTTPDirectory_ListErrors(t *testing.T) {
	t.Run("provider failure is unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		d := NewHTTPDirectory(config.DirectoryConfig{BaseURL: srv.URL})
		_, err := d.List(context.Background())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	t.Run("unreachable host is unavailable", func(t *testing.T) {
		d := NewHTTPDirectory(config.DirectoryConfig{BaseURL: "http://127.0.0.1:1"})
		_, err := d.List(context.Background())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

func TestHTTPDirectory_Delete(t *testing.T) {
	t.Run("deletes by uid", func(t *testing.T) {
		var gotMethod, gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		d := NewHTTPDirectory(config.DirectoryConfig{BaseURL: srv.URL})
		require.NoError(t, d.Delete(context.Background(), "u1"))
		assert.Equal(t, http.MethodDelete, gotMethod)
		assert.Equal(t, "/users/u1", gotPath)
	})

	t.Run("unknown uid is NotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		d := NewHTTPDirectory(config.DirectoryConfig{BaseURL: srv.URL})
		err := d.Delete(context.Background(), "ghost")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("empty uid is a bad request", func(t *testing.T) {
		d := NewHTTPDirectory(config.DirectoryConfig{BaseURL: "http://example.invalid"})
		err := d.Delete(context.Background(), "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}
