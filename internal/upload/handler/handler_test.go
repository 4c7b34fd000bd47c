package handler

import (
	"bytes"
	"context"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conocida/internal/upload"
	dErrors "conocida/pkg/domain-errors"
	"conocida/pkg/testutil"
)

type fakeAppender struct {
	known map[string]bool
}

func (f *fakeAppender) AddPhotos(_ context.Context, id string, _ []string) error {
	if !f.known[id] {
		return dErrors.New(dErrors.CodeNotFound, "profile not found")
	}
	return nil
}

func newUploadRouter() *chi.Mux {
	logger := slog.New(slog.DiscardHandler)
	svc := upload.NewService(upload.NewMemoryStore(), &fakeAppender{known: map[string]bool{"p1": true}}, logger)

	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return r
}

func multipartRequest(t *testing.T, personID string, files map[string][]byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if personID != "" {
		require.NoError(t, mw.WriteField("personId", personID))
	}
	for name, data := range files {
		part, err := mw.CreateFormFile("photos", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleUpload(t *testing.T) {
	router := newUploadRouter()

	t.Run("accepts files and returns their URLs", func(t *testing.T) {
		req := multipartRequest(t, "p1", map[string][]byte{
			"a.jpg": []byte("not-really-a-jpeg"),
			"b.jpg": []byte("also-bytes"),
		})
		rr := testutil.DoRequest(router, req)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		resp := testutil.UnmarshalResponse[struct {
			Success bool     `json:"success"`
			URLs    []string `json:"urls"`
		}](t, rr)
		assert.True(t, resp.Success)
		assert.Len(t, resp.URLs, 2)
	})

	t.Run("missing personId", func(t *testing.T) {
		req := multipartRequest(t, "", map[string][]byte{"a.jpg": []byte("x")})
		rr := testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("no files", func(t *testing.T) {
		req := multipartRequest(t, "p1", nil)
		rr := testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown profile", func(t *testing.T) {
		req := multipartRequest(t, "ghost", map[string][]byte{"a.jpg": []byte("x")})
		rr := testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader([]byte("{}")))
		req.Header.Set("Content-Type", "application/json")
		rr := testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
