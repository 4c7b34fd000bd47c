package upload

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "conocida/pkg/domain-errors"
	"conocida/pkg/requestcontext"
)

type fakeAppender struct {
	known map[string][]string
}

func newFakeAppender(ids ...string) *fakeAppender {
	known := make(map[string][]string, len(ids))
	for _, id := range ids {
		known[id] = nil
	}
	return &fakeAppender{known: known}
}

func (f *fakeAppender) AddPhotos(_ context.Context, id string, urls []string) error {
	if _, ok := f.known[id]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "profile not found")
	}
	f.known[id] = append(f.known[id], urls...)
	return nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func newService(appender *fakeAppender) (*Service, *MemoryStore) {
	store := NewMemoryStore()
	return NewService(store, appender, slog.New(slog.DiscardHandler)), store
}

func TestStore(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithNow(context.Background(), at)

	t.Run("uploads under the person prefix and appends URLs", func(t *testing.T) {
		appender := newFakeAppender("p1")
		svc, store := newService(appender)

		urls, err := svc.Store(ctx, "p1", []File{
			{Name: "foto uno.png", ContentType: "image/png", Data: pngBytes(t, 640, 480)},
			{Name: "nota.txt", ContentType: "text/plain", Data: []byte("hola")},
		})
		require.NoError(t, err)
		require.Len(t, urls, 2)
		assert.Contains(t, urls[0], "persons/p1/")
		assert.Contains(t, urls[0], "foto_uno.png")
		assert.Equal(t, urls, appender.known["p1"])

		keys := strings.Join(store.Keys(), "\n")
		assert.Contains(t, keys, "persons/p1/")
		// The image gets a thumbnail; the text file does not.
		assert.Contains(t, keys, "thumbs/persons/p1/")
		for _, key := range store.Keys() {
			if strings.HasPrefix(key, "thumbs/") {
				assert.NotContains(t, key, "nota")
				assert.True(t, strings.HasSuffix(key, ".jpg"))
			}
		}
	})

	t.Run("unknown profile stores nothing", func(t *testing.T) {
		svc, store := newService(newFakeAppender("p1"))

		_, err := svc.Store(ctx, "ghost", []File{{Name: "a.png", Data: pngBytes(t, 10, 10)}})
		require.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
		assert.Empty(t, store.Keys())
	})

	t.Run("missing personId", func(t *testing.T) {
		svc, _ := newService(newFakeAppender("p1"))
		_, err := svc.Store(ctx, "", []File{{Name: "a.png", Data: []byte("x")}})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("no files", func(t *testing.T) {
		svc, _ := newService(newFakeAppender("p1"))
		_, err := svc.Store(ctx, "p1", nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("too many files", func(t *testing.T) {
		svc, _ := newService(newFakeAppender("p1"))
		files := make([]File, MaxFiles+1)
		for i := range files {
			files[i] = File{Name: "a.png", Data: []byte("x")}
		}
		_, err := svc.Store(ctx, "p1", files)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("oversized file", func(t *testing.T) {
		svc, _ := newService(newFakeAppender("p1"))
		_, err := svc.Store(ctx, "p1", []File{{Name: "big.bin", Data: make([]byte, MaxFileSize+1)}})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestDeletePrefix(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(newFakeAppender("p1"))

	_, err := store.Put(ctx, "persons/p1/1_a.png", "image/png", bytes.NewReader([]byte("a")))
	require.NoError(t, err)
	_, err = store.Put(ctx, "thumbs/persons/p1/1_a.jpg", "image/jpeg", bytes.NewReader([]byte("t")))
	require.NoError(t, err)
	_, err = store.Put(ctx, "persons/p2/1_b.png", "image/png", bytes.NewReader([]byte("b")))
	require.NoError(t, err)

	require.NoError(t, svc.DeletePrefix(ctx, "persons/p1/"))
	assert.Equal(t, []string{"persons/p2/1_b.png"}, store.Keys())
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "foto_uno.png", sanitizeName("foto uno.png"))
	assert.Equal(t, "a.png", sanitizeName("../../a.png"))
	assert.Equal(t, "photo", sanitizeName(""))
	assert.Equal(t, "se_ora.jpg", sanitizeName("señora.jpg"))
}
