package upload

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"path"
	"strings"

	"github.com/nfnt/resize"

	dErrors "conocida/pkg/domain-errors"
	"conocida/pkg/requestcontext"
)

const (
	// MaxFiles and MaxFileSize bound a single upload request.
	MaxFiles    = 10
	MaxFileSize = 10 << 20

	thumbnailWidth = 320
)

// ProfileAppender records uploaded photo URLs on a profile. Returns NotFound
// for unknown profiles.
type ProfileAppender interface {
	AddPhotos(ctx context.Context, id string, urls []string) error
}

// File is one decoded multipart part.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Service streams photos to the bucket and records their URLs on the owning
// profile.
type Service struct {
	store    ObjectStore
	profiles ProfileAppender
	logger   *slog.Logger
}

func NewService(store ObjectStore, profiles ProfileAppender, logger *slog.Logger) *Service {
	return &Service{store: store, profiles: profiles, logger: logger}
}

// Store uploads every file under persons/<personID>/ and appends the public
// URLs to the profile. Unknown profiles fail before anything is stored.
func (s *Service) Store(ctx context.Context, personID string, files []File) ([]string, error) {
	if personID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "personId is required")
	}
	if len(files) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no files in request")
	}
	if len(files) > MaxFiles {
		return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("at most %d files per upload", MaxFiles))
	}
	for _, f := range files {
		if len(f.Data) > MaxFileSize {
			return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("file %q exceeds the %d byte limit", f.Name, MaxFileSize))
		}
	}

	// Validate ownership first so a typo'd personId doesn't orphan objects.
	if err := s.profiles.AddPhotos(ctx, personID, nil); err != nil {
		return nil, err
	}

	stamp := requestcontext.Now(ctx).UnixMilli()
	urls := make([]string, 0, len(files))
	for _, f := range files {
		key := fmt.Sprintf("persons/%s/%d_%s", personID, stamp, sanitizeName(f.Name))
		url, err := s.store.Put(ctx, key, f.ContentType, bytes.NewReader(f.Data))
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
		s.storeThumbnail(ctx, key, f)
	}

	if err := s.profiles.AddPhotos(ctx, personID, urls); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "photos uploaded",
		"profile_id", personID,
		"count", len(urls),
	)
	return urls, nil
}

// storeThumbnail derives a 320px-wide JPEG next to the original. Files that
// don't decode as images simply get no thumbnail.
func (s *Service) storeThumbnail(ctx context.Context, key string, f File) {
	img, _, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return
	}

	thumb := resize.Resize(thumbnailWidth, 0, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return
	}

	thumbKey := "thumbs/" + strings.TrimSuffix(key, path.Ext(key)) + ".jpg"
	if _, err := s.store.Put(ctx, thumbKey, "image/jpeg", &buf); err != nil {
		s.logger.WarnContext(ctx, "thumbnail upload failed", "key", thumbKey, "error", err)
	}
}

// DeletePrefix forwards prefix deletion so the profile service can purge a
// deleted profile's objects through this package's boundary.
func (s *Service) DeletePrefix(ctx context.Context, prefix string) error {
	if err := s.store.DeletePrefix(ctx, prefix); err != nil {
		return err
	}
	return s.store.DeletePrefix(ctx, "thumbs/"+prefix)
}

func sanitizeName(name string) string {
	name = path.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." {
		name = "photo"
	}
	return name
}
