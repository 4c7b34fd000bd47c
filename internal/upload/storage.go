package upload

import (
	"context"
	"io"
)

// ObjectStore is the photo bucket boundary. Put returns the public URL of
// the stored object.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	DeletePrefix(ctx context.Context, prefix string) error
}
