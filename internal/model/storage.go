package model

import (
	"context"
	"io"
)

// DocumentStorage stores whole documents addressed by key.
// Download returns ErrNotFound when the document has not been created yet.
type DocumentStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}
