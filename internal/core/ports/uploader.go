package ports

import (
	"context"
	"io"
)

// ImageUploader pushes an image to the external media store and returns the
// hosted URL.
type ImageUploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (string, error)
}
