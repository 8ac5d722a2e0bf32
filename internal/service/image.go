package service

import (
	"context"
	"fmt"
	"io"

	"go-stockyng/internal/model"
	"go-stockyng/internal/objectstore"
)

// Image is an optional picture attached to a write.
type Image struct {
	Body        io.Reader
	ContentType string
}

const defaultImageType = "image/jpeg"

// upload stores img at path. Any failure is reported as
// model.ErrImageUploadFailed so callers can keep the record write.
func upload(ctx context.Context, store objectstore.Store, path string, img *Image) (string, error) {
	if store == nil {
		return "", fmt.Errorf("%s: no object store configured: %w", path, model.ErrImageUploadFailed)
	}
	ct := img.ContentType
	if ct == "" {
		ct = defaultImageType
	}
	url, err := store.Put(ctx, path, img.Body, ct)
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrImageUploadFailed, err)
	}
	return url, nil
}
