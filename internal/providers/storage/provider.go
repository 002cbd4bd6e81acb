package storage

import (
	"context"
	"io"
)

// Upload is the stored image handle. PublicID is what Delete needs later.
type Upload struct {
	URL      string
	PublicID string
}

// Provider stores and removes images. Uploads are not transactional with
// database writes; callers compensate with a best-effort Delete when the
// write that needed the image fails.
type Provider interface {
	Upload(ctx context.Context, filename string, content io.Reader) (*Upload, error)
	Delete(ctx context.Context, publicID string) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) Upload(ctx context.Context, filename string, content io.Reader) (*Upload, error) {
	return &Upload{URL: "noop://" + filename, PublicID: filename}, nil
}

func (p *NoOpProvider) Delete(ctx context.Context, publicID string) error {
	return nil
}
