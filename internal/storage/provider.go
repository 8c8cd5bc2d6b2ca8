package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Provider persists uploaded images for the bundled reference backend.
type Provider interface {
	// Store writes the payload and returns the image id it is retrievable under.
	Store(ctx context.Context, reader io.Reader, filename string) (string, error)

	// Open streams a previously stored image back.
	Open(ctx context.Context, id string) (io.ReadCloser, error)

	// Configure sets up the provider with the given configuration
	Configure(config map[string]any) error

	// Name returns the provider name
	Name() string
}

// newImageID mints the identifier a stored image is served under. The original
// extension is kept so fetches can infer a content type.
func newImageID(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	return uuid.NewString() + ext
}
