package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalProvider implements the Provider interface for local filesystem storage
type LocalProvider struct {
	dir string
}

// NewLocalProvider creates a new LocalProvider
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

// Name returns the provider name
func (l *LocalProvider) Name() string {
	return "local"
}

// Configure sets up the storage directory, creating it if needed. When no dir
// is given a directory under the system temp dir is used.
func (l *LocalProvider) Configure(config map[string]any) error {
	dir, ok := getStringValue(config, "dir")
	if !ok || dir == "" {
		dir = filepath.Join(os.TempDir(), "imgup")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("local: failed to create storage dir: %w", err)
	}

	l.dir = dir
	return nil
}

// Store writes the payload under a freshly minted image id.
func (l *LocalProvider) Store(_ context.Context, reader io.Reader, filename string) (string, error) {
	if l.dir == "" {
		return "", fmt.Errorf("local: provider not configured")
	}

	id := newImageID(filename)
	path := filepath.Join(l.dir, id)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("local: failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("local: failed to write %s: %w", path, err)
	}

	return id, nil
}

// Open streams a previously stored image back.
func (l *LocalProvider) Open(_ context.Context, id string) (io.ReadCloser, error) {
	if l.dir == "" {
		return nil, fmt.Errorf("local: provider not configured")
	}
	// Ids are flat names; anything path-like is rejected.
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return nil, fmt.Errorf("local: invalid image id: %s", id)
	}

	f, err := os.Open(filepath.Join(l.dir, id))
	if err != nil {
		return nil, fmt.Errorf("local: failed to open %s: %w", id, err)
	}
	return f, nil
}
