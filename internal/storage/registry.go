package storage

import (
	"fmt"
)

// ProviderFactory is a function that creates a new provider instance
type ProviderFactory func() Provider

// Registry holds all available storage providers
var Registry = make(map[string]ProviderFactory)

// RegisterProvider registers a new storage provider
func RegisterProvider(name string, factory ProviderFactory) {
	Registry[name] = factory
}

// NewProvider creates a new provider instance by name
func NewProvider(name string) (Provider, error) {
	factory, ok := Registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown storage provider: %s", name)
	}
	return factory(), nil
}

// init registers all built-in providers
func init() {
	RegisterProvider("local", func() Provider {
		return NewLocalProvider()
	})
	RegisterProvider("minio", func() Provider {
		return NewMinioProvider()
	})
}
