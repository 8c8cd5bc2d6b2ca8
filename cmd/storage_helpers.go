package cmd

import (
	"fmt"

	"github.com/inkpost/imgup/internal/confmap"
	"github.com/inkpost/imgup/internal/storage"
)

// storageConfigEnvPrefix is honoured both as a whole-object JSON variable and
// as IMGUP_STORAGE_CONFIG_<KEY> per-field variables.
const storageConfigEnvPrefix = "IMGUP_STORAGE_CONFIG"

// BuildStorageConfig builds storage configuration from all sources
func BuildStorageConfig(config *StorageConfig) (map[string]any, error) {
	result, err := confmap.Build(storageConfigEnvPrefix, config.Config, config.ConfigKV, config.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to build storage config: %w", err)
	}
	return result, nil
}

// SetupStorageProvider creates and configures a storage provider
func SetupStorageProvider(config *StorageConfig) (storage.Provider, map[string]any, error) {
	if config.Provider == "" {
		return nil, nil, fmt.Errorf("storage provider is required")
	}

	storageConf, err := BuildStorageConfig(config)
	if err != nil {
		return nil, nil, err
	}

	provider, err := storage.NewProvider(config.Provider)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage provider: %w", err)
	}

	if err := provider.Configure(storageConf); err != nil {
		return nil, nil, fmt.Errorf("failed to configure storage provider: %w", err)
	}

	return provider, storageConf, nil
}
