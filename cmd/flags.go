package cmd

import (
	"github.com/spf13/cobra"
)

// StorageConfig holds storage-provider flags for the serve command
type StorageConfig struct {
	Provider   string
	Config     string
	ConfigKV   []string
	ConfigFile string
}

// SetupStorageFlags adds storage-related flags to a command
func SetupStorageFlags(cmd *cobra.Command, config *StorageConfig) {
	cmd.Flags().StringVar(&config.Provider, "storage-provider", "local", "Storage provider type (local, minio)")
	cmd.Flags().StringVar(&config.Config, "storage-config", "", "Storage configuration as JSON string")
	cmd.Flags().StringArrayVar(&config.ConfigKV, "storage-config-kv", nil, "Storage config key=value pairs (can be used multiple times)")
	cmd.Flags().StringVar(&config.ConfigFile, "storage-config-file", "", "Path to JSON file containing storage configuration")
}
