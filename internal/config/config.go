package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// TokenProvider supplies the short-lived credential attached to each upload.
type TokenProvider interface {
	AuthToken() (string, error)
}

// StaticToken is a TokenProvider for a fixed credential.
type StaticToken string

// AuthToken returns the fixed credential.
func (s StaticToken) AuthToken() (string, error) {
	return string(s), nil
}

// Field names reported by Validate.
const (
	FieldBaseAPIURL = "baseApiUrl"
	FieldAPI        = "api"
	FieldTokens     = "tokenProvider"
)

// Config is the block a host supplies when installing the upload adapter.
// All three fields are required.
type Config struct {
	// BaseAPIURL is the backend root, e.g. https://api.example.com.
	BaseAPIURL string

	// API is the upload endpoint path under BaseAPIURL, e.g. images.
	API string

	// Tokens supplies the bearer credential per upload attempt.
	Tokens TokenProvider
}

// Validate returns the names of required fields that are missing. The caller
// decides how to surface them.
func (c *Config) Validate() []string {
	var missing []string
	if strings.TrimSpace(c.BaseAPIURL) == "" {
		missing = append(missing, FieldBaseAPIURL)
	}
	if strings.TrimSpace(c.API) == "" {
		missing = append(missing, FieldAPI)
	}
	if c.Tokens == nil {
		missing = append(missing, FieldTokens)
	}
	return missing
}

// MissingFieldsError reports an incomplete configuration block.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("upload configuration missing required fields: %s", strings.Join(e.Fields, ", "))
}

// FromEnv loads configuration from the environment, honouring a local .env
// file when present. Unset values are left empty for Validate to report.
func FromEnv() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		BaseAPIURL: os.Getenv("IMGUP_BASE_API_URL"),
		API:        os.Getenv("IMGUP_API"),
	}
	if token := os.Getenv("IMGUP_AUTH_TOKEN"); token != "" {
		cfg.Tokens = StaticToken(token)
	}
	return cfg
}
