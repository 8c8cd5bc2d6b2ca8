package adapter

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/inkpost/imgup/internal/config"
)

func TestInstall_MissingFields(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	factory, err := Install(&config.Config{}, logger)
	if factory != nil {
		t.Error("Expected no factory for incomplete configuration")
	}
	if err == nil {
		t.Fatal("Expected an error, got nil")
	}

	var missingErr *config.MissingFieldsError
	if !errors.As(err, &missingErr) {
		t.Fatalf("Expected MissingFieldsError, got %T", err)
	}
	if len(missingErr.Fields) != 3 {
		t.Errorf("Expected 3 missing fields, got %v", missingErr.Fields)
	}

	// Each missing field gets its own diagnostic line.
	logged := buf.String()
	for _, field := range []string{config.FieldBaseAPIURL, config.FieldAPI, config.FieldTokens} {
		if !strings.Contains(logged, field) {
			t.Errorf("Expected a diagnostic naming %s, log output: %s", field, logged)
		}
	}
	if got := strings.Count(logged, "upload adapter disabled"); got != 3 {
		t.Errorf("Expected 3 diagnostic lines, got %d", got)
	}
}

func TestInstall_PartialConfig(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	cfg := &config.Config{
		BaseAPIURL: "https://api.example.com",
		Tokens:     config.StaticToken("token"),
	}

	_, err := Install(cfg, logger)
	var missingErr *config.MissingFieldsError
	if !errors.As(err, &missingErr) {
		t.Fatalf("Expected MissingFieldsError, got %v", err)
	}
	if len(missingErr.Fields) != 1 || missingErr.Fields[0] != config.FieldAPI {
		t.Errorf("Expected only %s to be missing, got %v", config.FieldAPI, missingErr.Fields)
	}
	if strings.Contains(buf.String(), config.FieldBaseAPIURL) {
		t.Errorf("Did not expect a diagnostic for %s", config.FieldBaseAPIURL)
	}
}

func TestInstall_CompleteConfig(t *testing.T) {
	var buf bytes.Buffer

	factory, err := Install(testConfig(), zerolog.New(&buf))
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected no diagnostics, got %s", buf.String())
	}

	// Each upload request gets its own independent adapter.
	first := factory.NewAdapter(testLoader("a.png"))
	second := factory.NewAdapter(testLoader("b.png"))
	if first == second {
		t.Error("Expected distinct adapters per loader")
	}
	if first.transport == second.transport {
		t.Error("Expected each adapter to own a fresh transport")
	}
}
