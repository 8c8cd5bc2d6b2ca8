package adapter

import (
	"github.com/rs/zerolog"

	"github.com/inkpost/imgup/internal/config"
	"github.com/inkpost/imgup/internal/transport"
)

// Factory produces a fresh Adapter per upload request, bound to validated
// configuration. Obtain one via Install.
type Factory struct {
	cfg          *config.Config
	newTransport func() transport.Transport
}

// Install validates the configuration and returns the adapter factory. Every
// missing field is logged as its own diagnostic and no factory is returned;
// the host keeps running without a working upload adapter.
func Install(cfg *config.Config, logger zerolog.Logger) (*Factory, error) {
	if missing := cfg.Validate(); len(missing) > 0 {
		for _, field := range missing {
			logger.Error().
				Str("field", field).
				Msg("upload adapter disabled: required configuration field missing")
		}
		return nil, &config.MissingFieldsError{Fields: missing}
	}

	return &Factory{
		cfg:          cfg,
		newTransport: func() transport.Transport { return transport.NewHTTPTransport() },
	}, nil
}

// NewAdapter binds a fresh adapter, with its own one-shot transport, to the
// given loader.
func (f *Factory) NewAdapter(loader Loader) *Adapter {
	return New(f.cfg, loader, f.newTransport())
}
