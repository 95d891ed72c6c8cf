// Package providers creates the concrete series sources and registers
// them with a provider registry.
package providers

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/seenimoa/fredseries/internal/config"
	"github.com/seenimoa/fredseries/internal/provider"
	"github.com/seenimoa/fredseries/internal/providers/fred"
	"github.com/seenimoa/fredseries/internal/providers/local"
)

// NewRegistry returns a registry holding every source, with
// cfg.Source.Kind as the default.
func NewRegistry(cfg *config.Config, log zerolog.Logger) (*provider.Registry, error) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, cfg, log); err != nil {
		return nil, err
	}
	return reg, nil
}

// RegisterAllTo registers all available sources to the given registry and
// selects the configured default.
func RegisterAllTo(reg *provider.Registry, cfg *config.Config, log zerolog.Logger) error {
	// --- FRED graph endpoint (no API key) ---
	fr := fred.New(fred.Options{
		BaseURL:   cfg.FRED.BaseURL,
		Timeout:   cfg.FRED.Timeout,
		UserAgent: cfg.FRED.UserAgent,
		RateLimit: cfg.FRED.RateLimit,
		RateBurst: cfg.FRED.RateBurst,
	}, log)
	if err := reg.Register(fr); err != nil {
		return err
	}

	// --- Local CSV directory ---
	if err := reg.Register(local.New(cfg.Source.Dir, log)); err != nil {
		return err
	}

	if err := reg.SetDefault(cfg.Source.Kind); err != nil {
		return fmt.Errorf("source %q: %w", cfg.Source.Kind, err)
	}
	return nil
}
