package app

import (
	"context"
	"fmt"

	"github.com/niposch/ovh-embedding-adapter/internal/config"
	"github.com/niposch/ovh-embedding-adapter/internal/observability"
	"github.com/niposch/ovh-embedding-adapter/internal/translator"
	"github.com/niposch/ovh-embedding-adapter/internal/upstream"
)

// Container aggregates runtime dependencies for handlers.
type Container struct {
	Config        *config.Config
	Observability *observability.Provider
	Translator    *translator.Translator
}

// NewContainer builds the dependency container from configuration.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	obs, err := observability.Setup(ctx, cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("setup observability: %w", err)
	}

	client, err := upstream.New(upstream.Options{
		URL:     cfg.Upstream.URL,
		Token:   cfg.Upstream.Token,
		Timeout: cfg.Upstream.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("build upstream client: %w", err)
	}

	return &Container{
		Config:        cfg,
		Observability: obs,
		Translator:    translator.New(client, cfg.Upstream.MaxBatchSize, obs),
	}, nil
}
