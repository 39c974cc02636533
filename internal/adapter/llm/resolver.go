package llm

import (
	"context"
	"fmt"

	"gitlab.com/prompteval-2025.net/internal/config"
	"gitlab.com/prompteval-2025.net/internal/core/ports/primary"
	"gitlab.com/prompteval-2025.net/internal/core/ports/secondary"
	"gitlab.com/prompteval-2025.net/internal/domain"
)

// Settings keys controlling backend selection
const (
	SettingSelfHostedEnabled = "selfHostedEnabled"
	SettingSelfHostedPath    = "llmFrogPath"
)

// SettingsBackendResolver resolves the invocation target from the settings
// store on every call, so a live toggle applies to models not yet started
type SettingsBackendResolver struct {
	settings secondary.SettingsRepository
	cfg      *config.LLMConfig
	logger   primary.Logger
}

var _ secondary.BackendResolver = (*SettingsBackendResolver)(nil)

// NewSettingsBackendResolver creates a new settings-backed resolver
func NewSettingsBackendResolver(settings secondary.SettingsRepository, cfg *config.LLMConfig, logger primary.Logger) *SettingsBackendResolver {
	return &SettingsBackendResolver{
		settings: settings,
		cfg:      cfg,
		logger:   logger,
	}
}

// Resolve returns the backend for a single call. The self-hosted endpoint is
// used only when the toggle is on and an endpoint URL is stored; otherwise
// the hosted backend with its bearer token applies.
func (r *SettingsBackendResolver) Resolve(ctx context.Context) (*domain.BackendConfig, error) {
	enabled, err := r.settings.GetSetting(ctx, SettingSelfHostedEnabled)
	if err != nil {
		return nil, fmt.Errorf("failed to read self-hosted toggle: %w", err)
	}
	endpoint, err := r.settings.GetSetting(ctx, SettingSelfHostedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read self-hosted endpoint: %w", err)
	}

	if enabled == "true" && endpoint != "" {
		r.logger.Debug("Resolved self-hosted backend", "endpoint", endpoint)
		return &domain.BackendConfig{
			SelfHosted: true,
			BaseURL:    endpoint,
		}, nil
	}

	return &domain.BackendConfig{
		SelfHosted: false,
		BaseURL:    r.cfg.HostedBaseURL,
		APIKey:     r.cfg.HostedAPIKey,
	}, nil
}
