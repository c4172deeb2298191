// Package tenant exposes per-tenant review settings. The default provider
// serves one static configuration loaded from the environment; a real tenant
// store can replace it behind the Provider interface.
package tenant

import (
	"context"
)

// Settings are the review submission rules a tenant can customize.
type Settings struct {
	MinReviewLength int  `env:"TENANT_MIN_REVIEW_LENGTH" envDefault:"10"`
	MaxReviewLength int  `env:"TENANT_MAX_REVIEW_LENGTH" envDefault:"5000"`
	RatingRequired  bool `env:"TENANT_RATING_REQUIRED" envDefault:"true"`
	PhotosAllowed   bool `env:"TENANT_PHOTOS_ALLOWED" envDefault:"true"`
	MaxPhotos       int  `env:"TENANT_MAX_PHOTOS" envDefault:"5"`
}

// Provider resolves the review settings that apply to a request.
type Provider interface {
	Settings(ctx context.Context) (Settings, error)
}

// StaticProvider serves a fixed settings value.
type StaticProvider struct {
	settings Settings
}

// NewStaticProvider creates a provider that always returns s.
func NewStaticProvider(s Settings) *StaticProvider {
	return &StaticProvider{settings: s}
}

// Settings returns the configured settings.
func (p *StaticProvider) Settings(_ context.Context) (Settings, error) {
	return p.settings, nil
}
