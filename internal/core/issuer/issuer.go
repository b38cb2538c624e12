package issuer

import "context"

// Config is the company/issuer profile consumed by document generation.
// Fields may be empty; the encoder substitutes fixed textual defaults so a
// structurally valid document is always produced.
type Config struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	TaxID   string `json:"taxId,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Provider supplies the issuer profile. Implementations must degrade to an
// empty Config rather than fail when no profile is configured.
type Provider interface {
	Get(ctx context.Context) (Config, error)
}

// StaticProvider serves a fixed profile, typically sourced from environment
// configuration at startup.
type StaticProvider struct {
	Config Config
}

// Get returns the configured profile.
func (p StaticProvider) Get(_ context.Context) (Config, error) {
	return p.Config, nil
}
