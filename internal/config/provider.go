package config

import (
	"slices"
	"sync"
)

// Provider hands out the current configuration and notifies subscribers
// when a reload swaps it. Registered as the "config.provider" service so
// modules can observe memory-section changes without re-provisioning.
type Provider struct {
	mu        sync.RWMutex
	current   *Config
	listeners []func(*Config)
}

// NewProvider creates a provider seeded with cfg.
func NewProvider(cfg *Config) *Provider {
	return &Provider{current: cfg}
}

// Current returns the active configuration. Callers must not mutate it.
func (p *Provider) Current() *Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Swap installs cfg as the active configuration and notifies listeners in
// registration order.
func (p *Provider) Swap(cfg *Config) {
	p.mu.Lock()
	p.current = cfg
	listeners := slices.Clone(p.listeners)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
}

// OnChange registers fn to run after each Swap. Listeners run on the
// reloading goroutine and must return quickly.
func (p *Provider) OnChange(fn func(*Config)) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}
