package cxlicense

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/cxlinux/cx-license-sdk/cxlicense/activationregistry"
)

// Manager ties the store, validator and client into the flows an
// application actually runs: check the current license, refresh it online,
// activate a new key, deactivate. An optional activation registry records
// which machines hold which license.
type Manager struct {
	store     *Store
	client    *Client
	validator *Validator
	registry  activationregistry.Registry
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithValidator sets the validator used for local checks. Without it a
// default validator (current machine, 7-day grace period) is used.
func WithValidator(v *Validator) ManagerOption {
	return func(m *Manager) {
		m.validator = v
	}
}

// WithActivationRegistry sets a registry that records machine activations.
func WithActivationRegistry(r activationregistry.Registry) ManagerOption {
	return func(m *Manager) {
		m.registry = r
	}
}

// NewManager creates a Manager over the given store and client.
func NewManager(store *Store, client *Client, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		client: client,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.validator == nil {
		m.validator = NewValidator()
	}
	return m
}

// Current loads the stored license and validates it locally. The license is
// returned alongside a validation error so callers can still show tier and
// expiry for a license that failed a check.
func (m *Manager) Current() (*License, error) {
	lic, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	return lic, m.validator.Validate(lic)
}

// Refresh re-validates the stored license with the server, resetting the
// offline grace clock on success.
func (m *Manager) Refresh(ctx context.Context) (*License, error) {
	lic, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	if err := m.client.ValidateOnline(ctx, lic); err != nil {
		return nil, err
	}
	if m.registry != nil {
		// Best effort: a missing heartbeat only ages the audit trail.
		_ = m.registry.Touch(ctx, m.client.Fingerprint().String())
	}
	return lic, nil
}

// EnsureValid returns a license that is valid right now. A license whose
// grace period has run out is refreshed online before giving up; any other
// local failure is returned as-is, since going online cannot fix an expired
// or wrongly-bound license.
func (m *Manager) EnsureValid(ctx context.Context) (*License, error) {
	lic, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	err = m.validator.Validate(lic)
	if err == nil {
		return lic, nil
	}
	if !errors.Is(err, ErrGracePeriodExpired) {
		return nil, err
	}
	if err := m.client.ValidateOnline(ctx, lic); err != nil {
		return nil, err
	}
	return lic, nil
}

// ActivateKey redeems a license key for this machine and records the
// activation in the registry when one is configured.
func (m *Manager) ActivateKey(ctx context.Context, licenseKey string) (*License, error) {
	lic, err := m.client.Activate(ctx, licenseKey)
	if err != nil {
		return nil, err
	}

	if m.registry != nil {
		hostname, _ := os.Hostname()
		_, err := m.registry.Record(ctx, activationregistry.ActivationRecord{
			Fingerprint: m.client.Fingerprint().String(),
			Hostname:    hostname,
			OS:          runtime.GOOS,
			LicenseID:   lic.ID,
			Tier:        string(lic.Tier),
		})
		if err != nil {
			return nil, fmt.Errorf("record activation: %w", err)
		}
	}
	return lic, nil
}

// DeactivateKey releases the stored license. Like Client.Deactivate, the
// remote notification and the registry removal are best-effort; local
// cleanup is what must succeed.
func (m *Manager) DeactivateKey(ctx context.Context) error {
	lic, err := m.store.Load()
	if err != nil {
		return err
	}
	if err := m.client.Deactivate(ctx, lic); err != nil {
		return err
	}
	if m.registry != nil {
		_ = m.registry.Remove(ctx, m.client.Fingerprint().String())
	}
	return nil
}
