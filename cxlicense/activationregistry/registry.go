// Package activationregistry records which machines have activated a
// license, as an audit trail for support and deployment tooling. It does not
// enforce seat limits; the license server owns policy.
package activationregistry

import (
	"context"
	"time"
)

// ActivationRecord is one machine's activation of a license.
type ActivationRecord struct {
	Fingerprint string    `json:"fingerprint" bson:"fingerprint"`
	Hostname    string    `json:"hostname" bson:"hostname"`
	OS          string    `json:"os" bson:"os"`
	LicenseID   string    `json:"license_id" bson:"license_id"`
	Tier        string    `json:"tier" bson:"tier"`
	ActivatedAt time.Time `json:"activated_at" bson:"activated_at"`
	LastSeenAt  time.Time `json:"last_seen_at" bson:"last_seen_at"`
}

// Registry stores activation records keyed by machine fingerprint.
type Registry interface {
	// Record creates or refreshes the activation for a machine
	// (upsert by fingerprint).
	Record(ctx context.Context, rec ActivationRecord) (*ActivationRecord, error)

	// Remove deletes a machine's activation (on deactivation).
	Remove(ctx context.Context, fingerprint string) error

	// Touch updates last_seen_at for a machine, typically after a
	// successful online validation.
	Touch(ctx context.Context, fingerprint string) error

	// List returns all activations of a license.
	List(ctx context.Context, licenseID string) ([]ActivationRecord, error)

	// Count returns the number of recorded activations of a license.
	Count(ctx context.Context, licenseID string) (int, error)

	// Prune removes activations of a license not seen since olderThan.
	// Returns the number of records removed.
	Prune(ctx context.Context, licenseID string, olderThan time.Duration) (int, error)

	// Close releases any resources held by the registry.
	Close(ctx context.Context) error
}
