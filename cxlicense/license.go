package cxlicense

import "time"

// SubscriptionTier is the subscription level a license grants.
type SubscriptionTier string

const (
	TierFree       SubscriptionTier = "free"
	TierPro        SubscriptionTier = "pro"
	TierTeam       SubscriptionTier = "team"
	TierEnterprise SubscriptionTier = "enterprise"
)

// IsPaid reports whether the tier is anything above the free tier.
func (t SubscriptionTier) IsPaid() bool {
	return t != "" && t != TierFree
}

// License is the persisted record of one subscription license.
// All timestamps are UTC. The key is an opaque credential token issued by
// the license server; this package never inspects its contents.
type License struct {
	ID    string           `json:"id"`
	Email string           `json:"email"`
	Name  string           `json:"name,omitempty"`
	Tier  SubscriptionTier `json:"tier"`
	Key   string           `json:"key"`

	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// HardwareFingerprint is the canonical string form of the machine the
	// license is bound to. Empty means not yet bound. Binding happens only
	// through BindToHardware; validation never writes it.
	HardwareFingerprint string `json:"hardware_fingerprint,omitempty"`

	// LastValidated is the time of the last successful online check.
	// It is the anchor of the offline grace period and is only ever set by
	// Client.ValidateOnline.
	LastValidated *time.Time `json:"last_validated,omitempty"`

	// Billing correlation identifiers, opaque to this package.
	StripeCustomerID     string `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string `json:"stripe_subscription_id,omitempty"`

	// Organization identity for enterprise licenses.
	OrganizationID   string `json:"organization_id,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`

	// Metadata is an open extension map. Never nil after NewLicense or
	// Store.Load, and an empty map round-trips as {} rather than vanishing.
	Metadata map[string]string `json:"metadata"`
}

// NewLicense creates a license issued now, unbound to any hardware.
func NewLicense(id, email string, tier SubscriptionTier, key string, expiresAt time.Time) *License {
	now := time.Now().UTC()
	return &License{
		ID:        id,
		Email:     email,
		Tier:      tier,
		Key:       key,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
		Metadata:  make(map[string]string),
	}
}

// IsExpired compares the expiry against the wall clock.
func (l *License) IsExpired() bool {
	return time.Now().After(l.ExpiresAt)
}

// IsValidForHardware reports whether the license may run on the machine
// described by fp. An unbound license is valid on any machine.
func (l *License) IsValidForHardware(fp HardwareFingerprint) bool {
	if l.HardwareFingerprint == "" {
		return true
	}
	return l.HardwareFingerprint == fp.String()
}

// BindToHardware binds the license to the machine described by fp.
// This is the only operation that sets the binding.
func (l *License) BindToHardware(fp HardwareFingerprint) {
	l.HardwareFingerprint = fp.String()
}

// DaysUntilExpiry returns whole days until the license expires.
// Negative once expired.
func (l *License) DaysUntilExpiry() int {
	return int(time.Until(l.ExpiresAt).Hours() / 24)
}
