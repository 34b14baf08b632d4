package cxlicense

import "time"

// DefaultGracePeriodDays is the offline grace period applied when no
// WithGracePeriod option is given.
const DefaultGracePeriodDays = 7

// Validator checks a license against the current machine and wall clock.
// It holds no mutable state and is safe for concurrent use.
type Validator struct {
	graceDays   int
	fingerprint HardwareFingerprint
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithGracePeriod sets the offline grace period in days. Default is 7.
// The grace period is deployment configuration, not part of the license
// record, so it can change without reissuing licenses.
func WithGracePeriod(days int) ValidatorOption {
	return func(v *Validator) {
		v.graceDays = days
	}
}

// WithValidatorFingerprint overrides the machine fingerprint the validator
// compares against. Without it the current machine is probed once at
// construction.
func WithValidatorFingerprint(fp HardwareFingerprint) ValidatorOption {
	return func(v *Validator) {
		v.fingerprint = fp
	}
}

// NewValidator creates a validator for the current machine.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		graceDays:   DefaultGracePeriodDays,
		fingerprint: GenerateFingerprint(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Fingerprint returns the machine fingerprint the validator compares against.
func (v *Validator) Fingerprint() HardwareFingerprint {
	return v.fingerprint
}

// Validate checks the license locally. Checks run in a fixed order and the
// first failure wins:
//
//  1. expiry: an expired license reports ErrExpired even when the hardware
//     also mismatches, since expiry is the more fundamental problem
//  2. hardware binding, only when the record is bound
//  3. offline grace period, only when the record has been online-validated
//     at least once; the grace clock runs from the last successful check,
//     not from issuance
func (v *Validator) Validate(lic *License) error {
	if lic.IsExpired() {
		return ErrExpired
	}
	if !lic.IsValidForHardware(v.fingerprint) {
		return ErrHardwareMismatch
	}
	if lic.LastValidated != nil {
		if daysSince(*lic.LastValidated) > v.graceDays {
			return ErrGracePeriodExpired
		}
	}
	return nil
}

// IsValid reports whether Validate succeeds.
func (v *Validator) IsValid(lic *License) bool {
	return v.Validate(lic) == nil
}

// IsInGracePeriod reports whether the license is currently inside a
// started, non-expired grace window.
func (v *Validator) IsInGracePeriod(lic *License) bool {
	if lic.LastValidated == nil {
		return false
	}
	days := daysSince(*lic.LastValidated)
	return days > 0 && days <= v.graceDays
}

// GracePeriodRemaining returns whole days of grace left, clamped to
// [0, graceDays]. A LastValidated in the future counts as a full grace
// period, tolerating clock skew. ok is false when the license has never
// been online-validated and the grace clock has not started.
func (v *Validator) GracePeriodRemaining(lic *License) (days int, ok bool) {
	if lic.LastValidated == nil {
		return 0, false
	}
	since := daysSince(*lic.LastValidated)
	switch {
	case since < 0:
		return v.graceDays, true
	case since >= v.graceDays:
		return 0, true
	default:
		return v.graceDays - since, true
	}
}

// daysSince returns whole days between t and now, negative when t is in the
// future. Truncation toward zero matches the grace arithmetic above.
func daysSince(t time.Time) int {
	return int(time.Since(t).Hours() / 24)
}
