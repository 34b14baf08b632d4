// Package cxlicense validates subscription licenses for CX applications.
//
// Install with:
//
//	go get github.com/cxlinux/cx-license-sdk/cxlicense
//
// A license is a single JSON record on disk, bound to the current machine's
// hardware fingerprint and refreshed periodically against the CX License
// Server. Between refreshes the license stays usable for an offline grace
// period (7 days by default).
//
// # Quick Start
//
// Local validation of an already-activated license:
//
//	store := cxlicense.NewStore(path)
//	lic, err := store.Load()
//	if err != nil {
//	    // handle cxlicense.ErrNotFound etc.
//	}
//	v := cxlicense.NewValidator()
//	if err := v.Validate(lic); err != nil {
//	    // cxlicense.ErrExpired, ErrHardwareMismatch, ErrGracePeriodExpired
//	}
//
// # Activation
//
// Activating a license key binds it to this machine and persists the record:
//
//	client := cxlicense.NewClient("https://license.cxlinux.ai/api/v1", store)
//	lic, err := client.Activate(ctx, "CX-XXXX-YYYY-ZZZZ")
//
// # Orchestration
//
// Manager ties the store, validator and client together, falling back to an
// online check when the grace period has run out:
//
//	m := cxlicense.NewManager(store, client)
//	lic, err := m.EnsureValid(ctx)
package cxlicense
