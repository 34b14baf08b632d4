package cxlicense

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "license.json"))
}

func TestStore_RoundTrip(t *testing.T) {
	store := tempStore(t)

	validated := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	lic := &License{
		ID:                   "lic-123",
		Email:                "user@example.com",
		Name:                 "Test User",
		Tier:                 TierEnterprise,
		Key:                  "opaque-key",
		IssuedAt:             time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		ExpiresAt:            time.Date(2027, 7, 1, 0, 0, 0, 0, time.UTC),
		HardwareFingerprint:  "m1-linux-amd64-unix-none",
		LastValidated:        &validated,
		StripeCustomerID:     "cus_123",
		StripeSubscriptionID: "sub_456",
		OrganizationID:       "org-789",
		OrganizationName:     "Example Corp",
		Metadata:             map[string]string{"seat": "dev-1"},
	}

	if err := store.Save(lic); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.ID != lic.ID || loaded.Email != lic.Email || loaded.Name != lic.Name ||
		loaded.Tier != lic.Tier || loaded.Key != lic.Key {
		t.Errorf("identity fields did not round-trip: %+v", loaded)
	}
	if !loaded.IssuedAt.Equal(lic.IssuedAt) || !loaded.ExpiresAt.Equal(lic.ExpiresAt) {
		t.Errorf("timestamps did not round-trip: %+v", loaded)
	}
	if loaded.HardwareFingerprint != lic.HardwareFingerprint {
		t.Errorf("fingerprint did not round-trip: %s", loaded.HardwareFingerprint)
	}
	if loaded.LastValidated == nil || !loaded.LastValidated.Equal(validated) {
		t.Errorf("last_validated did not round-trip: %v", loaded.LastValidated)
	}
	if loaded.StripeCustomerID != lic.StripeCustomerID ||
		loaded.StripeSubscriptionID != lic.StripeSubscriptionID ||
		loaded.OrganizationID != lic.OrganizationID ||
		loaded.OrganizationName != lic.OrganizationName {
		t.Errorf("billing/org fields did not round-trip: %+v", loaded)
	}
	if loaded.Metadata["seat"] != "dev-1" {
		t.Errorf("metadata did not round-trip: %v", loaded.Metadata)
	}
}

func TestStore_RoundTrip_EmptyMetadata(t *testing.T) {
	store := tempStore(t)
	lic := NewLicense("lic-123", "user@example.com", TierPro, "k",
		time.Now().Add(24*time.Hour))

	if err := store.Save(lic); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// Empty must round-trip to empty, not absent.
	if loaded.Metadata == nil || len(loaded.Metadata) != 0 {
		t.Errorf("expected empty metadata map, got %v", loaded.Metadata)
	}
}

func TestStore_Load_NotFound(t *testing.T) {
	store := tempStore(t)
	if _, err := store.Load(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Load_InvalidFormat(t *testing.T) {
	store := tempStore(t)
	if err := os.WriteFile(store.Path(), []byte("not json{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestStore_Load_MissingMetadataDefaultsEmpty(t *testing.T) {
	store := tempStore(t)
	raw := `{"id":"lic-1","email":"u@example.com","tier":"pro","key":"k",
		"issued_at":"2026-01-01T00:00:00Z","expires_at":"2027-01-01T00:00:00Z"}`
	if err := os.WriteFile(store.Path(), []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Metadata == nil {
		t.Error("metadata should default to an empty map on load")
	}
}

func TestStore_Save_CreatesParentDirs(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "cx-terminal", "nested", "license.json"))
	lic := NewLicense("lic-123", "user@example.com", TierPro, "k",
		time.Now().Add(24*time.Hour))

	if err := store.Save(lic); err != nil {
		t.Fatalf("save should create parent directories: %v", err)
	}
	if _, err := os.Stat(store.Path()); err != nil {
		t.Errorf("license file missing after save: %v", err)
	}
}

func TestStore_Save_LeavesNoTempFiles(t *testing.T) {
	store := tempStore(t)
	lic := NewLicense("lic-123", "user@example.com", TierPro, "k",
		time.Now().Add(24*time.Hour))

	if err := store.Save(lic); err != nil {
		t.Fatalf("save: %v", err)
	}
	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "license.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only license.json, found %v", names)
	}
}

func TestStore_Save_Overwrites(t *testing.T) {
	store := tempStore(t)
	lic := NewLicense("lic-1", "user@example.com", TierPro, "k",
		time.Now().Add(24*time.Hour))
	if err := store.Save(lic); err != nil {
		t.Fatalf("save: %v", err)
	}

	lic.Tier = TierTeam
	if err := store.Save(lic); err != nil {
		t.Fatalf("second save: %v", err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Tier != TierTeam {
		t.Errorf("expected overwritten tier team, got %s", loaded.Tier)
	}
}

func TestStore_Delete_Idempotent(t *testing.T) {
	store := tempStore(t)

	// Removing a file that never existed is not an error.
	if err := store.Delete(); err != nil {
		t.Errorf("delete of missing file: %v", err)
	}

	lic := NewLicense("lic-123", "user@example.com", TierPro, "k",
		time.Now().Add(24*time.Hour))
	if err := store.Save(lic); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(); err != nil {
		t.Errorf("delete: %v", err)
	}
	if _, err := os.Stat(store.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Error("license file should be gone after delete")
	}
	if err := store.Delete(); err != nil {
		t.Errorf("repeated delete: %v", err)
	}
}
