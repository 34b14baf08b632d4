package cxlicense

// activateRequest is the body for POST {base}/activate.
type activateRequest struct {
	LicenseKey          string `json:"license_key"`
	HardwareFingerprint string `json:"hardware_fingerprint"`
}

// validateRequest is the body for POST {base}/validate and
// POST {base}/deactivate.
type validateRequest struct {
	LicenseID           string `json:"license_id"`
	LicenseKey          string `json:"license_key"`
	HardwareFingerprint string `json:"hardware_fingerprint"`
}
