package cxlicense

import "errors"

// Sentinel errors for local license state.
var (
	ErrNotFound           = errors.New("license file not found")
	ErrInvalidFormat      = errors.New("invalid license format")
	ErrExpired            = errors.New("license has expired")
	ErrHardwareMismatch   = errors.New("license is bound to different hardware")
	ErrGracePeriodExpired = errors.New("offline grace period has expired")
)

// Sentinel errors for the online activation protocol.
var (
	ErrInvalidKey        = errors.New("invalid license key")
	ErrRevoked           = errors.New("license has been revoked")
	ErrServerUnreachable = errors.New("license server is unreachable")
	ErrNetwork           = errors.New("network error")
)

// ErrIO covers filesystem failures while reading or writing the license file.
// The underlying error is attached by wrapping, so errors.Is(err, ErrIO)
// still matches while the detail stays available in the message.
var ErrIO = errors.New("license storage error")
