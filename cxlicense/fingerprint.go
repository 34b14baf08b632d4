package cxlicense

import (
	"crypto/sha256"
	"fmt"
	"os"
	"runtime"
	"strings"
)

// HardwareFingerprint identifies the current machine for license binding.
// All hashed fields are SHA-256 digests of the raw identifiers; the raw
// values are never persisted or sent over the wire. SHA-256 is part of the
// format: the same machine must produce the same fingerprint across
// processes and SDK versions.
type HardwareFingerprint struct {
	// MachineID is derived from a platform machine identifier and always
	// resolves, falling back to the hostname when no probe succeeds.
	MachineID string `json:"machine_id"`
	// MACHash is the digest of a non-loopback interface address, empty when
	// no usable interface was found.
	MACHash string `json:"mac_hash,omitempty"`
	// OSID is "GOOS-GOARCH-family".
	OSID string `json:"os_id"`
	// CPUID is the digest of the CPU model string, empty when unavailable.
	CPUID string `json:"cpu_id,omitempty"`
}

// GenerateFingerprint probes the current machine and never fails: each probe
// degrades to a fallback, and MachineID always resolves.
//
// The CX_MACHINE_ID environment variable overrides the machine identifier,
// for containers and other environments without stable hardware identity.
func GenerateFingerprint() HardwareFingerprint {
	return generateFingerprint(probeForOS(runtime.GOOS))
}

func generateFingerprint(p hardwareProbe) HardwareFingerprint {
	fp := HardwareFingerprint{
		MachineID: machineID(p),
		OSID:      osID(),
	}
	if mac, ok := p.macAddress(); ok {
		fp.MACHash = hashIdentifier(mac)
	}
	if cpu, ok := p.cpuModel(); ok {
		fp.CPUID = hashIdentifier(cpu)
	}
	return fp
}

func machineID(p hardwareProbe) string {
	if id := os.Getenv("CX_MACHINE_ID"); id != "" {
		return hashIdentifier(id)
	}
	if id, ok := p.machineID(); ok {
		return hashIdentifier(id)
	}
	return fallbackMachineID()
}

// fallbackMachineID is the final rung of the machine-id probe chain:
// the hostname stripped to alphanumerics.
func fallbackMachineID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	var b strings.Builder
	for _, r := range hostname {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

func osID() string {
	family := "unix"
	switch runtime.GOOS {
	case "windows":
		family = "windows"
	case "js", "wasip1":
		family = "wasm"
	}
	return fmt.Sprintf("%s-%s-%s", runtime.GOOS, runtime.GOARCH, family)
}

func hashIdentifier(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return fmt.Sprintf("%x", sum)
}

// Matches compares two fingerprints. MachineID and OSID must be equal;
// MACHash is compared only when both sides have one, so a machine whose
// interface probe failed still matches itself. CPUID is informational and
// never part of the comparison.
func (fp HardwareFingerprint) Matches(other HardwareFingerprint) bool {
	if fp.MachineID != other.MachineID {
		return false
	}
	if fp.OSID != other.OSID {
		return false
	}
	if fp.MACHash != "" && other.MACHash != "" && fp.MACHash != other.MACHash {
		return false
	}
	return true
}

// String is the canonical form used for equality against a license's
// hardware_fingerprint field and as the binding claim sent to the server.
func (fp HardwareFingerprint) String() string {
	mac := fp.MACHash
	if mac == "" {
		mac = "none"
	}
	return fmt.Sprintf("%s-%s-%s", fp.MachineID, fp.OSID, mac)
}
