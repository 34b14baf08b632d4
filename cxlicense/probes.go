package cxlicense

import (
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// hardwareProbe is one platform's way of reading raw hardware identifiers.
// Every method reports ok=false instead of failing; the caller degrades to
// the next fallback. Implementations are selected once per process by GOOS,
// not by build tags, so the full probe chain stays compilable and testable
// on every platform.
type hardwareProbe interface {
	machineID() (string, bool)
	macAddress() (string, bool)
	cpuModel() (string, bool)
}

// commandRunner abstracts process execution for probes that shell out to OS
// utilities. Tests substitute canned output.
type commandRunner func(name string, args ...string) ([]byte, error)

func execRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

func probeForOS(goos string) hardwareProbe {
	switch goos {
	case "linux":
		return linuxProbe{root: "/"}
	case "darwin":
		return darwinProbe{run: execRunner}
	default:
		return genericProbe{}
	}
}

// linuxProbe reads identifiers from the usual pseudo-filesystems. The root
// field exists so tests can point it at a fixture tree.
type linuxProbe struct {
	root string
}

func (p linuxProbe) machineID() (string, bool) {
	for _, path := range []string{"etc/machine-id", "var/lib/dbus/machine-id"} {
		if data, err := os.ReadFile(filepath.Join(p.root, path)); err == nil {
			if id := strings.TrimSpace(string(data)); id != "" {
				return id, true
			}
		}
	}
	return "", false
}

func (p linuxProbe) macAddress() (string, bool) {
	entries, err := os.ReadDir(filepath.Join(p.root, "sys/class/net"))
	if err != nil {
		return firstInterfaceMAC()
	}
	for _, entry := range entries {
		if entry.Name() == "lo" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(p.root, "sys/class/net", entry.Name(), "address"))
		if err != nil {
			continue
		}
		mac := strings.TrimSpace(string(data))
		if mac != "" && mac != "00:00:00:00:00:00" {
			return mac, true
		}
	}
	return firstInterfaceMAC()
}

func (p linuxProbe) cpuModel() (string, bool) {
	data, err := os.ReadFile(filepath.Join(p.root, "proc/cpuinfo"))
	if err != nil {
		return "", false
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "model name") {
			continue
		}
		if _, model, ok := strings.Cut(line, ":"); ok {
			return strings.TrimSpace(model), true
		}
	}
	return "", false
}

// darwinProbe shells out to the standard macOS utilities.
type darwinProbe struct {
	run commandRunner
}

func (p darwinProbe) machineID() (string, bool) {
	out, err := p.run("ioreg", "-rd1", "-c", "IOPlatformExpertDevice")
	if err != nil {
		return "", false
	}
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.Contains(line, "IOPlatformUUID") {
			continue
		}
		parts := strings.Split(line, `"`)
		if len(parts) > 3 && parts[3] != "" {
			return parts[3], true
		}
	}
	return "", false
}

func (p darwinProbe) macAddress() (string, bool) {
	out, err := p.run("networksetup", "-listallhardwareports")
	if err != nil {
		return firstInterfaceMAC()
	}
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.HasPrefix(line, "Ethernet Address:") {
			continue
		}
		mac := strings.TrimSpace(strings.TrimPrefix(line, "Ethernet Address:"))
		if mac != "" && mac != "N/A" {
			return mac, true
		}
	}
	return firstInterfaceMAC()
}

func (p darwinProbe) cpuModel() (string, bool) {
	out, err := p.run("sysctl", "-n", "machdep.cpu.brand_string")
	if err != nil {
		return "", false
	}
	cpu := strings.TrimSpace(string(out))
	return cpu, cpu != ""
}

// genericProbe covers platforms without a dedicated probe: no machine or CPU
// identifier, MAC via the portable interface list.
type genericProbe struct{}

func (genericProbe) machineID() (string, bool)  { return "", false }
func (genericProbe) macAddress() (string, bool) { return firstInterfaceMAC() }
func (genericProbe) cpuModel() (string, bool)   { return "", false }

// firstInterfaceMAC returns the hardware address of the first non-loopback
// interface that has one.
func firstInterfaceMAC() (string, bool) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if mac := iface.HardwareAddr.String(); mac != "" {
			return mac, true
		}
	}
	return "", false
}
