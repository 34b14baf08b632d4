package cxlicense

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLinuxProbe_MachineID(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "etc/machine-id", "abc123def456\n")

	id, ok := linuxProbe{root: root}.machineID()
	if !ok || id != "abc123def456" {
		t.Errorf("expected abc123def456, got %q (ok=%v)", id, ok)
	}
}

func TestLinuxProbe_MachineID_DbusFallback(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "var/lib/dbus/machine-id", "dbus-machine-id\n")

	id, ok := linuxProbe{root: root}.machineID()
	if !ok || id != "dbus-machine-id" {
		t.Errorf("expected dbus fallback, got %q (ok=%v)", id, ok)
	}
}

func TestLinuxProbe_MachineID_Missing(t *testing.T) {
	if _, ok := (linuxProbe{root: t.TempDir()}).machineID(); ok {
		t.Error("expected no machine ID from empty root")
	}
}

func TestLinuxProbe_MACAddress(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "sys/class/net/lo/address", "00:00:00:00:00:00\n")
	writeFixture(t, root, "sys/class/net/eth0/address", "aa:bb:cc:dd:ee:ff\n")

	mac, ok := linuxProbe{root: root}.macAddress()
	if !ok || mac != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("expected eth0 address, got %q (ok=%v)", mac, ok)
	}
}

func TestLinuxProbe_MACAddress_SkipsZero(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "sys/class/net/dummy0/address", "00:00:00:00:00:00\n")
	writeFixture(t, root, "sys/class/net/wlan0/address", "11:22:33:44:55:66\n")

	mac, ok := linuxProbe{root: root}.macAddress()
	if !ok || mac != "11:22:33:44:55:66" {
		t.Errorf("expected wlan0 address, got %q (ok=%v)", mac, ok)
	}
}

func TestLinuxProbe_CPUModel(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "proc/cpuinfo",
		"processor\t: 0\nvendor_id\t: GenuineIntel\nmodel name\t: Intel(R) Core(TM) i7-9750H CPU @ 2.60GHz\n")

	cpu, ok := linuxProbe{root: root}.cpuModel()
	if !ok || cpu != "Intel(R) Core(TM) i7-9750H CPU @ 2.60GHz" {
		t.Errorf("unexpected CPU model %q (ok=%v)", cpu, ok)
	}
}

func stubRunner(outputs map[string]string) commandRunner {
	return func(name string, args ...string) ([]byte, error) {
		out, ok := outputs[name]
		if !ok {
			return nil, errors.New("command not stubbed")
		}
		return []byte(out), nil
	}
}

func TestDarwinProbe_MachineID(t *testing.T) {
	run := stubRunner(map[string]string{
		"ioreg": `  "IOPlatformSerialNumber" = "C02XXXXX"` + "\n" +
			`  "IOPlatformUUID" = "12345678-ABCD-ABCD-ABCD-1234567890AB"` + "\n",
	})

	id, ok := darwinProbe{run: run}.machineID()
	if !ok || id != "12345678-ABCD-ABCD-ABCD-1234567890AB" {
		t.Errorf("expected platform UUID, got %q (ok=%v)", id, ok)
	}
}

func TestDarwinProbe_MachineID_CommandFails(t *testing.T) {
	failing := func(string, ...string) ([]byte, error) { return nil, errors.New("exec failed") }
	if _, ok := (darwinProbe{run: failing}).machineID(); ok {
		t.Error("expected no machine ID when ioreg fails")
	}
}

func TestDarwinProbe_MACAddress(t *testing.T) {
	run := stubRunner(map[string]string{
		"networksetup": "Hardware Port: Wi-Fi\nDevice: en0\nEthernet Address: a1:b2:c3:d4:e5:f6\n",
	})

	mac, ok := darwinProbe{run: run}.macAddress()
	if !ok || mac != "a1:b2:c3:d4:e5:f6" {
		t.Errorf("expected parsed address, got %q (ok=%v)", mac, ok)
	}
}

func TestDarwinProbe_CPUModel(t *testing.T) {
	run := stubRunner(map[string]string{
		"sysctl": "Apple M2 Pro\n",
	})

	cpu, ok := darwinProbe{run: run}.cpuModel()
	if !ok || cpu != "Apple M2 Pro" {
		t.Errorf("expected Apple M2 Pro, got %q (ok=%v)", cpu, ok)
	}
}

func TestProbeForOS_Selection(t *testing.T) {
	if _, ok := probeForOS("linux").(linuxProbe); !ok {
		t.Error("expected linuxProbe for linux")
	}
	if _, ok := probeForOS("darwin").(darwinProbe); !ok {
		t.Error("expected darwinProbe for darwin")
	}
	if _, ok := probeForOS("plan9").(genericProbe); !ok {
		t.Error("expected genericProbe for unknown platforms")
	}
}

func TestGenerateFromProbe_DegradesToFallbacks(t *testing.T) {
	fp := generateFingerprint(genericProbe{})
	if fp.MachineID == "" {
		t.Fatal("machine ID must resolve even with an empty probe")
	}
	if fp.CPUID != "" {
		t.Error("generic probe should not report a CPU ID")
	}
}
