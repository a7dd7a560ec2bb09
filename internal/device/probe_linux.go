//go:build linux

package device

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Probe reports CUDA as the primary capability when nvidia-smi lists at least
// one GPU, and flags NVIDIA display hardware found on the PCI bus so an
// unusable GPU can be told apart from no GPU at all.
func (p *SystemProber) Probe(ctx context.Context) (ProbeResult, error) {
	out, smiErr := p.runner(ctx, p.nvidiaSMI, "-L")
	if smiErr == nil && countGPUs(out.Stdout) > 0 {
		return ProbeResult{Capability: CapabilityPrimary, HardwarePresent: true}, nil
	}

	present, err := nvidiaOnPCIBus(p.pciRoot)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("scan pci devices: %w", err)
	}
	return ProbeResult{Capability: CapabilityNone, HardwarePresent: present}, nil
}

func nvidiaOnPCIBus(root string) (bool, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	for _, entry := range entries {
		dir := filepath.Join(root, entry.Name())
		vendor, err := readSysfsValue(filepath.Join(dir, "vendor"))
		if err != nil || vendor != nvidiaVendorID {
			continue
		}
		class, err := readSysfsValue(filepath.Join(dir, "class"))
		if err != nil {
			continue
		}
		if strings.HasPrefix(class, displayClassPrefix) {
			return true, nil
		}
	}
	return false, nil
}

func readSysfsValue(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(string(data))), nil
}
