package device

import (
	"strings"

	"voicedecoder/internal/services"
)

const (
	defaultNvidiaSMI = "nvidia-smi"
	defaultPCIRoot   = "/sys/bus/pci/devices"
	nvidiaVendorID   = "0x10de"
	// PCI base class 0x03 covers display controllers (VGA and 3D).
	displayClassPrefix = "0x03"
)

// SystemProber inspects the host it runs on. The Probe method is implemented
// per platform.
type SystemProber struct {
	nvidiaSMI string
	pciRoot   string
	runner    services.CommandRunner
}

// SystemProberOption customizes a SystemProber.
type SystemProberOption func(*SystemProber)

// WithCommandRunner replaces the process runner (for testing).
func WithCommandRunner(runner services.CommandRunner) SystemProberOption {
	return func(p *SystemProber) {
		p.runner = runner
	}
}

// WithPCIRoot overrides the sysfs PCI device directory (for testing).
func WithPCIRoot(root string) SystemProberOption {
	return func(p *SystemProber) {
		p.pciRoot = root
	}
}

// NewSystemProber builds a prober that uses nvidiaSMI to query CUDA devices.
func NewSystemProber(nvidiaSMI string, opts ...SystemProberOption) *SystemProber {
	nvidiaSMI = strings.TrimSpace(nvidiaSMI)
	if nvidiaSMI == "" {
		nvidiaSMI = defaultNvidiaSMI
	}
	p := &SystemProber{
		nvidiaSMI: nvidiaSMI,
		pciRoot:   defaultPCIRoot,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.runner = services.RunnerOrDefault(p.runner)
	return p
}

// countGPUs counts "GPU n: ..." lines in `nvidia-smi -L` output.
func countGPUs(output []byte) int {
	count := 0
	for _, line := range strings.Split(string(output), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "GPU ") {
			count++
		}
	}
	return count
}
