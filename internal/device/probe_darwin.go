//go:build darwin

package device

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Probe reports the Apple GPU as the secondary capability on Apple Silicon.
// The sysctl is read instead of runtime.GOARCH so an amd64 build running under
// Rosetta still finds the GPU.
func (p *SystemProber) Probe(ctx context.Context) (ProbeResult, error) {
	value, err := unix.SysctlUint32("hw.optional.arm64")
	if err != nil {
		if errors.Is(err, unix.ENOENT) {
			return ProbeResult{}, nil
		}
		return ProbeResult{}, fmt.Errorf("sysctl hw.optional.arm64: %w", err)
	}
	if value == 1 {
		return ProbeResult{Capability: CapabilitySecondary, HardwarePresent: true}, nil
	}
	return ProbeResult{}, nil
}
