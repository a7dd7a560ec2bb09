//go:build !linux && !darwin

package device

import "context"

// Probe finds no accelerators on platforms without a dedicated probe.
func (p *SystemProber) Probe(ctx context.Context) (ProbeResult, error) {
	return ProbeResult{}, nil
}
