package preflight

import (
	"context"

	"voicedecoder/internal/device"
)

// DeviceSelector picks the compute device for inference.
type DeviceSelector interface {
	Select(ctx context.Context) device.Choice
}

// CheckDevice reports the device a run would use right now. It always passes:
// CPU is a valid target, but the advisory is surfaced when hardware goes unused.
func CheckDevice(ctx context.Context, selector DeviceSelector) Result {
	const name = "Compute device"
	if selector == nil {
		return Result{Name: name, Passed: true, Detail: device.Choice{Kind: device.KindCPU}.Label()}
	}
	choice := selector.Select(ctx)
	return Result{Name: name, Passed: true, Detail: choice.Label()}
}
