package device

import (
	"context"
	"fmt"
	"log/slog"

	"voicedecoder/internal/logging"
)

// Capability is the best accelerator class a platform probe found.
type Capability int

const (
	CapabilityNone Capability = iota
	CapabilityPrimary
	CapabilitySecondary
)

func (c Capability) String() string {
	switch c {
	case CapabilityPrimary:
		return "primary"
	case CapabilitySecondary:
		return "secondary"
	default:
		return "none"
	}
}

// ProbeResult reports what a platform probe saw. HardwarePresent is true when
// accelerator hardware is enumerable, whether or not it is usable.
type ProbeResult struct {
	Capability      Capability
	HardwarePresent bool
}

// Prober detects accelerator capabilities on the current platform.
type Prober interface {
	Probe(ctx context.Context) (ProbeResult, error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context) (ProbeResult, error)

// Probe calls f(ctx).
func (f ProberFunc) Probe(ctx context.Context) (ProbeResult, error) {
	return f(ctx)
}

// Selector chooses a device from fresh probe results on every call.
type Selector struct {
	prober Prober
	logger *slog.Logger
}

// NewSelector builds a selector around prober. A nil prober always yields the CPU.
func NewSelector(prober Prober, logger *slog.Logger) *Selector {
	return &Selector{
		prober: prober,
		logger: logging.NewComponentLogger(logger, "device"),
	}
}

// Select returns the best usable device. It never returns an error: probe
// failures and panics fall back to a plain CPU choice.
func (s *Selector) Select(ctx context.Context) (choice Choice) {
	choice = Choice{Kind: KindCPU}
	if s == nil || s.prober == nil {
		return choice
	}
	defer func() {
		if r := recover(); r != nil {
			logging.WarnWithContext(s.logger, "device probe panicked; using cpu", "device_probe_failed",
				logging.String("panic", fmt.Sprint(r)),
				logging.String(logging.FieldImpact, "inference runs on the cpu"),
			)
			choice = Choice{Kind: KindCPU}
		}
	}()

	result, err := s.prober.Probe(ctx)
	if err != nil {
		logging.WarnWithContext(s.logger, "device probe failed; using cpu", "device_probe_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "inference runs on the cpu"),
		)
		return Choice{Kind: KindCPU}
	}

	switch {
	case result.Capability == CapabilityPrimary:
		choice = Choice{Kind: KindCUDA}
	case result.Capability == CapabilitySecondary:
		choice = Choice{Kind: KindMPS}
	case result.HardwarePresent:
		choice = Choice{Kind: KindCPU, Advisory: AdvisoryUnusedAccelerator}
		logging.WarnWithContext(s.logger, "accelerator detected but not usable", "device_unused_accelerator",
			logging.String(logging.FieldErrorHint, "check GPU drivers and CUDA runtime"),
			logging.String(logging.FieldImpact, "inference runs on the cpu"),
		)
	default:
		choice = Choice{Kind: KindCPU}
	}
	s.logger.Debug("device selected",
		logging.String("device", choice.Kind.String()),
		logging.String("capability", result.Capability.String()),
		logging.Bool("hardware_present", result.HardwarePresent),
	)
	return choice
}
