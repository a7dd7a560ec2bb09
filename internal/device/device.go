package device

import "strings"

// Kind identifies a compute device in the form the speech model expects.
type Kind string

const (
	// KindCUDA is the primary accelerator (discrete NVIDIA GPU).
	KindCUDA Kind = "cuda"
	// KindMPS is the secondary accelerator (Apple unified-memory GPU).
	KindMPS Kind = "mps"
	// KindCPU is the fallback when no usable accelerator exists.
	KindCPU Kind = "cpu"
)

// AdvisoryUnusedAccelerator is attached to a CPU choice when accelerator
// hardware is visible but could not be used (driver or runtime mismatch).
const AdvisoryUnusedAccelerator = "accelerator present but unused"

// Accelerated reports whether the kind offloads inference from the CPU.
func (k Kind) Accelerated() bool {
	return k == KindCUDA || k == KindMPS
}

func (k Kind) String() string {
	return string(k)
}

// Choice is the outcome of a device selection.
type Choice struct {
	Kind     Kind   `json:"kind"`
	Advisory string `json:"advisory,omitempty"`
}

// Accelerated reports whether the chosen device is an accelerator.
func (c Choice) Accelerated() bool {
	return c.Kind.Accelerated()
}

// Label renders the choice for humans, e.g. "CUDA" or
// "CPU (accelerator present but unused)".
func (c Choice) Label() string {
	kind := c.Kind
	if kind == "" {
		kind = KindCPU
	}
	label := strings.ToUpper(string(kind))
	if c.Advisory != "" {
		label += " (" + c.Advisory + ")"
	}
	return label
}
