// Package device picks the compute device the speech model runs on.
//
// Hardware discovery sits behind the Prober interface with one implementation
// per target platform: NVIDIA GPUs on Linux (nvidia-smi plus a sysfs PCI scan)
// and Apple Silicon on macOS (hw.optional.arm64). Selector turns a probe into a
// Choice and never fails outward: any probe error or panic degrades to the CPU
// so the caller can always proceed.
package device
