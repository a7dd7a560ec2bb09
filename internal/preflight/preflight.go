package preflight

import (
	"context"
	"fmt"
	"strings"

	"voicedecoder/internal/config"
	"voicedecoder/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional,omitempty"`
	Detail   string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckReadableDirectory("Model directory", cfg.Paths.ModelDir),
	}
	if cfg.Paths.LogDir != "" && cfg.Paths.LogDir != cfg.Paths.StateDir {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	results = append(results, CheckTools(ctx, cfg)...)
	return results
}

// CheckTools reports one result per configured executable.
func CheckTools(_ context.Context, cfg *config.Config) []Result {
	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		detail := status.Command
		if !status.Available {
			detail = status.Detail
			if status.Optional {
				detail += " (optional)"
			}
		}
		results = append(results, Result{
			Name:     status.Name,
			Passed:   status.Available,
			Optional: status.Optional,
			Detail:   detail,
		})
	}
	return results
}

// Failures returns the names of failed required checks.
func Failures(results []Result) []string {
	var failed []string
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r.Name)
		}
	}
	return failed
}

// Summary renders failed required checks as a single line, or "" when all pass.
func Summary(results []Result) string {
	failed := Failures(results)
	if len(failed) == 0 {
		return ""
	}
	return fmt.Sprintf("preflight failed: %s", strings.Join(failed, ", "))
}
