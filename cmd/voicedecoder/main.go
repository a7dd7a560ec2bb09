package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"voicedecoder/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		var silent *silentError
		if !errors.Is(err, context.Canceled) && !errors.As(err, &silent) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(services.ExitCode(err))
	}
}

// silentError carries an exit status for failures the command has already
// reported on its own output.
type silentError struct {
	err error
}

func (e *silentError) Error() string { return e.err.Error() }

func (e *silentError) Unwrap() error { return e.err }

func silent(err error) error {
	if err == nil {
		return nil
	}
	return &silentError{err: err}
}
