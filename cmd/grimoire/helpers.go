// Shared helpers for grimoire CLI commands.
package main

import (
	"errors"
	"fmt"

	"github.com/hearthloom/grimoire/internal/store"
	"github.com/hearthloom/grimoire/pkg/types"
)

// systemError marks failures of the environment rather than the input:
// store attach failures, query errors, cache write errors. main maps
// these to exit code 2.
type systemError struct {
	err error
}

func (e *systemError) Error() string { return e.err.Error() }

func (e *systemError) Unwrap() error { return e.err }

// sysErr wraps an error as a system error.
func sysErr(err error) error {
	if err == nil {
		return nil
	}
	return &systemError{err: err}
}

// sysErrf formats and wraps a system error.
func sysErrf(format string, args ...any) error {
	return &systemError{err: fmt.Errorf(format, args...)}
}

// isSystemError reports whether err carries a systemError anywhere in
// its chain.
func isSystemError(err error) bool {
	var se *systemError
	return errors.As(err, &se)
}

// attachBackend resolves the data directory, builds a backend config and
// attaches the store. Callers must Detach when done.
func attachBackend() (*store.Backend, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, sysErrf("resolve data dir: %w", err)
	}

	config := types.Config{
		Backend: configBackend,
		DataDir: dataDir,
	}

	backend := store.NewBackend()
	if err := backend.Attach(config); err != nil {
		return nil, sysErrf("attach store: %w", err)
	}

	return backend, nil
}
