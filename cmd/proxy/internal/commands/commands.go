package commands

import (
	"errors"

	"github.com/wolfeidau/sapphire-proxy/internal/credentials"
)

// ExitFatal is the exit code for conditions the proxy cannot run past.
const ExitFatal = 70

type Globals struct {
	Dev     bool
	Version string
}

// FatalError aborts the process. kong's FatalIfErrorf uses ExitCode so these
// are distinguishable from ordinary validation and I/O failures.
type FatalError struct {
	Msg string
	Err error
}

func (e *FatalError) Error() string {
	return e.Msg + ": " + e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func (e *FatalError) ExitCode() int {
	return ExitFatal
}

// fatalIfUnimplemented turns a missing attested provisioning path into a fatal
// error instead of letting the caller treat it as recoverable.
func fatalIfUnimplemented(err error) error {
	if errors.Is(err, credentials.ErrNotImplemented) {
		return &FatalError{Msg: "cannot obtain TLS secret key", Err: err}
	}
	return err
}
