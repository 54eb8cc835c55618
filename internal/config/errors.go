package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidListenAddr indicates the listen address is not an ip:port pair
	ErrInvalidListenAddr = errors.New("invalid listen address")
	// ErrInvalidUpstreamURL indicates the web3 gateway URL is malformed
	ErrInvalidUpstreamURL = errors.New("invalid web3 gateway URL")
	// ErrInvalidMaxRequestSize indicates a non-positive request size limit
	ErrInvalidMaxRequestSize = errors.New("max request size must be greater than zero")
	// ErrInvalidKeyLength indicates the runtime public key did not decode to 32 bytes
	ErrInvalidKeyLength = errors.New("invalid runtime public key length")
	// ErrMissingDependency indicates a flag was supplied without the flag it requires
	ErrMissingDependency = errors.New("missing required companion flag")
	// ErrMissingValue indicates a required flag was empty
	ErrMissingValue = errors.New("value is required")
	// ErrFileNotFound indicates a path did not reference an existing file
	ErrFileNotFound = errors.New("file does not exist")
)

// ValidationError identifies the command line field that failed validation.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for --%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}
