// Package config validates command line input for the proxy before any file is
// read or socket bound.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"os"

	"github.com/go-playground/validator/v10"
)

// Defaults applied when the corresponding flag is omitted.
const (
	DefaultListenAddr          = "127.0.0.1:23294"
	DefaultWeb3GatewayURL      = "http://localhost:8545"
	DefaultMaxRequestSizeBytes = 1024 * 1024
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ServeArgs holds the raw serve flags.
type ServeArgs struct {
	ListenAddr          string
	Web3GatewayURL      string
	MaxRequestSizeBytes int64
	RuntimePublicKey    string
	TLSSecretKeyPath    string
	TLSCertPath         string
}

// Serve is the validated serve configuration.
type Serve struct {
	ListenAddr          netip.AddrPort
	UpstreamURL         *url.URL
	MaxRequestSizeBytes int64
	RuntimePublicKey    RuntimePublicKey
	TLSCertPath         string
	TLSSecretKeyPath    string
}

// TLSEnabled reports whether the proxy terminates TLS.
func (s *Serve) TLSEnabled() bool {
	return s.TLSCertPath != ""
}

// ParseServe validates args and returns the first failing rule as a
// *ValidationError. When attested is set the TLS secret key comes from attested
// provisioning, so no secret key path may be given and a certificate path stands
// on its own.
func ParseServe(args ServeArgs, attested bool) (*Serve, error) {
	listenAddr, err := netip.ParseAddrPort(args.ListenAddr)
	if err != nil {
		return nil, invalid("listen-addr", fmt.Errorf("%w: %w", ErrInvalidListenAddr, err))
	}

	upstream, err := parseUpstreamURL(args.Web3GatewayURL)
	if err != nil {
		return nil, invalid("web3-gateway-url", err)
	}

	if err := validate.Var(args.MaxRequestSizeBytes, "gt=0"); err != nil {
		return nil, invalid("max-request-size-bytes", ErrInvalidMaxRequestSize)
	}

	if args.RuntimePublicKey == "" {
		return nil, invalid("runtime-public-key", ErrMissingValue)
	}
	runtimeKey, err := ParseRuntimePublicKey(args.RuntimePublicKey)
	if err != nil {
		return nil, invalid("runtime-public-key", err)
	}

	if err := checkTLSPaths(args.TLSCertPath, args.TLSSecretKeyPath, attested); err != nil {
		return nil, err
	}

	return &Serve{
		ListenAddr:          listenAddr,
		UpstreamURL:         upstream,
		MaxRequestSizeBytes: args.MaxRequestSizeBytes,
		RuntimePublicKey:    runtimeKey,
		TLSCertPath:         args.TLSCertPath,
		TLSSecretKeyPath:    args.TLSSecretKeyPath,
	}, nil
}

// GenCSRArgs holds the raw gen-csr flags.
type GenCSRArgs struct {
	TLSSecretKeyPath string
	Subject          string
	CSRPath          string
}

// ValidateGenCSR checks the gen-csr flags. The subject is only checked for
// presence; its syntax is left to the CSR signer.
func ValidateGenCSR(args GenCSRArgs, attested bool) error {
	if !attested {
		if args.TLSSecretKeyPath == "" {
			return invalid("tls-secret-key-path", ErrMissingValue)
		}
		if err := ensureFileExists(args.TLSSecretKeyPath); err != nil {
			return invalid("tls-secret-key-path", err)
		}
	}
	if args.Subject == "" {
		return invalid("subject", ErrMissingValue)
	}
	if args.CSRPath == "" {
		return invalid("csr-path", ErrMissingValue)
	}
	return nil
}

func parseUpstreamURL(raw string) (*url.URL, error) {
	if err := validate.Var(raw, "required,url"); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUpstreamURL, raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUpstreamURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidUpstreamURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidUpstreamURL)
	}
	return u, nil
}

// checkTLSPaths enforces that a certificate and secret key path are given
// together, then that every supplied path exists.
func checkTLSPaths(certPath, keyPath string, attested bool) error {
	if attested {
		if keyPath != "" {
			return invalid("tls-secret-key-path", errors.New("secret keys are provisioned by attestation in this build"))
		}
	} else {
		switch {
		case certPath != "" && keyPath == "":
			return invalid("tls-cert-path", fmt.Errorf("%w: --tls-secret-key-path", ErrMissingDependency))
		case keyPath != "" && certPath == "":
			return invalid("tls-secret-key-path", fmt.Errorf("%w: --tls-cert-path", ErrMissingDependency))
		}
	}

	if keyPath != "" {
		if err := ensureFileExists(keyPath); err != nil {
			return invalid("tls-secret-key-path", err)
		}
	}
	if certPath != "" {
		if err := ensureFileExists(certPath); err != nil {
			return invalid("tls-cert-path", err)
		}
	}
	return nil
}

// ensureFileExists stats path without opening it.
func ensureFileExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFileNotFound, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}
	return nil
}
