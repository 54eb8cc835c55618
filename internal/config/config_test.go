package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))
	return path
}

func validServeArgs() ServeArgs {
	return ServeArgs{
		ListenAddr:          DefaultListenAddr,
		Web3GatewayURL:      DefaultWeb3GatewayURL,
		MaxRequestSizeBytes: DefaultMaxRequestSizeBytes,
		RuntimePublicKey:    testRuntimeKey,
	}
}

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, field, verr.Field)
}

func TestParseServe_defaults(t *testing.T) {
	cfg, err := ParseServe(validServeArgs(), false)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:23294", cfg.ListenAddr.String())
	assert.Equal(t, "http://localhost:8545", cfg.UpstreamURL.String())
	assert.Equal(t, int64(1048576), cfg.MaxRequestSizeBytes)
	assert.False(t, cfg.TLSEnabled())
}

func TestParseServe_tlsPairing(t *testing.T) {
	cert := writeFile(t, "cert.pem")
	key := writeFile(t, "key.pem")

	tests := []struct {
		name      string
		certPath  string
		keyPath   string
		wantField string
	}{
		{name: "neither"},
		{name: "both", certPath: cert, keyPath: key},
		{name: "cert only", certPath: cert, wantField: "tls-cert-path"},
		{name: "key only", keyPath: key, wantField: "tls-secret-key-path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := validServeArgs()
			args.TLSCertPath = tt.certPath
			args.TLSSecretKeyPath = tt.keyPath

			cfg, err := ParseServe(args, false)
			if tt.wantField != "" {
				requireField(t, err, tt.wantField)
				require.ErrorIs(t, err, ErrMissingDependency)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.certPath != "", cfg.TLSEnabled())
		})
	}
}

func TestParseServe_attested(t *testing.T) {
	cert := writeFile(t, "cert.pem")

	t.Run("cert alone is enough", func(t *testing.T) {
		args := validServeArgs()
		args.TLSCertPath = cert

		cfg, err := ParseServe(args, true)
		require.NoError(t, err)
		require.True(t, cfg.TLSEnabled())
	})

	t.Run("secret key path rejected", func(t *testing.T) {
		args := validServeArgs()
		args.TLSCertPath = cert
		args.TLSSecretKeyPath = writeFile(t, "key.pem")

		_, err := ParseServe(args, true)
		requireField(t, err, "tls-secret-key-path")
	})
}

func TestParseServe_missingFiles(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.pem")

	args := validServeArgs()
	args.TLSCertPath = writeFile(t, "cert.pem")
	args.TLSSecretKeyPath = missing

	_, err := ParseServe(args, false)
	requireField(t, err, "tls-secret-key-path")
	require.ErrorIs(t, err, ErrFileNotFound)
	require.ErrorIs(t, err, fs.ErrNotExist)

	args.TLSSecretKeyPath = writeFile(t, "key.pem")
	args.TLSCertPath = missing

	_, err = ParseServe(args, false)
	requireField(t, err, "tls-cert-path")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestParseServe_directoryIsNotAFile(t *testing.T) {
	args := validServeArgs()
	args.TLSCertPath = t.TempDir()
	args.TLSSecretKeyPath = writeFile(t, "key.pem")

	_, err := ParseServe(args, false)
	requireField(t, err, "tls-cert-path")
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestParseServe_fields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*ServeArgs)
		wantField string
		wantErr   error
	}{
		{
			name:      "hostname listen address",
			mutate:    func(a *ServeArgs) { a.ListenAddr = "localhost:23294" },
			wantField: "listen-addr",
			wantErr:   ErrInvalidListenAddr,
		},
		{
			name:      "listen address without port",
			mutate:    func(a *ServeArgs) { a.ListenAddr = "127.0.0.1" },
			wantField: "listen-addr",
			wantErr:   ErrInvalidListenAddr,
		},
		{
			name:   "ipv6 listen address",
			mutate: func(a *ServeArgs) { a.ListenAddr = "[::1]:8080" },
		},
		{
			name:      "upstream not a url",
			mutate:    func(a *ServeArgs) { a.Web3GatewayURL = "not a url" },
			wantField: "web3-gateway-url",
			wantErr:   ErrInvalidUpstreamURL,
		},
		{
			name:      "upstream wrong scheme",
			mutate:    func(a *ServeArgs) { a.Web3GatewayURL = "ftp://localhost:8545" },
			wantField: "web3-gateway-url",
			wantErr:   ErrInvalidUpstreamURL,
		},
		{
			name:   "upstream https with path",
			mutate: func(a *ServeArgs) { a.Web3GatewayURL = "https://testnet.sapphire.example/rpc" },
		},
		{
			name:      "zero request size",
			mutate:    func(a *ServeArgs) { a.MaxRequestSizeBytes = 0 },
			wantField: "max-request-size-bytes",
			wantErr:   ErrInvalidMaxRequestSize,
		},
		{
			name:      "missing runtime key",
			mutate:    func(a *ServeArgs) { a.RuntimePublicKey = "" },
			wantField: "runtime-public-key",
			wantErr:   ErrMissingValue,
		},
		{
			name:      "short runtime key",
			mutate:    func(a *ServeArgs) { a.RuntimePublicKey = testRuntimeKey[:62] },
			wantField: "runtime-public-key",
			wantErr:   ErrInvalidKeyLength,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := validServeArgs()
			tt.mutate(&args)

			_, err := ParseServe(args, false)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			requireField(t, err, tt.wantField)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateGenCSR(t *testing.T) {
	key := writeFile(t, "key.pem")
	missing := filepath.Join(t.TempDir(), "missing.pem")

	tests := []struct {
		name      string
		args      GenCSRArgs
		attested  bool
		wantField string
	}{
		{
			name: "valid",
			args: GenCSRArgs{TLSSecretKeyPath: key, Subject: "CN=proxy", CSRPath: "out.csr"},
		},
		{
			name:      "missing key file",
			args:      GenCSRArgs{TLSSecretKeyPath: missing, Subject: "CN=proxy", CSRPath: "out.csr"},
			wantField: "tls-secret-key-path",
		},
		{
			name:      "no key path",
			args:      GenCSRArgs{Subject: "CN=proxy", CSRPath: "out.csr"},
			wantField: "tls-secret-key-path",
		},
		{
			name:     "attested build needs no key path",
			args:     GenCSRArgs{Subject: "CN=proxy", CSRPath: "out.csr"},
			attested: true,
		},
		{
			name:      "empty subject",
			args:      GenCSRArgs{TLSSecretKeyPath: key, CSRPath: "out.csr"},
			wantField: "subject",
		},
		{
			name:      "empty output path",
			args:      GenCSRArgs{TLSSecretKeyPath: key, Subject: "CN=proxy"},
			wantField: "csr-path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGenCSR(tt.args, tt.attested)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			requireField(t, err, tt.wantField)
		})
	}
}

func TestValidationError_message(t *testing.T) {
	err := invalid("runtime-public-key", errors.New("boom"))
	require.EqualError(t, err, "invalid value for --runtime-public-key: boom")
}
