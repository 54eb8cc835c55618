//go:build !sgx

package commands

import "github.com/wolfeidau/sapphire-proxy/internal/credentials"

// GenCSRKeyFlags selects the key that signs the CSR.
type GenCSRKeyFlags struct {
	TLSSecretKeyPath string `name:"tls-secret-key-path" short:"k" required:"" type:"path" help:"Path to the SEC1 PEM encoded P-256 (prime256v1) private key used to sign the CSR, e.g. from 'openssl ecparam -genkey -name prime256v1 -noout'."`
}

func (f GenCSRKeyFlags) path() string { return f.TLSSecretKeyPath }

func (f GenCSRKeyFlags) source() credentials.Source {
	return credentials.FilePath(f.TLSSecretKeyPath)
}

// ServeKeyFlags selects the TLS secret key the server presents.
type ServeKeyFlags struct {
	TLSSecretKeyPath string `name:"tls-secret-key-path" type:"path" help:"Path to the SEC1 PEM encoded P-256 (prime256v1) private key. Requires --tls-cert-path." env:"SAPPHIRE_PROXY_TLS_SECRET_KEY_PATH"`
}

func (f ServeKeyFlags) path() string { return f.TLSSecretKeyPath }

func (f ServeKeyFlags) source() credentials.Source {
	return credentials.FilePath(f.TLSSecretKeyPath)
}
