//go:build sgx

package commands

import "github.com/wolfeidau/sapphire-proxy/internal/credentials"

// GenCSRKeyFlags is empty in enclave builds: the key is provisioned by
// attestation, never read from disk.
type GenCSRKeyFlags struct{}

func (GenCSRKeyFlags) path() string { return "" }

func (GenCSRKeyFlags) source() credentials.Source {
	return credentials.AttestedProvisioning{}
}

// ServeKeyFlags is empty in enclave builds, see GenCSRKeyFlags.
type ServeKeyFlags struct{}

func (ServeKeyFlags) path() string { return "" }

func (ServeKeyFlags) source() credentials.Source {
	return credentials.AttestedProvisioning{}
}
