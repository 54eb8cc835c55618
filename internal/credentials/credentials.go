// Package credentials loads TLS key and certificate material for the proxy.
package credentials

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrInvalidPrivateKey indicates key material that is not a P-256 private key
	ErrInvalidPrivateKey = errors.New("invalid private key")
	// ErrNotImplemented indicates attested secret key provisioning, which does not exist yet
	ErrNotImplemented = errors.New("not implemented: attested secret key provisioning")
)

// ReadFile returns the contents of path, naming the path in any error.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	return data, nil
}

// ParseP256SecretKey decodes a PEM encoded P-256 private key in SEC1
// ("EC PRIVATE KEY") or PKCS#8 ("PRIVATE KEY") form.
func ParseP256SecretKey(data []byte) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrInvalidPrivateKey
	}

	var key *ecdsa.PrivateKey
	switch block.Type {
	case "EC PRIVATE KEY":
		k, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, ErrInvalidPrivateKey
		}
		key = k
	case "PRIVATE KEY":
		k, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, ErrInvalidPrivateKey
		}
		ecKey, ok := k.(*ecdsa.PrivateKey)
		if !ok {
			return nil, ErrInvalidPrivateKey
		}
		key = ecKey
	default:
		return nil, ErrInvalidPrivateKey
	}

	if key.Curve != elliptic.P256() {
		return nil, ErrInvalidPrivateKey
	}
	return key, nil
}

// Source provides the PEM encoded TLS secret key.
type Source interface {
	SecretKey(ctx context.Context) ([]byte, error)
	String() string
}

// FilePath reads the secret key from a file on disk.
type FilePath string

func (p FilePath) SecretKey(_ context.Context) ([]byte, error) {
	return ReadFile(string(p))
}

func (p FilePath) String() string {
	return string(p)
}

// AttestedProvisioning obtains the secret key through attested provisioning
// inside a trusted execution environment. The protocol is not defined yet, so
// it always fails with ErrNotImplemented and never falls back to disk.
type AttestedProvisioning struct{}

func (AttestedProvisioning) SecretKey(_ context.Context) ([]byte, error) {
	return nil, ErrNotImplemented
}

func (AttestedProvisioning) String() string {
	return "attested provisioning"
}

// LoadSigningKey fetches the secret key from src and decodes it.
func LoadSigningKey(ctx context.Context, src Source) (*ecdsa.PrivateKey, error) {
	data, err := src.SecretKey(ctx)
	if err != nil {
		return nil, err
	}
	key, err := ParseP256SecretKey(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	return key, nil
}
