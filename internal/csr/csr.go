// Package csr builds PEM encoded certificate signing requests for the proxy's
// TLS identity.
package csr

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"encoding/asn1"
	"encoding/pem"
	"fmt"
)

// PEMType is the PEM block type of an encoded request.
const PEMType = "CERTIFICATE REQUEST"

// Generate signs a certificate signing request for subject with key and
// returns it PEM encoded.
func Generate(key crypto.Signer, subject string) ([]byte, error) {
	rdns, err := ParseSubject(subject)
	if err != nil {
		return nil, err
	}

	rawSubject, err := asn1.Marshal(rdns)
	if err != nil {
		return nil, fmt.Errorf("failed to encode subject: %w", err)
	}

	der, err := x509.CreateCertificateRequest(rand.Reader, &x509.CertificateRequest{
		RawSubject: rawSubject,
	}, key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign certificate request: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: PEMType, Bytes: der}), nil
}
