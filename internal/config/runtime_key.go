package config

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// RuntimePublicKeySize is the byte length of a paratime public key.
const RuntimePublicKeySize = 32

// RuntimePublicKey is the public key of the paratime the proxy seals payloads for.
type RuntimePublicKey [RuntimePublicKeySize]byte

// ParseRuntimePublicKey decodes a hex encoded key, with or without a 0x prefix.
func ParseRuntimePublicKey(s string) (RuntimePublicKey, error) {
	var key RuntimePublicKey

	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return key, err
	}
	if len(raw) != RuntimePublicKeySize {
		return key, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeyLength, len(raw), RuntimePublicKeySize)
	}

	copy(key[:], raw)
	return key, nil
}

func (k RuntimePublicKey) String() string {
	return "0x" + hex.EncodeToString(k[:])
}
