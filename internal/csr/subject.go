package csr

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidSubject indicates a subject that is not a valid RFC 4514 string
var ErrInvalidSubject = errors.New("invalid subject")

var attributeTypes = map[string]asn1.ObjectIdentifier{
	"CN":           {2, 5, 4, 3},
	"SERIALNUMBER": {2, 5, 4, 5},
	"C":            {2, 5, 4, 6},
	"L":            {2, 5, 4, 7},
	"ST":           {2, 5, 4, 8},
	"STREET":       {2, 5, 4, 9},
	"O":            {2, 5, 4, 10},
	"OU":           {2, 5, 4, 11},
	"POSTALCODE":   {2, 5, 4, 17},
	"DC":           {0, 9, 2342, 19200300, 100, 1, 25},
	"UID":          {0, 9, 2342, 19200300, 100, 1, 1},
}

// ParseSubject parses an RFC 4514 distinguished name such as
// "C=US,O=Org,CN=host". The string lists the most specific RDN first, so the
// returned sequence is in the reverse order of the input.
func ParseSubject(s string) (pkix.RDNSequence, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSubject)
	}

	rdnStrings, err := splitUnescaped(s, ',')
	if err != nil {
		return nil, err
	}

	seq := make(pkix.RDNSequence, 0, len(rdnStrings))
	for i := len(rdnStrings) - 1; i >= 0; i-- {
		rdn, err := parseRDN(rdnStrings[i])
		if err != nil {
			return nil, err
		}
		seq = append(seq, rdn)
	}
	return seq, nil
}

func parseRDN(s string) (pkix.RelativeDistinguishedNameSET, error) {
	parts, err := splitUnescaped(s, '+')
	if err != nil {
		return nil, err
	}

	rdn := make(pkix.RelativeDistinguishedNameSET, 0, len(parts))
	for _, part := range parts {
		attrType, rawValue, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q has no '='", ErrInvalidSubject, part)
		}

		oid, err := parseAttributeType(strings.TrimSpace(attrType))
		if err != nil {
			return nil, err
		}

		value, err := parseAttributeValue(rawValue)
		if err != nil {
			return nil, err
		}

		rdn = append(rdn, pkix.AttributeTypeAndValue{Type: oid, Value: value})
	}
	return rdn, nil
}

func parseAttributeType(s string) (asn1.ObjectIdentifier, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty attribute type", ErrInvalidSubject)
	}
	if oid, ok := attributeTypes[strings.ToUpper(s)]; ok {
		return oid, nil
	}

	dotted := s
	if len(dotted) > 4 && strings.EqualFold(dotted[:4], "OID.") {
		dotted = dotted[4:]
	}

	arcs := strings.Split(dotted, ".")
	if len(arcs) < 2 {
		return nil, fmt.Errorf("%w: unknown attribute type %q", ErrInvalidSubject, s)
	}
	oid := make(asn1.ObjectIdentifier, len(arcs))
	for i, arc := range arcs {
		n, err := strconv.Atoi(arc)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: unknown attribute type %q", ErrInvalidSubject, s)
		}
		oid[i] = n
	}
	return oid, nil
}

// parseAttributeValue handles the string and #hexstring forms of RFC 4514
// section 2.4. The hex form carries a BER encoded value which is kept raw.
func parseAttributeValue(s string) (any, error) {
	s = trimUnescapedSpace(s)

	if strings.HasPrefix(s, "#") {
		der, err := hex.DecodeString(s[1:])
		if err != nil {
			return nil, fmt.Errorf("%w: bad hex value %q: %w", ErrInvalidSubject, s, err)
		}
		var raw asn1.RawValue
		rest, err := asn1.Unmarshal(der, &raw)
		if err != nil || len(rest) != 0 {
			return nil, fmt.Errorf("%w: bad BER value %q", ErrInvalidSubject, s)
		}
		return raw, nil
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			return nil, fmt.Errorf("%w: trailing escape in %q", ErrInvalidSubject, s)
		}
		next := s[i+1]
		if isHexDigit(next) {
			if i+2 >= len(s) || !isHexDigit(s[i+2]) {
				return nil, fmt.Errorf("%w: bad hex escape in %q", ErrInvalidSubject, s)
			}
			v, _ := strconv.ParseUint(s[i+1:i+3], 16, 8)
			b.WriteByte(byte(v))
			i += 2
			continue
		}
		b.WriteByte(next)
		i++
	}
	return b.String(), nil
}

// splitUnescaped splits s on sep, ignoring separators preceded by a backslash.
func splitUnescaped(s string, sep byte) ([]string, error) {
	var (
		parts []string
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])

	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("%w: empty component in %q", ErrInvalidSubject, s)
		}
	}
	return parts, nil
}

// trimUnescapedSpace drops leading spaces and trailing spaces that are not
// escaped.
func trimUnescapedSpace(s string) string {
	s = strings.TrimLeft(s, " ")
	for strings.HasSuffix(s, " ") && !escapedAt(s, len(s)-1) {
		s = s[:len(s)-1]
	}
	return s
}

// escapedAt reports whether s[i] is preceded by an odd run of backslashes.
func escapedAt(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
