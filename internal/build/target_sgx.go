//go:build sgx

package build

// Attested reports whether the binary targets a trusted execution environment,
// where TLS secret keys must come from attested provisioning instead of disk.
const Attested = true
