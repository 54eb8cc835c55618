//go:build !dev

package build

// Dev reports whether this is a development build.
const Dev = false
