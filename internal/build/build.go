// Package build exposes the values that are fixed when the proxy binary is
// compiled: the build profile, the target environment and the acceptor count.
package build

import (
	"fmt"
	"strconv"
)

// numThreads is stamped at link time with
// -ldflags "-X github.com/wolfeidau/sapphire-proxy/internal/build.numThreads=N".
var numThreads = "1"

// Threads returns the number of acceptors the serve command runs.
func Threads() (int, error) {
	n, err := strconv.Atoi(numThreads)
	if err != nil {
		return 0, fmt.Errorf("invalid build thread count %q: %w", numThreads, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid build thread count %d: must be at least 1", n)
	}
	return n, nil
}

// LogLevels returns the comma separated log levels accepted on the command line.
// Hardware-isolated release builds never offer debug or trace output.
func LogLevels() string {
	if Attested && !Dev {
		return "off,error,warn,info"
	}
	return "off,error,warn,info,debug,trace"
}
