// Package launcher runs a server's blocking accept loop on a fixed number of
// OS threads that all share one server.
package launcher

import (
	"context"
	"runtime"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/sapphire-proxy/internal/telemetry"
)

// Servable is a shared server whose Serve method blocks for the life of the
// process and may be called from many goroutines at once.
type Servable interface {
	Serve()
}

// SpawnFunc starts fn concurrently with the caller.
type SpawnFunc func(fn func())

// Run serves srv from threads acceptors, the calling goroutine being one of
// them, each locked to its own OS thread. There is no shutdown path: Run only
// returns if the caller's serve loop does.
func Run(srv Servable, threads int) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	FanOut(srv, threads, spawnLocked)
}

// FanOut starts ExtraThreads(threads) acceptors with spawn, then serves on the
// calling goroutine. Scheduling between acceptors is left to the kernel's
// accept queue.
func FanOut(srv Servable, threads int, spawn SpawnFunc) {
	extra := ExtraThreads(threads)
	for range extra {
		spawn(func() { serve(srv) })
	}

	log.Info().Int("threads", extra+1).Msg("Started server")
	serve(srv)
}

// ExtraThreads is the number of acceptors started in addition to the calling
// thread.
func ExtraThreads(threads int) int {
	if threads <= 1 {
		return 0
	}
	return threads - 1
}

func serve(srv Servable) {
	acceptors := telemetry.GetMetrics().Acceptors
	acceptors.Add(context.Background(), 1)
	defer acceptors.Add(context.Background(), -1)

	srv.Serve()
}

func spawnLocked(fn func()) {
	go func() {
		runtime.LockOSThread()
		fn()
	}()
}
