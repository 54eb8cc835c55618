package proxy

import "context"

// Sealer encrypts a request body so only the paratime holding the private half
// of runtimeKey can read it. The scheme is provided by the caller.
type Sealer interface {
	Seal(ctx context.Context, runtimeKey [32]byte, body []byte) ([]byte, error)
}

// SealerFunc adapts a function to a Sealer.
type SealerFunc func(ctx context.Context, runtimeKey [32]byte, body []byte) ([]byte, error)

func (f SealerFunc) Seal(ctx context.Context, runtimeKey [32]byte, body []byte) ([]byte, error) {
	return f(ctx, runtimeKey, body)
}

type passthrough struct{}

func (passthrough) Seal(_ context.Context, _ [32]byte, body []byte) ([]byte, error) {
	return body, nil
}
