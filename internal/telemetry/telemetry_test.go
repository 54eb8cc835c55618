package telemetry

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestRouteLogs(t *testing.T) {
	t.Run("errors go to the logger", func(t *testing.T) {
		var buf bytes.Buffer
		routeLogs(zerolog.New(&buf))

		otel.Handle(errors.New("export failed"))

		require.Contains(t, buf.String(), `"level":"error"`)
		require.Contains(t, buf.String(), "export failed")
	})

	t.Run("disabled logger writes nothing", func(t *testing.T) {
		var buf bytes.Buffer
		routeLogs(zerolog.New(&buf).Level(zerolog.Disabled))

		otel.Handle(errors.New("export failed"))

		require.Zero(t, buf.Len())
	})

	routeLogs(zerolog.Nop())
}
