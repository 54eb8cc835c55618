package proxy

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	httpmiddleware "github.com/wolfeidau/sapphire-proxy/internal/http"
	"github.com/wolfeidau/sapphire-proxy/internal/telemetry"
)

// forwardedHeaders are copied from the client request to the upstream request.
var forwardedHeaders = []string{"Content-Type", "Accept"}

func (s *Server) handler() http.Handler {
	var h http.Handler = http.HandlerFunc(s.forward)
	if s.compress {
		h = gzhttp.GzipHandler(h)
	}

	h = cors.New(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{httpmiddleware.RequestIDHeader},
	}).Handler(h)

	h = httpmiddleware.AccessLog()(h)
	return httpmiddleware.RequestID(s.logger)(h)
}

func (s *Server) forward(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	metrics := telemetry.GetMetrics()
	started := time.Now()

	metrics.RequestsTotal.Add(ctx, 1)
	defer func() {
		metrics.RequestDuration.Record(ctx, float64(time.Since(started).Milliseconds()))
	}()

	if r.Method != http.MethodPost {
		metrics.RequestsRejected.Add(ctx, 1)
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestSizeBytes))
	if err != nil {
		metrics.RequestsRejected.Add(ctx, 1)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
			return
		}
		logger.Debug().Err(err).Msg("Failed to read request body")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	metrics.RequestBytes.Record(ctx, int64(len(body)))

	sealed, err := s.sealer.Seal(ctx, s.cfg.RuntimePublicKey, body)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to seal request")
		http.Error(w, "failed to seal request", http.StatusInternalServerError)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Upstream.String(), bytes.NewReader(sealed))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build upstream request")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	for _, name := range forwardedHeaders {
		if v := r.Header.Get(name); v != "" {
			req.Header.Set(name, v)
		}
	}

	resp, err := s.upstream.Do(req)
	if err != nil {
		metrics.UpstreamErrorsTotal.Add(ctx, 1)
		logger.Warn().Err(err).Str("upstream", s.cfg.Upstream.Redacted()).Msg("Upstream request failed")
		http.Error(w, "upstream gateway unavailable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		metrics.UpstreamErrorsTotal.Add(ctx, 1)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		logger.Debug().Err(err).Msg("Failed to copy upstream response")
	}
}
