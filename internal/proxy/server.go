// Package proxy implements the HTTP(S) server that accepts web3 requests,
// seals their payloads for the paratime and forwards them to the upstream
// gateway.
package proxy

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
)

// TLSConfig holds PEM encoded TLS material. When present every connection
// must use TLS.
type TLSConfig struct {
	Certificate []byte
	SecretKey   []byte
}

// Config is consumed once by New.
type Config struct {
	ListenAddr          netip.AddrPort
	Upstream            *url.URL
	MaxRequestSizeBytes int64
	RuntimePublicKey    [32]byte
	TLS                 *TLSConfig
}

// Server is bound to its listen address on construction and is immutable
// afterwards. Serve may be called from any number of goroutines at once; they
// all accept from the same listener.
type Server struct {
	cfg        Config
	listener   net.Listener
	httpServer *http.Server
	upstream   *http.Client
	sealer     Sealer
	logger     zerolog.Logger

	corsOrigins []string
	compress    bool
}

// Option customises a Server.
type Option func(*Server)

// WithSealer sets the payload sealer. Without one payloads are forwarded as is.
func WithSealer(sealer Sealer) Option {
	return func(s *Server) { s.sealer = sealer }
}

// WithLogger sets the logger used for request and serve loop logging.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithCORSOrigins restricts the browser origins allowed to call the proxy.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// WithCompression gzip compresses responses for clients that accept it.
func WithCompression(enabled bool) Option {
	return func(s *Server) { s.compress = enabled }
}

// WithUpstreamTransport replaces the transport used to reach the gateway.
func WithUpstreamTransport(rt http.RoundTripper) Option {
	return func(s *Server) { s.upstream = &http.Client{Transport: rt} }
}

// New validates cfg, binds the listen address and returns a ready to serve
// Server.
func New(cfg Config, opts ...Option) (*Server, error) {
	if cfg.Upstream == nil {
		return nil, errors.New("upstream URL is required")
	}
	if cfg.MaxRequestSizeBytes <= 0 {
		return nil, errors.New("max request size must be greater than zero")
	}

	s := &Server{
		cfg:         cfg,
		upstream:    &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		logger:      log.Logger,
		corsOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sealer == nil {
		s.logger.Warn().Msg("No payload sealer configured, request bodies are forwarded unmodified")
		s.sealer = passthrough{}
	}

	s.httpServer = configureHTTPServer(s.handler(), s.logger)

	var tlsConfig *tls.Config
	if cfg.TLS != nil {
		cert, err := tls.X509KeyPair(cfg.TLS.Certificate, cfg.TLS.SecretKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS key pair: %w", err)
		}
		s.httpServer.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		if err := http2.ConfigureServer(s.httpServer, &http2.Server{}); err != nil {
			return nil, fmt.Errorf("failed to configure HTTP/2: %w", err)
		}
		tlsConfig = s.httpServer.TLSConfig
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr.String())
	if err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", cfg.ListenAddr, err)
	}
	if tlsConfig != nil {
		ln = tls.NewListener(ln, tlsConfig)
	}
	s.listener = ln

	s.logger.Info().
		Str("listen", ln.Addr().String()).
		Str("upstream", cfg.Upstream.Redacted()).
		Bool("tls", tlsConfig != nil).
		Msg("Server bound")

	return s, nil
}

// Serve accepts and handles connections until the listener is closed. It is
// safe to call concurrently.
func (s *Server) Serve() {
	err := s.httpServer.Serve(s.listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error().Err(err).Msg("Serve loop exited")
	}
}

// Addr returns the bound listen address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Close stops all serve loops and closes open connections. The CLI never calls
// it; the process runs until it is killed.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	if cerr := s.listener.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) && err == nil {
		err = cerr
	}
	return err
}

func configureHTTPServer(handler http.Handler, logger zerolog.Logger) *http.Server {
	return &http.Server{
		Handler:           handler,
		ErrorLog:          stdlog.New(logger, "", 0),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
