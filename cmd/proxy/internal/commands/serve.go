package commands

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/sapphire-proxy/internal/build"
	"github.com/wolfeidau/sapphire-proxy/internal/config"
	"github.com/wolfeidau/sapphire-proxy/internal/credentials"
	"github.com/wolfeidau/sapphire-proxy/internal/launcher"
	"github.com/wolfeidau/sapphire-proxy/internal/proxy"
	"github.com/wolfeidau/sapphire-proxy/internal/telemetry"
)

// ServeCmd starts the proxy and serves until the process is killed.
type ServeCmd struct {
	ListenAddr          string        `name:"listen-addr" short:"l" help:"The server listen address." default:"${default_listen_addr}" env:"SAPPHIRE_PROXY_LISTEN_ADDR"`
	Web3GatewayURL      string        `name:"web3-gateway-url" help:"The URL of the upstream Web3 gateway." default:"${default_web3_gateway_url}" env:"SAPPHIRE_PROXY_WEB3_GATEWAY_URL"`
	MaxRequestSizeBytes int64         `name:"max-request-size-bytes" hidden:"" help:"The maximum size of a Web3 request this server will process." default:"1048576"`
	RuntimePublicKey    string        `name:"runtime-public-key" required:"" help:"Hex encoded public key of the Sapphire paratime this proxy is indirectly connected to." env:"SAPPHIRE_PROXY_RUNTIME_PUBLIC_KEY"`
	SecretKey           ServeKeyFlags `embed:""`
	TLSCertPath         string        `name:"tls-cert-path" type:"path" help:"Path to the TLS certificate this server presents. When set all requests must use TLS." env:"SAPPHIRE_PROXY_TLS_CERT_PATH"`

	CORSOrigins []string `name:"cors-origins" help:"Browser origins allowed to call the proxy." default:"*" env:"SAPPHIRE_PROXY_CORS_ORIGINS"`
	Compress    bool     `help:"Gzip responses for clients that accept it." default:"false"`
	Telemetry   bool     `help:"Export metrics and traces over OTLP." default:"false" env:"SAPPHIRE_PROXY_TELEMETRY"`
}

// Run executes the serve command. It only returns on failure.
func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	srv, threads, err := c.bootstrap(ctx, globals)
	if err != nil {
		return err
	}

	launcher.Run(srv, threads)
	return errors.New("server stopped serving")
}

// bootstrap validates the flags, loads TLS material and binds the server.
// Nothing is read from disk or bound until validation has passed.
func (c *ServeCmd) bootstrap(ctx context.Context, globals *Globals) (*proxy.Server, int, error) {
	cfg, err := config.ParseServe(c.args(), build.Attested)
	if err != nil {
		return nil, 0, err
	}

	threads, err := build.Threads()
	if err != nil {
		return nil, 0, err
	}

	if c.Telemetry {
		if _, err := telemetry.Init(ctx, "sapphire-proxy", globals.Version); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
		}
	}

	tlsMaterial, err := c.loadTLS(ctx, cfg)
	if err != nil {
		return nil, 0, err
	}

	srv, err := proxy.New(proxy.Config{
		ListenAddr:          cfg.ListenAddr,
		Upstream:            cfg.UpstreamURL,
		MaxRequestSizeBytes: cfg.MaxRequestSizeBytes,
		RuntimePublicKey:    cfg.RuntimePublicKey,
		TLS:                 tlsMaterial,
	},
		proxy.WithLogger(log.Logger),
		proxy.WithCORSOrigins(c.CORSOrigins),
		proxy.WithCompression(c.Compress),
	)
	if err != nil {
		return nil, 0, &FatalError{Msg: "failed to start server", Err: err}
	}

	log.Debug().
		Str("runtime_public_key", cfg.RuntimePublicKey.String()).
		Int("threads", threads).
		Msg("Server constructed")

	return srv, threads, nil
}

func (c *ServeCmd) args() config.ServeArgs {
	return config.ServeArgs{
		ListenAddr:          c.ListenAddr,
		Web3GatewayURL:      c.Web3GatewayURL,
		MaxRequestSizeBytes: c.MaxRequestSizeBytes,
		RuntimePublicKey:    c.RuntimePublicKey,
		TLSSecretKeyPath:    c.SecretKey.path(),
		TLSCertPath:         c.TLSCertPath,
	}
}

func (c *ServeCmd) loadTLS(ctx context.Context, cfg *config.Serve) (*proxy.TLSConfig, error) {
	if !cfg.TLSEnabled() {
		return nil, nil
	}

	certificate, err := credentials.ReadFile(cfg.TLSCertPath)
	if err != nil {
		return nil, err
	}

	secretKey, err := c.SecretKey.source().SecretKey(ctx)
	if err != nil {
		return nil, fatalIfUnimplemented(err)
	}

	return &proxy.TLSConfig{Certificate: certificate, SecretKey: secretKey}, nil
}
