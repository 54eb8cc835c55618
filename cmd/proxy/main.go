package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/sapphire-proxy/cmd/proxy/internal/commands"
	"github.com/wolfeidau/sapphire-proxy/internal/build"
	"github.com/wolfeidau/sapphire-proxy/internal/config"
	"github.com/wolfeidau/sapphire-proxy/internal/logger"
)

var (
	version = "dev"
	cli     struct {
		LogLevel string             `help:"Log verbosity (${enum})." enum:"${log_levels}" default:"info" env:"SAPPHIRE_PROXY_LOG_LEVEL"`
		Version  kong.VersionFlag   `help:"Print the version and exit."`
		GenCSR   commands.GenCSRCmd `cmd:"" name:"gen-csr" help:"Generate a certificate signing request for the proxy's TLS identity"`
		Serve    commands.ServeCmd  `cmd:"" help:"Start the encrypting proxy"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("sapphire-proxy"),
		kong.Description("TLS terminating proxy that seals web3 requests for the Sapphire paratime."),
		kong.Vars{
			"version":                  version,
			"log_levels":               build.LogLevels(),
			"default_listen_addr":      config.DefaultListenAddr,
			"default_web3_gateway_url": config.DefaultWeb3GatewayURL,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	level, err := logger.ParseLevel(cli.LogLevel)
	cmd.FatalIfErrorf(err)
	logger.Setup(level, build.Dev)

	err = cmd.Run(&commands.Globals{Dev: build.Dev, Version: version})
	cmd.FatalIfErrorf(err)
}
