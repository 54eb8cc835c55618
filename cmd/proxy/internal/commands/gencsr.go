package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/sapphire-proxy/internal/build"
	"github.com/wolfeidau/sapphire-proxy/internal/config"
	"github.com/wolfeidau/sapphire-proxy/internal/credentials"
	"github.com/wolfeidau/sapphire-proxy/internal/csr"
)

// GenCSRCmd writes a PEM encoded certificate signing request for the proxy's
// TLS key.
type GenCSRCmd struct {
	SecretKey GenCSRKeyFlags `embed:""`
	Subject   string         `required:"" help:"RFC 4514 RDN sequence for the CSR subject, e.g. 'C=US,ST=California,L=San Francisco,O=Oasis Labs,CN=sapphire-proxy.oasislabs.com'."`
	CSRPath   string         `name:"csr-path" short:"o" required:"" type:"path" help:"Where to write the PEM encoded CSR. An existing file is overwritten."`
}

// Run executes the gen-csr command
func (c *GenCSRCmd) Run(ctx context.Context, globals *Globals) error {
	err := config.ValidateGenCSR(config.GenCSRArgs{
		TLSSecretKeyPath: c.SecretKey.path(),
		Subject:          c.Subject,
		CSRPath:          c.CSRPath,
	}, build.Attested)
	if err != nil {
		return err
	}

	src := c.SecretKey.source()
	log.Debug().Str("source", src.String()).Msg("Loading CSR signing key")

	key, err := credentials.LoadSigningKey(ctx, src)
	if err != nil {
		return fatalIfUnimplemented(err)
	}

	csrPEM, err := csr.Generate(key, c.Subject)
	if err != nil {
		return fmt.Errorf("failed to generate CSR signed by %s: %w", src, err)
	}

	if err := os.WriteFile(c.CSRPath, csrPEM, 0o644); err != nil { // #nosec G306 - a CSR is public
		return fmt.Errorf("failed to write to %s: %w", c.CSRPath, err)
	}

	log.Info().Str("path", c.CSRPath).Str("subject", c.Subject).Msg("Wrote certificate signing request")
	return nil
}
