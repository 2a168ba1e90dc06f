package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/streettype/internal/server"
	"github.com/matzehuels/streettype/pkg/alphabet"
)

// serveCommand runs the HTTP server until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, publicURL string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API and the asset tree over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			if publicURL == "" {
				publicURL = cfg.Server.PublicURL
			}

			env, err := c.newAssetEnv(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer env.Close()

			store, err := newGallery(ctx, cfg.Gallery)
			if err != nil {
				return fmt.Errorf("open gallery: %w", err)
			}
			defer store.Close()

			srvCfg := server.Config{
				Runner:    env.runner,
				Gallery:   store,
				Assets:    env.webRoot,
				Defaults:  cfg.Defaults,
				PublicURL: publicURL,
				Timeout:   cfg.Server.Timeout.Duration,
				Logger:    loggerFromContext(ctx),
			}
			if fs, ok := env.source.(*alphabet.FSSource); ok {
				srvCfg.Locations = fs
			}

			printInfo("Serving on %s", StyleLink.Render(addr))
			printDetail("assets: %s, cache: %s, gallery: %s", env.source.Name(), cfg.Cache.Backend, cfg.Gallery.Backend)
			return server.New(srvCfg).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&publicURL, "public-url", "", "base URL used in share links")

	return cmd
}
