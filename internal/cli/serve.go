package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/lightrig/rigsnap/internal/server"
)

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr string
		room roomValue
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the snap engine as a JSON HTTP API",
		Long: `Serve starts an HTTP server exposing the catalogue, compatibility checks,
snap solving and boundary constraints as JSON endpoints:

  GET  /healthz
  GET  /api/catalog
  GET  /api/catalog/{slug}
  POST /api/compatible
  POST /api/solve
  POST /api/constrain`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			store, keyer := c.openCache(ctx)
			defer store.Close()

			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			srv := server.New(server.Config{
				Addr:    addr,
				Room:    room.or(c.cfg.Room),
				Catalog: cat,
				Cache:   store,
				Keyer:   keyer,
				Logger:  c.Logger,
			})

			printInfo("Serving %d templates on %s", cat.Len(), StyleHighlight.Render(addr))
			err = srv.ListenAndServe(ctx)
			if errors.Is(err, context.Canceled) {
				printInfo("Server stopped")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().Var(&room, "room", "default room for /api/constrain")
	return cmd
}
