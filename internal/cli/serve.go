package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridui/internal/server"
)

// serveCommand creates the serve command for the HTTP service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		maxBody int64
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

POST a document to /v1/layout to receive one rendered artifact, or to
/v1/validate to list its problems. The service shares the configured cache,
so a Redis backend lets several instances reuse each other's layouts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("addr") && c.cfg.Server.Addr != "" {
				addr = c.cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			defaults := c.configDefaults()
			defaults.Formats = nil
			srv := server.New(runner, c.Logger,
				server.WithAddr(addr),
				server.WithMaxBodySize(maxBody),
				server.WithDefaults(defaults))

			printInfo("Listening on %s", addr)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().Int64Var(&maxBody, "max-body", server.DefaultMaxBodySize, "maximum request body size in bytes")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
