package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/xkcdify/pkg/server"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sketch pipeline over HTTP",
		Long: `Serve the sketch pipeline over HTTP.

POST an SVG document to /v1/sketch with options in the query string:

  curl --data-binary @chart.svg 'http://localhost:8080/v1/sketch?scale=2&replace_font=true'

The server shares the cache configured with --cache or the config file.
Cache keys are prefixed with server.key_prefix when it is set. The server
stops gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			runner, err := c.newRunner(ctx, cfg, cfg.Server.KeyPrefix)
			if err != nil {
				return err
			}
			defer runner.Close()

			printInfo("Serving on %s", StyleLink.Render("http://"+displayAddr(cfg.Server.Addr)))
			return server.New(runner, cfg, c.Logger).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default: server.addr from config, or :8080)")

	return cmd
}

// displayAddr turns a listen address such as ":8080" into one a browser can
// open.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
