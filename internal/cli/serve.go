package cli

import (
	"github.com/spf13/cobra"

	"github.com/koskimas/kysely-playground-sub001/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the playground over HTTP",
		Long: `Serve the playground over HTTP.

Exposes a JSON render endpoint, the dialect catalog, and an SSE stream
that republishes each committed result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := GetConfig(cmd.Context())
			logger := GetLogger(cmd.Context())
			p := newPipeline(cfg, logger)

			srv := server.New(server.Config{
				Pipeline: p,
				Addr:     cfg.Server.Addr(),
				Logger:   logger,
			})
			return srv.Serve(cmd.Context())
		},
	}
}
