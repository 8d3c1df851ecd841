package cli

import (
	"github.com/spf13/cobra"

	"github.com/koskimas/kysely-playground-sub001/internal/tui"
	"github.com/koskimas/kysely-playground-sub001/pkg/dialect"
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Open the interactive terminal playground",
		Long: `Open the interactive terminal playground.

Source typed into the editor is compiled on every keystroke and the
formatted SQL is shown alongside it. Tab cycles through dialects.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := GetConfig(cmd.Context())
			logger := GetLogger(cmd.Context())
			p := newPipeline(cfg, logger)

			return tui.Run(cmd.Context(), p, dialect.List(), cfg.Dialect, cfg.Format.Options())
		},
	}
}
