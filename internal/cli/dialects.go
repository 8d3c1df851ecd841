package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/koskimas/kysely-playground-sub001/pkg/dialect"
)

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List the available SQL dialects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Dialect", "Identifier Quoting", "Placeholders", "Keyword Case", "Returning"})

			for _, name := range dialect.List() {
				d, ok := dialect.Get(name)
				if !ok {
					continue
				}
				returning := "no"
				if d.SupportsReturning {
					returning = "yes"
				}
				t.AppendRow(table.Row{
					d.Name,
					d.Identifiers.Quote + "name" + d.Identifiers.QuoteEnd,
					d.FormatPlaceholder(1),
					d.DefaultKeywordCase.String(),
					returning,
				})
			}

			t.Render()
			return nil
		},
	}
}
