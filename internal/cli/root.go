// Package cli provides the command-line interface for the playground.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/koskimas/kysely-playground-sub001/internal/config"
	"github.com/koskimas/kysely-playground-sub001/internal/loader"
	"github.com/koskimas/kysely-playground-sub001/internal/pipeline"
	"github.com/koskimas/kysely-playground-sub001/internal/sandbox"

	// Register the built-in dialects.
	_ "github.com/koskimas/kysely-playground-sub001/pkg/dialects/mssql"
	_ "github.com/koskimas/kysely-playground-sub001/pkg/dialects/mysql"
	_ "github.com/koskimas/kysely-playground-sub001/pkg/dialects/postgres"
	_ "github.com/koskimas/kysely-playground-sub001/pkg/dialects/sqlite"
)

var (
	cfgFile string
	cfg     *config.Config
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// loggerKey is used to store the logger in context.
type loggerKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "playground",
		Short: "Interactive SQL query builder playground",
		Long: `An interactive playground for a fluent SQL query builder.

Source written against the builder API is compiled live against the
selected dialect's builder module and rendered as formatted,
dialect-correct SQL.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			cfg, err = config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = context.WithValue(ctx, loggerKey{}, logger)
			cmd.SetContext(ctx)

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./playground.yaml)")
	rootCmd.PersistentFlags().StringP("dialect", "d", "", "SQL dialect (postgres|mysql|sqlite|mssql)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "execution timeout for one compile run")
	rootCmd.PersistentFlags().Bool("inline", false, "inline parameter values into the SQL")
	rootCmd.PersistentFlags().String("keyword-case", "", "keyword casing (lower|upper|preserve)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	_ = rootCmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"postgres", "mysql", "sqlite", "mssql"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewRenderCommand())
	rootCmd.AddCommand(NewReplCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewDialectsCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with the given context.
func ExecuteContext(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	c, _ := config.Load("", nil)
	return c
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// newPipeline assembles a pipeline from the loaded configuration.
func newPipeline(cfg *config.Config, logger *slog.Logger) *pipeline.Pipeline {
	return pipeline.New(pipeline.Config{
		Dialect: cfg.Dialect,
		Options: cfg.Format.Options(),
		Loader:  loader.New(loader.Config{Logger: logger}),
		Sandbox: sandbox.New(sandbox.Config{Timeout: cfg.Timeout, Logger: logger}),
		Logger:  logger,
	})
}
