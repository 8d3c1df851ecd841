package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/koskimas/kysely-playground-sub001/internal/pipeline"
)

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Compile a playground source file and print the formatted SQL",
		Long: `Compile a playground source file and print the formatted SQL.

Reads from stdin when no file is given. With --watch, the file is
re-rendered whenever it changes; compile errors are reported without
stopping the watch.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig(cmd.Context())
			logger := GetLogger(cmd.Context())
			p := newPipeline(cfg, logger)

			if len(args) == 0 {
				if watch {
					return errors.New("--watch requires a file argument")
				}
				source, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				return renderSource(cmd, p, string(source))
			}

			path := args[0]
			if !watch {
				return renderFile(cmd, p, path)
			}

			if err := renderFile(cmd, p, path); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			}
			return watchFile(cmd, p, path)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-render whenever the file changes")

	return cmd
}

func renderFile(cmd *cobra.Command, p *pipeline.Pipeline, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return renderSource(cmd, p, string(source))
}

func renderSource(cmd *cobra.Command, p *pipeline.Pipeline, source string) error {
	p.State().SetSource(source)
	sql, err := p.Render(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), sql)
	return nil
}

// watchFile re-renders path on every write until the command context ends.
func watchFile(cmd *cobra.Command, p *pipeline.Pipeline, path string) error {
	logger := GetLogger(cmd.Context())

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	logger.Info("watching for changes", "file", path)

	for {
		select {
		case <-cmd.Context().Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// Editors often replace the file; re-add so renames keep
			// being tracked.
			_ = watcher.Add(path)

			if err := renderFile(cmd, p, path); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			}

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", watchErr)
		}
	}
}
