package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/limbus/typegen/cmd/typegen/internal/config"
	"github.com/limbus/typegen/cmd/typegen/internal/pipeline"
	"github.com/limbus/typegen/cmd/typegen/internal/ui"
)

func newGenCommand() *cobra.Command {
	var (
		watch  bool
		check  bool
		schema string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate TypeScript types from the OpenAPI schema",
		Long: `Runs the configured generator (bun openapi-typescript by default) and writes:
  - oapi-gen.ts       normalized generator output
  - format-types.ts   root aliases of the component schemas
  - endpoints.ts      the endpoint enum
  - packet-types.ts   <Name>Req / <Name>Rsp aliases for every POST route

Examples:
  typegen gen                      # Generate once
  typegen gen --check              # Fail if generated files are stale (CI)
  typegen gen --watch              # Regenerate when the schema changes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch && check {
				return fmt.Errorf("--watch and --check cannot be combined")
			}

			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if schema != "" {
				cfg.Schema = schema
			}
			if outDir != "" {
				cfg.OutDir = outDir
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			out := cmd.OutOrStdout()
			p := pipeline.New(cfg, logger, out)

			if check {
				_, err := p.Check(ctx)
				return err
			}

			startTime := time.Now()
			res, err := p.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Files("Files generated", res.Paths()))
			fmt.Fprintln(out, ui.Muted(fmt.Sprintf("Done in %v", time.Since(startTime).Round(time.Millisecond))))

			if watch {
				return watchSchema(ctx, cfg.Schema, logger, out, func(ctx context.Context) error {
					_, err := p.Run(ctx)
					return err
				})
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Regenerate when the schema file changes")
	cmd.Flags().BoolVar(&check, "check", false, "Compare generated files with a fresh run and fail on differences")
	cmd.Flags().StringVar(&schema, "schema", "", "Override the schema path")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Override the output directory")

	return cmd
}

// loadConfig resolves the config file from the persistent flags and sets up
// the default logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := ui.NewLogger(cmd.ErrOrStderr(), verbose)
	slog.SetDefault(logger)

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.FileName
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Debug("Loaded config", "path", path, "schema", cfg.Schema, "outDir", cfg.OutDir)
	return cfg, logger, nil
}
