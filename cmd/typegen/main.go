package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/limbus/typegen/cmd/typegen/internal/ui"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Error(err))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "typegen",
		Short: "typegen - TypeScript packet types from the Limbus OpenAPI schema",
		Long: `typegen runs openapi-typescript against the Limbus OpenAPI schema and
derives the endpoint enum, the format (component schema) aliases and the
request/response packet aliases used by the client.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to typegen.yaml (default: ./typegen.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newGenCommand())
	rootCmd.AddCommand(newRoutesCommand())
	rootCmd.AddCommand(newInitCommand())

	return rootCmd
}
