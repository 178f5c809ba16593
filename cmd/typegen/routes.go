package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/limbus/typegen/cmd/typegen/internal/schema"
	"github.com/limbus/typegen/cmd/typegen/internal/ui"
)

func newRoutesCommand() *cobra.Command {
	var (
		schemaPath string
		strict     bool
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List schema routes and the packet aliases derived from them",
		Long: `Reads the OpenAPI schema directly (without running the generator) and prints
every path with the alias base gen derives for it. Routes that would be
skipped, that collide with an earlier alias, or whose aliases would not
resolve (no POST, no JSON body or 200 response) are reported below the table.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if schemaPath == "" {
				schemaPath = cfg.Schema
			}

			routes, err := schema.Load(schemaPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(routes))
			for _, r := range routes {
				alias := r.Alias
				if alias == "" {
					alias = "-"
				}
				rows = append(rows, []string{r.Path, alias, strconv.FormatBool(r.HasPost)})
			}
			fmt.Fprintln(out, ui.Table([]string{"ROUTE", "ALIAS", "POST"}, rows))

			issues := schema.Check(routes)
			for _, issue := range issues {
				ui.Warn(out, "%s", issue)
			}
			if len(issues) == 0 {
				ui.Success(out, "%d routes, no issues", len(routes))
				return nil
			}
			if strict {
				return fmt.Errorf("%d route issues found", len(issues))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "Override the schema path")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when issues are found")

	return cmd
}
