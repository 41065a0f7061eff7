package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ispoms/oms-console/internal/infrastructure/rolecatalog"
)

func newRolesCmd() *cobra.Command {
	var (
		path   string
		output string
	)
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Print the role catalog",
		Long: `Print the console roles and their permission grants. Without --file the
embedded default catalog is shown.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := rolecatalog.Load(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch output {
			case "yaml":
				type role struct {
					Name        string   `yaml:"name"`
					Permissions []string `yaml:"permissions"`
				}
				doc := struct {
					Roles []role `yaml:"roles"`
				}{}
				for _, r := range catalog.Roles() {
					doc.Roles = append(doc.Roles, role{Name: r.Name, Permissions: r.Permissions})
				}
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(doc); err != nil {
					return err
				}
				return enc.Close()
			case "table":
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ROLE\tPERMISSIONS")
				for _, r := range catalog.Roles() {
					fmt.Fprintf(tw, "%s\t%s\n", r.Name, strings.Join(r.Permissions, ", "))
				}
				return tw.Flush()
			default:
				return fmt.Errorf("unknown output %q, want table or yaml", output)
			}
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "role catalog YAML (defaults to ROLE_CATALOG_PATH, then the embedded catalog)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or yaml")
	cmd.PreRun = func(*cobra.Command, []string) {
		if path == "" {
			path = os.Getenv("ROLE_CATALOG_PATH")
		}
	}
	return cmd
}
