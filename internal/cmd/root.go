// Package cmd implements the omsconsole command line.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "omsconsole",
		Short: "ISP OMS admin console backend",
		Long: `omsconsole serves the OMS admin console: operator sessions, route guarding
and the bundled identity directory the console authenticates against.
Configuration is read from the environment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newSeedUserCmd(), newRolesCmd())
	return root
}

// ExecuteContext runs the command line with ctx.
func ExecuteContext(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}
