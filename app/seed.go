package app

import (
	"github.com/spf13/cobra"

	"github.com/zymptek/zymptek-api/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the configured admin at the identity provider and in the database",
	Long: `Create the admin configured in the [Seed] section. An existing admin with
the same email is left untouched. The identity provider user is removed again
if the database insert fails.`,
	PreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return daemon.Seed(cmd.Context(), &cfg) //nolint:wrapcheck
	},
}
