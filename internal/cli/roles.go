package cli

import (
	"github.com/spf13/cobra"
)

var rolesAccount string

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Display governance roles held by an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Roles(cmd.Context(), rolesAccount)
	},
}

func init() {
	rolesCmd.Flags().StringVar(&rolesAccount, "account", "", "Account to query (defaults to app.account)")
}
