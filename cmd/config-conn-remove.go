package cmd

import (
	"fmt"

	"github.com/relloyd/geniepipe/actions"
	"github.com/relloyd/geniepipe/config"
	"github.com/spf13/cobra"
)

var connRemoveCfg = actions.ConnectionConfig{}

var configConnRemoveCmd = &cobra.Command{
	Use:     "remove [connection-name]",
	Aliases: []string{"rm", "del", "delete"},
	Short:   "Remove a connection",
	Long: fmt.Sprintf(`Remove a workspace, warehouse, file or S3 connection from %q.
Supply the name as an argument or with --connection-name.`, config.Connections.FullPath),
	Example: "  gp config connections remove prod",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		connRemoveCfg.ConfigFile = config.Connections
		if len(args) == 1 {
			connRemoveCfg.LogicalName = args[0]
		}
		return actions.RunConnectionRemove(&connRemoveCfg)
	},
}

func initConnRemove() {
	configConnCmd.AddCommand(configConnRemoveCmd)
	configConnRemoveCmd.Flags().StringVarP(&connRemoveCfg.LogicalName, "connection-name", "c", "",
		"The connection name to remove")
	configConnRemoveCmd.SilenceUsage = true
}
