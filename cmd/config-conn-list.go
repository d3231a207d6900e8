package cmd

import (
	"fmt"

	"github.com/relloyd/geniepipe/actions"
	"github.com/relloyd/geniepipe/config"
	"github.com/spf13/cobra"
)

var configConnListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print all connections",
	Long: fmt.Sprintf(`Print the connections saved in %q with tokens and passwords redacted.
Use a connection name as <workspace-connection> or <target-connection> in ingest, rollup and upload`,
		config.Connections.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		return actions.RunConnectionList(config.Connections, cmd.OutOrStdout())
	},
}

func initConnList() {
	configConnCmd.AddCommand(configConnListCmd)
	configConnListCmd.SilenceUsage = true
}
