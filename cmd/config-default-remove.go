package cmd

import (
	"fmt"

	"github.com/relloyd/geniepipe/actions"
	"github.com/relloyd/geniepipe/config"
	"github.com/spf13/cobra"
)

var defaultRemoveCfg = actions.DefaultRemoveConfig{}

var defaultRemoveCmd = &cobra.Command{
	Use:     "remove [flag-name]",
	Aliases: []string{"rm", "del", "delete"},
	Short:   "Remove a default flag value",
	Long: fmt.Sprintf(`Remove a flag default from config file %q so the built-in default applies again.
Supply the flag name as an argument or with --key.`, config.Main.FullPath),
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defaultRemoveCfg.ConfigFile = config.Main
		if len(args) == 1 {
			defaultRemoveCfg.Key = args[0]
		}
		return actions.RunDefaultRemove(&defaultRemoveCfg)
	},
}

func init() {
	defaultCmd.AddCommand(defaultRemoveCmd)
	defaultRemoveCmd.Flags().SortFlags = false
	defaultRemoveCmd.Flags().StringVarP(&defaultRemoveCfg.Key, "key", "k", "", "The flag name whose default is removed")
	defaultRemoveCmd.SilenceUsage = true
}
