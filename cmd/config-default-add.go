package cmd

import (
	"fmt"

	"github.com/relloyd/geniepipe/actions"
	"github.com/relloyd/geniepipe/config"
	"github.com/spf13/cobra"
)

var defaultAddCfg = actions.DefaultAddConfig{}

var defaultAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or set a default flag value",
	Long: fmt.Sprintf(`Save a default value for a flag of ingest, rollup, serve or upload in config file %q.

The key is the flag name without dashes, e.g. page-size or missing-key-policy.
In 12 factor mode the same default comes from the matching GP_<FLAG> env var instead.`, config.Main.FullPath),
	Example: "  gp config defaults add -k missing-key-policy -v drop",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaultAddCfg.ConfigFile = config.Main
		defaultAddCfg.KnownKeys = defaultableFlags()
		return actions.RunDefaultAdd(&defaultAddCfg)
	},
}

func init() {
	defaultCmd.AddCommand(defaultAddCmd)
	defaultAddCmd.Flags().SortFlags = false
	defaultAddCmd.Flags().StringVarP(&defaultAddCfg.Key, "key", "k", "", "* The flag name to set a default for")
	defaultAddCmd.Flags().StringVarP(&defaultAddCfg.Value, "value", "v", "", "* The default value to set")
	defaultAddCmd.Flags().BoolVarP(&defaultAddCfg.Force, "force", "f", false, "Overwrite existing values")
	_ = defaultAddCmd.MarkFlagRequired("key")
	_ = defaultAddCmd.MarkFlagRequired("value")
	defaultAddCmd.SilenceUsage = true
}
