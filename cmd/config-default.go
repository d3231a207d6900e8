package cmd

import (
	"fmt"

	"github.com/relloyd/geniepipe/config"
	"github.com/spf13/cobra"
)

var defaultCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Configure default values for command flags",
	Long: fmt.Sprintf(`Configure default values for command flags, where:

- Defaults are stored in config file %q
- Set %v to keep config somewhere other than the home dir
- Values given on the command line always win over saved defaults`, config.Main.FullPath, config.EnvVarConfigDir),
}

func init() {
	configCmd.AddCommand(defaultCmd)
}
