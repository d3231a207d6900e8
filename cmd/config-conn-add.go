package cmd

import (
	"fmt"

	"github.com/relloyd/geniepipe/actions"
	"github.com/relloyd/geniepipe/config"
	"github.com/spf13/cobra"
)

var configConnAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a connection",
	Long:  `Add a logical connection (workspace, database, CSV directory or S3 bucket) for use with commands.`,
}

// newConnAddCmd returns a subcommand of 'config connections add' that saves a connection of type connType.
func newConnAddCmd(connType string, short string, dsnHelp string) *cobra.Command {
	cfg := &actions.ConnectionConfig{}
	var dsn string
	c := &cobra.Command{
		Use:   connType,
		Short: short,
		Long:  fmt.Sprintf("%v to the config store %q\nby providing a DSN of the form:\n\n%v", short, config.Connections.FullPath, dsnHelp),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newConnectionValidator(connType, dsn, "")
			if err != nil {
				return err
			}
			cfg.Type = connType
			cfg.ConfigFile = getConnectionGetterSetter()
			cfg.ConnDetails = v
			cmd.SilenceUsage = true
			return actions.RunConnectionAdd(cfg)
		},
	}
	c.Flags().SortFlags = false
	switches.addFlag(c, &cfg.LogicalName, "connection-name", "", true, "")
	switches.addFlag(c, &cfg.Force, "force-connection", "", false, "")
	switches.addFlag(c, &dsn, "dsn", "", true, "")
	return c
}

func initConnAdd() {
	configConnCmd.AddCommand(configConnAddCmd)
}
