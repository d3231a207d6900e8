package cmd

import (
	"fmt"

	"github.com/relloyd/geniepipe/actions"
	"github.com/relloyd/geniepipe/config"
	"github.com/relloyd/geniepipe/constants"
	"github.com/spf13/cobra"
)

var configConnS3 = &actions.ConnectionConfig{}
var s3Dsn, s3Region string

var configConnAddS3Cmd = &cobra.Command{
	Use:   "s3",
	Short: "Add an AWS S3 bucket",
	Long: fmt.Sprintf(`Add an AWS S3 bucket to the config store %q. 

Use it with 'gp ingest --archive' to keep a copy of every page fetched from the workspace. 
Trailing slashes are trimmed and cleaned up internally.
The DSN should be of the form:

s3://<bucket name>/<prefix>

Set AWS environment variables or a profile for access.`,
		config.Connections.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newConnectionValidator(constants.ConnectionTypeS3, s3Dsn, s3Region)
		if err != nil {
			return err
		}
		configConnS3.Type = constants.ConnectionTypeS3
		configConnS3.ConfigFile = getConnectionGetterSetter()
		configConnS3.ConnDetails = b
		cmd.SilenceUsage = true
		return actions.RunConnectionAdd(configConnS3)
	},
}

func init() {
	configConnAddCmd.AddCommand(configConnAddS3Cmd)
	configConnAddS3Cmd.Flags().SortFlags = false
	switches.addFlag(configConnAddS3Cmd, &configConnS3.LogicalName, "connection-name", "", true, "")
	switches.addFlag(configConnAddS3Cmd, &configConnS3.Force, "force-connection", "", false, "")
	switches.addFlag(configConnAddS3Cmd, &s3Dsn, "dsn", "", true, "")
	switches.addFlag(configConnAddS3Cmd, &s3Region, "s3-region", "eu-west-1", false, "")
}
