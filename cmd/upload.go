package cmd

import (
	"strconv"

	"github.com/relloyd/geniepipe/actions"
	"github.com/relloyd/geniepipe/constants"
	"github.com/spf13/cobra"
)

var uploadCfg = actions.UploadConfig{}

var uploadCmd = &cobra.Command{
	Use:   "upload " + argsSourceTxt,
	Short: "Upload a local file to a Unity Catalog volume",
	Long: `Upload a local file to a Unity Catalog volume using the Files API of the workspace.
The file is written to /Volumes/<catalog>/<schema>/<volume>/[<subdir>/]<file name> 
and any existing file is overwritten.`,
	Args: getConnectionArgsFunc(&uploadCfg.SourceConnection, argsSourceTxt),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		uploadCfg.Connections = getConnectionHandler()
		uploadCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunUpload(&uploadCfg)
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().SortFlags = false
	switches.addFlag(uploadCmd, &uploadCfg.LocalFile, "file", "", true, "")
	switches.addFlag(uploadCmd, &uploadCfg.Volume, "volume", "", true, "")
	switches.addFlag(uploadCmd, &uploadCfg.Subdir, "subdir", "", false, "")
	switches.addFlag(uploadCmd, &uploadCfg.MaxRetries, "max-retries", strconv.Itoa(constants.GenieMaxRetriesDefault), false, "")
	switches.addFlag(uploadCmd, &uploadCfg.LogLevel, "log-level", "warn", false, "")
}
