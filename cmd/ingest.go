package cmd

import (
	"fmt"

	"github.com/relloyd/geniepipe/actions"
	"github.com/relloyd/geniepipe/constants"
	"github.com/spf13/cobra"
)

var ingestCfg = actions.RunConfig{}
var ingestArchive string

var ingestCmd = &cobra.Command{
	Use:   "ingest " + argsSourceTxt + " " + argsTargetTxt,
	Short: "Ingest Genie spaces, conversations and messages into a target",
	Long: fmt.Sprintf(`Page through the Genie spaces, conversations and messages of a workspace, 
flatten them and merge them into tables genie_spaces, genie_conversations and 
genie_messages of the target schema. Message authors are resolved via the workspace 
users API. The rollup tables are rebuilt at the end unless --skip-rollups is set.

Create the target tables first using 'gp ddl --execute-ddl'.
CSV targets write one file per table and take no schema. 

Supported target types are:

%v`, actions.GetSupportedTargetTypes(constants.ActionFuncsCommandIngest)),
	Args: getSourceTargetArgsFunc(&ingestCfg.SourceString, &ingestCfg.TargetString),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runIngest()
	},
}

func runIngest() error {
	ingestCfg.ArchiveString = actions.ConnectionObject{ConnectionObject: ingestArchive}
	return launchRunConfig(constants.ActionFuncsCommandIngest, &ingestCfg, actions.GetIngestAction)
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().SortFlags = false
	addIngestSettingsFlags(ingestCmd, &ingestCfg.IngestSettings)
	switches.addFlag(ingestCmd, &ingestArchive, "archive", "", false, "")
	switches.addFlag(ingestCmd, &ingestCfg.StatsDumpFrequencySeconds, "stats", "0", false, "")
	switches.addFlag(ingestCmd, &ingestCfg.LogLevel, "log-level", "info", false, "")
	switches.addFlag(ingestCmd, &ingestCfg.ExportConfigType, "output", "", false, "")
}
