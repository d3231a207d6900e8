package cmd

import (
	"fmt"

	"github.com/relloyd/geniepipe/actions"
	"github.com/relloyd/geniepipe/constants"
	"github.com/spf13/cobra"
)

var rollupCfg = actions.RunConfig{}

var rollupCmd = &cobra.Command{
	Use:   "rollup " + argsTargetTxt,
	Short: "Rebuild the rollup tables",
	Long: fmt.Sprintf(`Rebuild the rollup tables from the ingested tables already in the target schema:

  g_conversations_daily
  g_unique_creators_daily
  g_top_creators
  g_messages_per_conversation
  g_conversation_hour_histogram

Each table is replaced in full. Supported target types are:

%v`, actions.GetSupportedTargetTypes(constants.ActionFuncsCommandRollup)),
	Args: getTargetArgsFunc(&rollupCfg.TargetString),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runRollup()
	},
}

func runRollup() error {
	return launchRunConfig(constants.ActionFuncsCommandRollup, &rollupCfg, actions.GetRollupAction)
}

func init() {
	rootCmd.AddCommand(rollupCmd)
	rollupCmd.Flags().SortFlags = false
	addRollupSettingsFlags(rollupCmd, &rollupCfg.IngestSettings)
	switches.addFlag(rollupCmd, &rollupCfg.StatsDumpFrequencySeconds, "stats", "0", false, "")
	switches.addFlag(rollupCmd, &rollupCfg.LogLevel, "log-level", "info", false, "")
	switches.addFlag(rollupCmd, &rollupCfg.ExportConfigType, "output", "", false, "")
	// The missing-key policy is validated for every action.
	rollupCfg.MissingKeyPolicy = constants.MissingKeyPolicyQuarantine
}
