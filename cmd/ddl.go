package cmd

import (
	"fmt"

	"github.com/relloyd/geniepipe/actions"
	"github.com/relloyd/geniepipe/constants"
	"github.com/spf13/cobra"
)

var ddlCfg = actions.RunConfig{}

var ddlCmd = &cobra.Command{
	Use:   "ddl " + argsTargetTxt,
	Short: "Print or execute the DDL of the target tables",
	Long: fmt.Sprintf(`Generate CREATE statements for the schema and the tables written by 'gp ingest'.
Statements are printed to STDOUT unless --execute-ddl is set, in which case they are run 
against the target and the resulting tables are checked. Rollup tables are created by 
'gp rollup'. Supported target types are:

%v`, actions.GetSupportedTargetTypes(constants.ActionFuncsCommandDDL)),
	Args: getTargetArgsFunc(&ddlCfg.TargetString),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runDDL()
	},
}

func runDDL() error {
	return launchRunConfig(constants.ActionFuncsCommandDDL, &ddlCfg, actions.GetDDLAction)
}

func init() {
	rootCmd.AddCommand(ddlCmd)
	ddlCmd.Flags().SortFlags = false
	switches.addFlag(ddlCmd, &ddlCfg.ExecuteDDL, "execute-ddl", "", false, "")
	switches.addFlag(ddlCmd, &ddlCfg.LogLevel, "log-level", "warn", false, "")
	ddlCfg.MissingKeyPolicy = constants.MissingKeyPolicyQuarantine
}
