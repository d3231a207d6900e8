package actions

import (
	"fmt"
	"reflect"

	"github.com/relloyd/geniepipe/constants"
)

type SrcAndTgtConnections struct {
	Connections  ConnectionHandler
	SourceString ConnectionObject
	TargetString ConnectionObject
}

type Action struct {
	FnAction   func(actionCfg interface{}) error                         // the function to execute the action
	ActionCfg  interface{}                                               // the config struct to pass to the FnAction
	FnSetupCfg func(genericCfg interface{}, actionCfg interface{}) error // the function to convert generic cfg to action-specific config for the FnAction
}

// ActionLauncher will:
// 1) call the function fnActionGetter to find the Action{} based on the sourceType and targetType strings supplied.
// 2) Once it has the Action{}, it calls setup function Action.FnSetupCfg() to populate Action.ActionCfg{}.
// 3) Then it can start the action by calling Action.FnAction().
func ActionLauncher(
	cfg interface{},
	fnActionGetter func(sourceType string, targetType string) (Action, error),
	sourceType string,
	targetType string) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("expected pointer to config in variable cfg to be supplied to ActionLauncher")
	}
	// Fetch the action.
	a, err := fnActionGetter(sourceType, targetType)
	if err != nil {
		return err
	}
	// Populate the action's config struct using the generic.
	if err = a.FnSetupCfg(cfg, a.ActionCfg); err != nil {
		return err
	}
	// Run the action.
	return a.FnAction(a.ActionCfg)
}

func ingestAction() Action {
	return Action{FnAction: RunIngest, ActionCfg: &IngestConfig{}, FnSetupCfg: SetupIngest}
}

func rollupAction() Action {
	return Action{FnAction: RunRollup, ActionCfg: &IngestConfig{}, FnSetupCfg: SetupIngest}
}

func ddlAction() Action {
	return Action{FnAction: RunDDL, ActionCfg: &IngestConfig{}, FnSetupCfg: SetupIngest}
}

// ActionFuncs is a register of all supported actions keyed by command, then by <src type>-<tgt type>.
// Note that keys in the final map[string]Action are used to validate DSN-type database connections before
// they are added. See RunConnectionAdd().
var ActionFuncs = map[string]map[string]Action{
	constants.ActionFuncsCommandIngest: { // command...
		"workspace-databricks":     ingestAction(),
		"workspace-snowflake":      ingestAction(),
		"workspace-sqlserver":      ingestAction(),
		"workspace-postgres":       ingestAction(),
		"workspace-duckdb":         ingestAction(),
		"workspace-netezza":        ingestAction(),
		"workspace-oracle":         ingestAction(),
		"workspace-odbc+sqlserver": ingestAction(),
		"workspace-csv":            ingestAction(),
	},
	constants.ActionFuncsCommandRollup: {
		// Rollups need SQL so CSV targets are excluded.
		"workspace-databricks":     rollupAction(),
		"workspace-snowflake":      rollupAction(),
		"workspace-sqlserver":      rollupAction(),
		"workspace-postgres":       rollupAction(),
		"workspace-duckdb":         rollupAction(),
		"workspace-netezza":        rollupAction(),
		"workspace-oracle":         rollupAction(),
		"workspace-odbc+sqlserver": rollupAction(),
	},
	constants.ActionFuncsCommandDDL: {
		"workspace-databricks":     ddlAction(),
		"workspace-snowflake":      ddlAction(),
		"workspace-sqlserver":      ddlAction(),
		"workspace-postgres":       ddlAction(),
		"workspace-duckdb":         ddlAction(),
		"workspace-netezza":        ddlAction(),
		"workspace-oracle":         ddlAction(),
		"workspace-odbc+sqlserver": ddlAction(),
	},
}

func getAction(command string, sourceType string, targetType string) (Action, error) {
	retval, ok := ActionFuncs[command][sourceType+"-"+targetType]
	if !ok {
		return Action{}, fmt.Errorf("unsupported %v action for source type %q and target type %q", command, sourceType, targetType)
	}
	return retval, nil
}

// GetIngestAction returns the "ingest" Action based on sourceType and targetTypes supplied.
func GetIngestAction(sourceType string, targetType string) (Action, error) {
	return getAction(constants.ActionFuncsCommandIngest, sourceType, targetType)
}

// GetRollupAction returns the "rollup" Action based on sourceType and targetTypes supplied.
func GetRollupAction(sourceType string, targetType string) (Action, error) {
	return getAction(constants.ActionFuncsCommandRollup, sourceType, targetType)
}

// GetDDLAction returns the "ddl" Action. The source type is ignored since DDL only needs the target.
func GetDDLAction(_ string, targetType string) (Action, error) {
	return getAction(constants.ActionFuncsCommandDDL, constants.ConnectionTypeWorkspace, targetType)
}
