package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/relloyd/geniepipe/actions"
	"github.com/relloyd/geniepipe/aws/s3"
	"github.com/relloyd/geniepipe/config"
	c "github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/helper"
	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/rdbms"
	"github.com/relloyd/geniepipe/rdbms/shared"
)

// init will be called first due to the lexical order in which these functions are executed.
// This ensures the value of twelveFactorMode is set such that other init() functions that configure
// Cobra can do the job of processing all environment variables that would contain equivalent of the CLI flag
// structures used by the commands.
func init() {
	setupTwelveFactorMode()
}

// setupTwelveFactorMode will enable or disable 12 factor mode based on environment variables.
func setupTwelveFactorMode() {
	mode := os.Getenv(envVarTwelveFactorMode)
	lambdaMode = os.Getenv(envVarLambdaMode) != "" || strings.ToLower(mode) == "lambda"
	// Explicitly turn off these modes when the variables are missing since tests toggle them.
	twelveFactorMode = mode != "" || lambdaMode
}

const (
	envVarTwelveFactorMode       = c.EnvVarPrefix + "_" + "12FACTOR_MODE"
	envVarLambdaMode             = c.EnvVarPrefix + "_" + "LAMBDA_MODE"
	envVarCommand                = c.EnvVarPrefix + "_" + "COMMAND"
	envVarTargetObject           = c.EnvVarPrefix + "_" + "TARGET_OBJECT" // [<catalog>.]<schema>
	envVarTargetType             = c.EnvVarPrefix + "_" + "TARGET_TYPE"   // databricks|snowflake|etc
	envVarLogLevel               = c.EnvVarPrefix + "_" + "LOG_LEVEL"
	defaultConnectionNameSource  = "SOURCE"
	defaultConnectionNameTarget  = "TARGET"
	defaultConnectionNameArchive = "ARCHIVE"
)

var (
	twelveFactorMode bool // true if os env var envVarTwelveFactorMode is set
	lambdaMode       bool // true if os env var envVarLambdaMode is set or envVarTwelveFactorMode is "lambda"
	twelveFactorVars = map[string]string{
		envVarCommand: "",
		helper.GetDsnEnvVarName(defaultConnectionNameSource): "",
		envVarTargetType:   "",
		envVarTargetObject: "",
		helper.GetDsnEnvVarName(defaultConnectionNameTarget):     "",
		helper.GetDsnEnvVarName(defaultConnectionNameArchive):    "",
		helper.GetRegionEnvVarName(defaultConnectionNameArchive): "",
		envVarLogLevel: "",
	}
	twelveFactorVarsSensitive = map[string]string{ // DSNs carry tokens and passwords.
		helper.GetDsnEnvVarName(defaultConnectionNameSource):  "",
		helper.GetDsnEnvVarName(defaultConnectionNameTarget):  "",
		helper.GetDsnEnvVarName(defaultConnectionNameArchive): "",
	}
)

type twelveFactorAction struct {
	setupFunc  func(src string, tgt string, archive string)
	runnerFunc func() error
}

var twelveFactorActions = map[string]twelveFactorAction{
	c.ActionFuncsCommandIngest: {
		setupFunc: func(src string, tgt string, archive string) {
			ingestCfg.SourceString.ConnectionObject = src
			ingestCfg.TargetString.ConnectionObject = tgt
			ingestArchive = archive
		},
		runnerFunc: runIngest,
	},
	c.ActionFuncsCommandRollup: {
		setupFunc: func(src string, tgt string, archive string) {
			rollupCfg.TargetString.ConnectionObject = tgt
		},
		runnerFunc: runRollup,
	},
	c.ActionFuncsCommandDDL: {
		setupFunc: func(src string, tgt string, archive string) {
			ddlCfg.TargetString.ConnectionObject = tgt
		},
		runnerFunc: runDDL,
	},
}

func getConnectionHandler() actions.ConnectionHandler {
	if twelveFactorMode {
		return &TwelveFactorConnections{}
	}
	return config.Connections
}

func getConnectionGetterSetter() actions.ConnectionGetterSetter {
	if twelveFactorMode {
		fmt.Printf("Error: connections cannot be configured when %v is set (supply them using %v and %v instead)",
			envVarTwelveFactorMode,
			helper.GetDsnEnvVarName(defaultConnectionNameSource),
			helper.GetDsnEnvVarName(defaultConnectionNameTarget))
		os.Exit(1)
	}
	return config.Connections
}

func execute12FactorMode(acts map[string]twelveFactorAction) (err error) {
	logLevel := helper.ReadValueFromEnvWithDefault(envVarLogLevel, "warn")
	log := logger.NewLogger("geniepipe", logLevel, stackDumpOnPanic)
	log.Info("GeniePipe is running in 12 Factor mode...")
	for k := range twelveFactorVars { // for each env variable that we need...
		twelveFactorVars[k] = os.Getenv(k)
		if _, sensitive := twelveFactorVarsSensitive[k]; !sensitive {
			log.Debug(k, "=", twelveFactorVars[k])
		} else {
			log.Debug(k, "=", "<obfuscated>")
		}
	}
	a, ok := acts[strings.ToLower(twelveFactorVars[envVarCommand])]
	if !ok {
		err = fmt.Errorf("invalid command %q in %v", twelveFactorVars[envVarCommand], envVarCommand)
		log.Error(err.Error())
		return
	}
	// Setup the connection strings as Cobra would have with CLI args.
	tgt := defaultConnectionNameTarget
	if twelveFactorVars[envVarTargetObject] != "" {
		tgt = fmt.Sprintf("%v.%v", defaultConnectionNameTarget, twelveFactorVars[envVarTargetObject]) // e.g. TARGET.main.genie
	}
	archive := ""
	if twelveFactorVars[helper.GetDsnEnvVarName(defaultConnectionNameArchive)] != "" {
		archive = defaultConnectionNameArchive
	}
	a.setupFunc(defaultConnectionNameSource, tgt, archive)
	if err = a.runnerFunc(); err != nil {
		log.Error("Error: ", err)
	}
	return err
}

type TwelveFactorConnections struct{} // implements interfaces in module, actions.

// GetConnectionType is for use when running in twelveFactorMode.
// The source is always a workspace and the archive is always S3.
// The target type is read from the global map twelveFactorVars[] which should have been setup using
// environment variables.
func (t *TwelveFactorConnections) GetConnectionType(connectionName string) (connectionType string, err error) {
	switch connectionName {
	case defaultConnectionNameSource:
		return c.ConnectionTypeWorkspace, nil
	case defaultConnectionNameArchive:
		return c.ConnectionTypeS3, nil
	case defaultConnectionNameTarget:
		connectionType = twelveFactorVars[envVarTargetType]
		if connectionType == "" {
			err = fmt.Errorf("missing value for %v", envVarTargetType)
		}
		return
	default:
		return "", fmt.Errorf("unexpected connectionName %v while running in twelveFactorMode", connectionName)
	}
}

// GetConnectionDetails fetches the DSN of connectionName from the environment, validates it using the
// connection type and returns the generic connection details.
func (t *TwelveFactorConnections) GetConnectionDetails(connectionName string) (*shared.ConnectionDetails, error) {
	var dsn, region string
	kDsn := helper.GetDsnEnvVarName(connectionName)
	if err := helper.ReadValueFromEnv(kDsn, &dsn); err != nil { // if we cannot find the DSN in the environment...
		return nil, fmt.Errorf("unable to find value for %v in the environment: %w", kDsn, err)
	}
	connType, err := t.GetConnectionType(connectionName)
	if err != nil {
		return nil, err
	}
	if connType == c.ConnectionTypeS3 {
		region = helper.ReadValueFromEnvWithDefault(helper.GetRegionEnvVarName(connectionName), "")
	}
	v, err := newConnectionValidator(connType, dsn, region)
	if err != nil {
		return nil, err
	}
	if err = v.Parse(); err != nil {
		return nil, fmt.Errorf("bad value for %v: %w", kDsn, err)
	}
	if connType, err = v.GetScheme(); err != nil {
		return nil, err
	}
	return &shared.ConnectionDetails{
		Type:        connType,
		LogicalName: connectionName,
		Data:        v.GetMap(make(map[string]string)),
	}, nil
}

// newConnectionValidator returns the connection details type that validates and saves a DSN of type connType.
func newConnectionValidator(connType string, dsn string, region string) (actions.ConnectionValidator, error) {
	switch connType {
	case c.ConnectionTypeWorkspace:
		return shared.WorkspaceConnectionDetails{Dsn: dsn}, nil
	case c.ConnectionTypeDatabricks:
		return shared.DatabricksConnectionDetails{Dsn: dsn}, nil
	case c.ConnectionTypeSnowflake:
		return rdbms.SnowflakeConnectionDetails{Dsn: dsn}, nil
	case c.ConnectionTypeNetezza:
		return shared.NetezzaConnectionDetails{Dsn: dsn}, nil
	case c.ConnectionTypeOracle:
		return shared.OracleConnectionDetails{Dsn: dsn}, nil
	case c.ConnectionTypeCsv, c.ConnectionTypeDuckDb:
		return shared.FileConnectionDetails{Type: connType, Dsn: dsn}, nil
	case c.ConnectionTypeS3:
		b, err := s3.ParseDSN(dsn, region)
		if err != nil {
			return nil, err
		}
		return b, nil
	default: // fallback to the DSN connection type.
		if !actions.IsSupportedConnectionType(connType) && connType != c.ConnectionTypeOdbc {
			return nil, fmt.Errorf("unsupported connection type %q", connType)
		}
		return &shared.DsnConnectionDetails{Dsn: dsn}, nil
	}
}
