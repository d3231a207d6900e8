package cmd

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/relloyd/geniepipe/actions"
	"github.com/relloyd/geniepipe/config"
	"github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/helper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	argsSourceTxt = "<workspace-connection>"
	argsTargetTxt = "<target-connection>[.[<catalog>.]<schema>]"
)

type cliFlag struct {
	name      string // name of flag
	val       string // default value
	shortHand string // single character name for the flag
	desc      string // description of the flag; the long text
}

type cliFlags map[string]cliFlag

var switches = cliFlags{
	"mock": cliFlag{name: "mock", shortHand: "m", desc: "mock switch for testing"},
	"page-size": cliFlag{name: "page-size", shortHand: "P",
		desc: "The number of records requested per page from the Genie listing endpoints"},
	"throttle": cliFlag{name: "throttle", shortHand: "T",
		desc: "The minimum number of milliseconds between requests to the workspace"},
	"max-retries": cliFlag{name: "max-retries", shortHand: "r",
		desc: "The number of times a request is retried after HTTP 429 or 5xx responses"},
	"commit-batch-size": cliFlag{name: "commit-batch-size", shortHand: "B",
		desc: "Number of rows merged into the target in one statement"},
	"missing-key-policy": cliFlag{name: "missing-key-policy", shortHand: "m",
		desc: "What to do with records missing a mandatory field: \"quarantine | drop | fail\""},
	"space-ids": cliFlag{name: "space-ids", shortHand: "i",
		desc: "Optional CSV of Genie space ids to ingest (default is all spaces)"},
	"space-filter": cliFlag{name: "space-filter", shortHand: "F",
		desc: "Optional JsonLogic rule applied to each space, e.g. '{\"in\":[\"Sales\",{\"var\":\"title\"}]}'.\n" +
			"Spaces are ingested when the rule is truthy"},
	"archive": cliFlag{name: "archive", shortHand: "a",
		desc: "Optional S3 <connection> in which to archive the raw pages fetched from the workspace"},
	"lookback-days": cliFlag{name: "lookback-days", shortHand: "d",
		desc: "The number of days of messages used by the rollups"},
	"short-lookback-days": cliFlag{name: "short-lookback-days", shortHand: "D",
		desc: "The number of days of messages used by the short window rollups"},
	"top-n": cliFlag{name: "top-n", shortHand: "n",
		desc: "The number of rows kept by the top creators rollup"},
	"skip-rollups": cliFlag{name: "skip-rollups", shortHand: "k",
		desc: "Skip rebuilding the rollup tables after the ingest"},
	"execute-ddl": cliFlag{name: "execute-ddl", shortHand: "e",
		desc: "Execute the generated DDL against the target connection (otherwise it's printed only)"},
	"output": cliFlag{name: "output", shortHand: "o",
		desc: "Specify \"yaml\" or \"json\" to print the run config instead of running it"},
	"log-level": cliFlag{name: "log-level", shortHand: "l",
		desc: "Log level: \"error | warn | info | debug\" where only step stats are \n" +
			"output at using \"warn\""},
	"stats": cliFlag{name: "stats", shortHand: "L",
		desc: "Number of seconds between dumping step statistics (use 0 to disable)"},
	"port": cliFlag{name: "port", shortHand: "p",
		desc: "Port to listen on"},
	"source": cliFlag{name: "source", shortHand: "s",
		desc: "Default workspace <connection> used by ingest requests that don't name one"},
	"target": cliFlag{name: "target", shortHand: "t",
		desc: "Default target <connection>.[<catalog>.]<schema> used by ingest requests that don't name one"},
	"file": cliFlag{name: "file", shortHand: "f",
		desc: "The local file to upload"},
	"volume": cliFlag{name: "volume", shortHand: "v",
		desc: "The Unity Catalog volume to upload to, of the form <catalog>.<schema>.<volume>"},
	"subdir": cliFlag{name: "subdir", shortHand: "s",
		desc: "Optional directory inside the volume"},
	"connection-name": cliFlag{name: "connection-name", shortHand: "c",
		desc: "Connection name referred to by commands"},
	"dsn": cliFlag{name: "dsn", shortHand: "d",
		desc: "Connect string"},
	"force-connection": cliFlag{name: "force", shortHand: "f",
		desc: "Allow overwrite of existing connections"},
	"s3-region": cliFlag{name: "s3-region", shortHand: "R",
		desc: "AWS S3 bucket region"},
}

// flagsWithoutDefaults identify a single invocation so saving them in config makes no sense.
var flagsWithoutDefaults = map[string]bool{
	"mock": true, "connection-name": true, "dsn": true, "force-connection": true, "s3-region": true, "file": true, "output": true,
}

// defaultableFlags maps each flag name that "config defaults add" accepts to its 12 factor env var.
func defaultableFlags() map[string]string {
	m := make(map[string]string, len(switches))
	for k, sw := range switches {
		if !flagsWithoutDefaults[k] {
			m[sw.name] = flagNameToEnvVar(sw.name)
		}
	}
	return m
}

// addFlag add a flag to cobra.Command c, based on the type of targetVar (which must be a pointer).
// The name of the flag is looked up in map, cliFlags.
// When running in twelveFactorMode, the targetVar is populated using the value of environment variable for the supplied
// name, or if not set then the supplied default value is used.
// When NOT running in twelveFactorMode, the default value is fetched from config if it exists else the supplied
// defaultValue is applied.
// The flag is marked as required in Cobra based on the value of required.
// Supply a value for desc2 to append to the existing description found in map cliFlags.
func (f *cliFlags) addFlag(c *cobra.Command, targetVar interface{}, name string, defaultValue string, required bool, desc2 string) {
	v := reflect.ValueOf(targetVar)
	if v.Kind() != reflect.Ptr {
		fmt.Println("error adding flag: targetVar must be a pointer")
		os.Exit(1)
	}
	sw := f.getCliFlag(name, defaultValue, getMainConfig)
	desc := sw.desc + desc2
	switch p := targetVar.(type) {
	case *string:
		if twelveFactorMode {
			*p = sw.val
		} else {
			c.Flags().StringVarP(p, sw.name, sw.shortHand, sw.val, desc)
			if sw.val != "" { // if there is a value via config or default...
				mustSetFlag(c.Flags(), sw.name, sw.val)
			}
		}
	case *bool:
		b := parseBoolFlag(sw.val)
		if twelveFactorMode {
			*p = b
		} else {
			c.Flags().BoolVarP(p, sw.name, sw.shortHand, b, desc)
			mustSetFlag(c.Flags(), sw.name, strconv.FormatBool(b))
		}
	case *int:
		defaultInt, err := strconv.Atoi(sw.val)
		if err != nil {
			fmt.Printf("the value for flag %q must be an integer: %v\n", sw.name, err)
			os.Exit(1)
		}
		if twelveFactorMode {
			*p = defaultInt
		} else {
			c.Flags().IntVarP(p, sw.name, sw.shortHand, defaultInt, desc)
			if sw.val != "" {
				mustSetFlag(c.Flags(), sw.name, sw.val)
			}
		}
	default:
		panic("Error: unhandled CLI flag target value type")
	}
	if required && !twelveFactorMode { // if the flag is required...
		_ = c.MarkFlagRequired(sw.name)
	}
}

// getCliFlag fetches the value of name from the environment, when running in twelveFactorMode,
// else read the Main config file to find it.
// If a value cannot be found then use the supplied defaultValue in its place.
func (f *cliFlags) getCliFlag(name string, defaultValue string, fnGetConfig func(key string, out interface{}) error) cliFlag {
	s, ok := (*f)[name]
	if !ok {
		panic(fmt.Sprintf("unregistered CLI flag, %q", name))
	}
	if twelveFactorMode { // if we should read env vars...
		if err := helper.ReadValueFromEnv(flagNameToEnvVar(s.name), &s.val); err != nil {
			s.val = defaultValue
		}
	} else { // else check the config file or apply default...
		err := fnGetConfig(s.name, &s.val)
		if errors.As(err, &config.KeyNotFoundError{}) || s.val == "" {
			s.val = defaultValue
		}
	}
	return s
}

func getMainConfig(key string, out interface{}) error {
	if config.Main == nil {
		return config.KeyNotFoundError{}
	}
	return config.Main.Get(key, out)
}

// parseBoolFlag treats any non-false value as true so GP_SKIP_ROLLUPS=1 works.
func parseBoolFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}

// flagNameToEnvVar will form a sanitised environment variable name using constants.EnvVarPrefix.
func flagNameToEnvVar(name string) string {
	return helper.GetEnvVarName(name)
}

func mustSetFlag(f *pflag.FlagSet, name string, val string) {
	if err := f.Set(name, val); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// addIngestSettingsFlags adds the flags that tune an ingest run to c.
func addIngestSettingsFlags(c *cobra.Command, s *actions.IngestSettings) {
	d := actions.NewDefaultIngestSettings()
	switches.addFlag(c, &s.PageSize, "page-size", strconv.Itoa(d.PageSize), false, "")
	switches.addFlag(c, &s.ThrottleMillis, "throttle", strconv.Itoa(d.ThrottleMillis), false, "")
	switches.addFlag(c, &s.MaxRetries, "max-retries", strconv.Itoa(d.MaxRetries), false, "")
	switches.addFlag(c, &s.CommitBatchSize, "commit-batch-size", strconv.Itoa(d.CommitBatchSize), false, "")
	switches.addFlag(c, &s.MissingKeyPolicy, "missing-key-policy", d.MissingKeyPolicy, false, "")
	switches.addFlag(c, &s.SpaceIds, "space-ids", "", false, "")
	switches.addFlag(c, &s.SpaceFilter, "space-filter", "", false, "")
	addRollupSettingsFlags(c, s)
	switches.addFlag(c, &s.SkipRollups, "skip-rollups", "", false, "")
}

// addRollupSettingsFlags adds the flags that tune the rollups to c.
func addRollupSettingsFlags(c *cobra.Command, s *actions.IngestSettings) {
	d := actions.NewDefaultIngestSettings()
	switches.addFlag(c, &s.LookbackDays, "lookback-days", strconv.Itoa(d.LookbackDays), false, "")
	switches.addFlag(c, &s.ShortLookbackDays, "short-lookback-days", strconv.Itoa(d.ShortLookbackDays), false, "")
	switches.addFlag(c, &s.TopN, "top-n", strconv.Itoa(d.TopN), false, "")
}

// getSourceTargetArgsFunc returns a func that cobra uses to validate that we have 2 args.
// It saves arg[0] as the workspace connection and arg[1] as the target.
func getSourceTargetArgsFunc(src *actions.ConnectionObject, tgt *actions.ConnectionObject) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("requires %v %v", argsSourceTxt, argsTargetTxt)
		}
		*src = actions.ConnectionObject{ConnectionObject: args[0]}
		*tgt = actions.ConnectionObject{ConnectionObject: args[1]}
		return nil
	}
}

// getTargetArgsFunc returns a func that cobra uses to validate that we have 1 arg.
// It saves arg[0] as the target.
func getTargetArgsFunc(tgt *actions.ConnectionObject) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("requires %v", argsTargetTxt)
		}
		*tgt = actions.ConnectionObject{ConnectionObject: args[0]}
		return nil
	}
}

// getConnectionArgsFunc returns a func that cobra uses to validate that we have 1 arg.
// It saves arg[0] as the connection name.
func getConnectionArgsFunc(name *string, argTxt string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("requires %v", argTxt)
		}
		*name = args[0]
		return nil
	}
}

// launchRunConfig runs the action registered for command using the connection types named in cfg.
func launchRunConfig(command string, cfg *actions.RunConfig, fnActionGetter func(string, string) (actions.Action, error)) error {
	cfg.Connections = getConnectionHandler()
	cfg.StackDumpOnPanic = stackDumpOnPanic
	srcType := constants.ConnectionTypeWorkspace
	if name := cfg.SourceString.GetConnectionName(); name != "" {
		t, err := cfg.Connections.GetConnectionType(name)
		if err != nil {
			return err
		}
		srcType = t
	}
	tgtType, err := cfg.Connections.GetConnectionType(cfg.TargetString.GetConnectionName())
	if err != nil {
		return err
	}
	if err = actions.ActionLauncher(cfg, fnActionGetter, srcType, tgtType); err != nil {
		return fmt.Errorf("%v: %w", command, err)
	}
	return nil
}
