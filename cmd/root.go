package cmd

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

var (
	// Default values may be set at compile time.
	version          = "0.1.0"
	buildDate        = "2026-01-01T00:00+0000"
	osArch           = "linux"
	stackDumpOnPanic bool
)

var rootCmd = &cobra.Command{
	Use: "gp",
	Long: `
   ____            _        ____  _
  / ___| ___ _ __ (_) ___  |  _ \(_)_ __   ___
 | |  _ / _ \ '_ \| |/ _ \ | |_) | | '_ \ / _ \
 | |_| |  __/ | | | |  __/ |  __/| | |_) |  __/
  \____|\___|_| |_|_|\___| |_|   |_| .__/ \___|
                                   |_|

GeniePipe collects usage metrics from Databricks Genie spaces. It pages through the
spaces, conversations and messages of a workspace, flattens them into tables, merges
them into a SQL warehouse and rebuilds a set of rollup tables for dashboards.
Run it from the command line, from a scheduler using environment variables, or start
an HTTP server to trigger and monitor runs.`,
}

func init() {
	cobra.EnableCommandSorting = false
	rootCmd.PersistentFlags().BoolVar(&stackDumpOnPanic, "print-stack", false, "Print a stack dump if there is a panic")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if twelveFactorMode { // if we are running based on environment variables...
		if lambdaMode { // if we should handle lambda execution...
			lambda.Start(func() error { return execute12FactorMode(twelveFactorActions) })
		} else if err := execute12FactorMode(twelveFactorActions); err != nil {
			// execute12FactorMode logs the error.
			os.Exit(1)
		}
		return
	}
	if err := rootCmd.Execute(); err != nil {
		// Execute() prints the error.
		os.Exit(1)
	}
}
