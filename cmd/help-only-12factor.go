package cmd

import (
	"fmt"

	"github.com/relloyd/geniepipe/constants"
	"github.com/spf13/cobra"
)

var twelveFactorCmd = &cobra.Command{
	Use:   "12f",
	Short: `View help notes for running in Twelve-Factor mode`,
	Long: fmt.Sprintf(`
GeniePipe can be controlled by environment variables, which suits schedulers, 
containers and AWS Lambda.

To enable Twelve-Factor mode, set environment variable %[1]s_12FACTOR_MODE=1. 
To run as an AWS Lambda function handler, set %[1]s_LAMBDA_MODE=1 instead.
%[1]s_COMMAND chooses one of: ingest, rollup or ddl.
To supply flags documented by the regular command-line usage, set an 
equivalent environment variable using the following convention: 

<%[1]s>_<flag long-name in upper case with underscores>

For example, this will ingest all Genie activity into a Databricks schema and 
archive the raw pages in S3:

export %[1]s_12FACTOR_MODE=1
export %[1]s_LOG_LEVEL=info
export %[1]s_COMMAND=ingest
export %[1]s_SOURCE_DSN='https://token:<pat>@adb-123.azuredatabricks.net'
export %[1]s_TARGET_TYPE=databricks
export %[1]s_TARGET_DSN='databricks://token:<pat>@adb-123.azuredatabricks.net/sql/1.0/warehouses/abc'
export %[1]s_TARGET_OBJECT=main.genie
export %[1]s_ARCHIVE_DSN=s3://my-bucket/genie
export %[1]s_ARCHIVE_REGION=eu-west-2
export %[1]s_PAGE_SIZE=50
export %[1]s_SKIP_ROLLUPS=false

Then execute the CLI tool without any arguments or flags to kick off the pipeline.
`, constants.EnvVarPrefix),
}

func init() {
	rootCmd.AddCommand(twelveFactorCmd)
}
