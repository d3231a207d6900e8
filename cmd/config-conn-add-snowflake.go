package cmd

import (
	"github.com/relloyd/geniepipe/constants"
)

func init() {
	configConnAddCmd.AddCommand(newConnAddCmd(constants.ConnectionTypeSnowflake,
		"Add a Snowflake connection",
		`snowflake://<user>:<password>@<account>/<database-name>?schema=<schema>&warehouse=<warehouse>&role=<role>
`))
}
