package cmd

import (
	"github.com/relloyd/geniepipe/constants"
)

func init() {
	configConnAddCmd.AddCommand(newConnAddCmd(constants.ConnectionTypeWorkspace,
		"Add a Databricks workspace connection",
		`https://token:<personal-access-token>@<workspace-host>

The workspace is the source of Genie spaces, conversations, messages and users, and 
the destination of 'gp upload'.
`))
	configConnAddCmd.AddCommand(newConnAddCmd(constants.ConnectionTypeDatabricks,
		"Add a Databricks SQL warehouse connection",
		`databricks://token:<personal-access-token>@<workspace-host>[:443]/sql/1.0/warehouses/<warehouse-id>[?catalog=<catalog>&schema=<schema>]
`))
}
