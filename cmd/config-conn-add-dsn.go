package cmd

import (
	"github.com/relloyd/geniepipe/constants"
)

func init() {
	configConnAddCmd.AddCommand(newConnAddCmd(constants.ConnectionTypeSqlServer,
		"Add a SQL Server connection",
		`sqlserver://<user>:<pass>@<host>/<dbname>[?<opt1>=<value1>&<opt2>=<value1>&...]
`))
	configConnAddCmd.AddCommand(newConnAddCmd(constants.ConnectionTypePostgres,
		"Add a PostgreSQL connection",
		`postgres://<user>:<pass>@<host>[:<port>]/<dbname>[?sslmode=disable&...]
`))
}
