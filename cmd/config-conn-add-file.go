package cmd

import (
	"github.com/relloyd/geniepipe/constants"
)

func init() {
	configConnAddCmd.AddCommand(newConnAddCmd(constants.ConnectionTypeDuckDb,
		"Add a DuckDB database file connection",
		`duckdb://<path to database file>

Leave the path empty to use an in-memory database.
`))
	configConnAddCmd.AddCommand(newConnAddCmd(constants.ConnectionTypeCsv,
		"Add a CSV directory connection",
		`csv://<directory>[?gzip=true]

Ingest writes one file per table into the directory and replaces files written 
by earlier runs.
`))
}
