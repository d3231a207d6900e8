package main

import (
	"github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/rdbms/shared"
	_ "github.com/relloyd/go-oci8"
	"github.com/relloyd/go-sql/database/sql"
)

// This plugin exports public symbol Exports with top-level functions bound to it.
// All functions that bind to this variable must live in here, not other files despite them
// belonging to the same main package. Code that loads the plugin is unable to successfully
// interface type check when functions live in other files.

type exports struct{}

var Exports exports

// NewOracleConnection opens the Oracle database in d via OCI.
// The caller should set NLS_LANG in its environment if required.
func (v exports) NewOracleConnection(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	oc, err := shared.OracleDsnToOracleConnectionDetails(d.Dsn) // for use in errors below with its String() method.
	if err != nil {
		return nil, err
	}
	dialect, err := shared.GetDialect(constants.ConnectionTypeOracle)
	if err != nil {
		return nil, err
	}
	conn := &shared.GpConnection{
		Dml:    &shared.DmlGeneratorTxtBatch{Dialect: dialect},
		DbType: constants.ConnectionTypeOracle,
	}
	conn.DbRelloyd, err = sql.Open("oci8", d.Dsn)
	if err != nil {
		return nil, err
	}
	if err = conn.DbRelloyd.Ping(); err != nil {
		_ = conn.DbRelloyd.Close()
		log.Error("unable to ping database ", oc, ": ", err)
		return nil, err
	}
	log.Info("Successful database connection to Oracle: ", oc)
	return conn, nil
}
