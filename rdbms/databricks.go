package rdbms

import (
	"database/sql"

	_ "github.com/databricks/databricks-sql-go"
	"github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/rdbms/shared"
)

// newDatabricksConnection opens the Databricks SQL warehouse specified in d.
func newDatabricksConnection(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	c := shared.DatabricksConnectionDetails{Dsn: d.Dsn}
	dsn, err := c.GetDriverDsn()
	if err != nil {
		return nil, err
	}
	log.Info("Opening database connection: ", c)
	db, err := sql.Open(constants.ConnectionTypeDatabricks, dsn)
	if err != nil {
		return nil, err
	}
	return pingAndWrap(log, db, constants.ConnectionTypeDatabricks, c)
}
