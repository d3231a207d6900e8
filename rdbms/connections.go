package rdbms

import (
	"database/sql"
	"fmt"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/lib/pq"
	"github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/rdbms/shared"
	"github.com/xo/dburl"
)

// supportedDsnConnectionTypes is a map where keys are the connections opened via dburl using Go native drivers.
var supportedDsnConnectionTypes = map[string]struct{}{
	constants.ConnectionTypeSqlServer: {},
	constants.ConnectionTypePostgres:  {},
}

// isSupportedConnection returns true if it can look up the supplied connection type in map
// supportedDsnConnectionTypes.
func isSupportedConnection(connectionType string) bool {
	_, ok := supportedDsnConnectionTypes[connectionType]
	return ok
}

// IsTableConnection returns true if connectionType can be used as a target for genie tables.
func IsTableConnection(connectionType string) bool {
	switch connectionType {
	case constants.ConnectionTypeDatabricks,
		constants.ConnectionTypeSnowflake,
		constants.ConnectionTypeNetezza,
		constants.ConnectionTypeOracle,
		constants.ConnectionTypeMockOracle,
		constants.ConnectionTypeDuckDb,
		constants.ConnectionTypeCsv:
		return true
	}
	return isSupportedConnection(connectionType) || isOdbcConnection(connectionType)
}

// OpenDbConnection opens a database connection using the supplied ConnectionDetails struct in c.
func OpenDbConnection(log logger.Logger, c shared.ConnectionDetails) (db shared.Connector, err error) {
	log.Debug("opening connection type ", c.Type, " with logicalName ", c.LogicalName) // don't log password details in c.Data!
	d := shared.GetDsnConnectionDetails(&c)
	switch c.Type {
	case constants.ConnectionTypeDatabricks:
		db, err = newDatabricksConnection(log, d)
	case constants.ConnectionTypeOracle:
		db, err = NewOracleConnection(log, d)
	case constants.ConnectionTypeSnowflake:
		db, err = newSnowflakeConnection(log, d)
	case constants.ConnectionTypeNetezza:
		db, err = newNetezzaConnection(log, d)
	case constants.ConnectionTypeDuckDb:
		db, err = newDuckDbConnection(log, d)
	case constants.ConnectionTypeMockOracle:
		db, _ = shared.NewMockConnectionWithMockTx(log, constants.ConnectionTypeOracle)
	default:
		if isSupportedConnection(c.Type) {
			db, err = newConnectionWithDsn(log, d)
		} else if isOdbcConnection(c.Type) {
			db, err = NewOdbcConnection(log, d)
		} else {
			err = fmt.Errorf("unsupported database type, %q", c.Type)
		}
	}
	return
}

func newConnectionWithDsn(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	log.Info("Opening database connection: ", d)
	u, err := dburl.Parse(d.Dsn)
	if err != nil { // if the DSN could not be parsed...
		return nil, fmt.Errorf("error parsing DSN %v: %w", d, err)
	}
	db, err := sql.Open(u.Driver, u.DSN)
	if err != nil {
		return nil, err
	}
	return pingAndWrap(log, db, u.OriginalScheme, d)
}

// pingAndWrap tests the connection in db and wraps it in a Connector using the dialect of dbType.
func pingAndWrap(log logger.Logger, db *sql.DB, dbType string, d fmt.Stringer) (shared.Connector, error) {
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to ping database %v: %w", d, err)
	}
	conn, err := shared.NewGpConnection(db, dbType)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("Successful connection to: ", d)
	return conn, nil
}
