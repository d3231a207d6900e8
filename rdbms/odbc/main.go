package main

import (
	"database/sql"
	"fmt"

	_ "github.com/alexbrainman/odbc"
	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/rdbms/shared"
	"github.com/xo/dburl"
)

// This plugin exports public symbol Exports with top-level functions bound to it.
// All functions that bind to this variable must live in here, not other files despite them
// belonging to the same main package. Code that loads the plugin is unable to successfully
// interface type check when functions live in other files.

type exports struct{}

var Exports exports

// NewOdbcConnection opens a DSN of the form odbc+<database>://... using the ODBC driver manager.
// Statements are generated in the SQL dialect of <database>.
func (v exports) NewOdbcConnection(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	log.Info("Opening database connection: ", d)
	u, err := dburl.Parse(d.Dsn)
	if err != nil { // if the DSN could not be parsed...
		return nil, fmt.Errorf("error parsing DSN %v: %w", d, err)
	}
	db, err := sql.Open(u.Driver, u.DSN)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	conn, err := shared.NewGpConnection(db, u.OriginalScheme)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("Successful connection to: ", d)
	return conn, nil
}
