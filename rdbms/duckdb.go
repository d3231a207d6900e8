package rdbms

import (
	"database/sql"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/rdbms/shared"
)

// duckDbPath is the DSN without its optional duckdb:// prefix.
// An empty path opens an in-memory database.
type duckDbPath string

func (p duckDbPath) String() string {
	if p == "" {
		return "duckdb in-memory database"
	}
	return "duckdb file " + string(p)
}

// GetDuckDbPath returns the database file of a DSN of the form duckdb://<path>.
func GetDuckDbPath(dsn string) string {
	return strings.TrimPrefix(dsn, constants.ConnectionTypeDuckDb+"://")
}

// newDuckDbConnection opens the DuckDB database file specified in d.
func newDuckDbConnection(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	p := duckDbPath(GetDuckDbPath(d.Dsn))
	log.Info("Opening database connection: ", p)
	db, err := sql.Open(constants.ConnectionTypeDuckDb, string(p))
	if err != nil {
		return nil, err
	}
	// DuckDB allows one writer per file.
	db.SetMaxOpenConns(1)
	return pingAndWrap(log, db, constants.ConnectionTypeDuckDb, p)
}
