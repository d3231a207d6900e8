package shared

import (
	"context"

	"github.com/relloyd/geniepipe/logger"
)

// Connector abstracts all access to Go SQL functionality.
type Connector interface {
	// Go SQL entry points:
	Begin() (Transacter, error)
	BeginTx(ctx context.Context) (Transacter, error)
	Exec(query string, args ...interface{}) (Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error)
	Query(query string, args ...interface{}) (*GpRows, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*GpRows, error)
	Close()
	// geniepipe functionality:
	GetType() string
	GetDmlGenerator() DmlGenerator
}

type Transacter interface {
	Exec(query string, args ...interface{}) (Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error)
	Commit() error
	Rollback() error
}

// Result abstracts Go SQL library return values so we can use both relloyd/go-sql and the native Go SQL library.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

// DmlGenerator builds statements in the SQL dialect of a Connector.
type DmlGenerator interface {
	NewMergeGenerator(cfg *SqlStatementGeneratorConfig) SqlStmtTxtBatcher
	GetDialect() *SqlDialect
}

type SqlStmtGenerator interface {
	GetStatement() string
}

// SqlStmtTxtBatcher is used to combine DML statements that affect individual records into one statement, aiming
// to reduce network round trips.
type SqlStmtTxtBatcher interface {
	SqlStmtGenerator
	InitBatch(batchSize int)                             // reset variables and preallocate slices for the given batch size.
	AddValuesToBatch(values []interface{}) (bool, error) // add values to SQL statement.
	GetValues() []interface{}                            // get all values added to the batch so they can be supplied as args to exec the SQL returned by GetStatement().
}

type SqlResultHandler interface {
	HandleHeader(i []interface{}) error
	HandleRow(i []interface{}) error
}

// Oracle plugin interfaces.

type OracleConnector interface {
	NewOracleConnection(log logger.Logger, d *DsnConnectionDetails) (Connector, error)
}

// ODBC plugin interfaces.

type OdbcConnector interface {
	NewOdbcConnection(log logger.Logger, d *DsnConnectionDetails) (Connector, error)
}
