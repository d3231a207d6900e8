package shared

import (
	"context"
	"database/sql"
	"errors"

	relloyd "github.com/relloyd/go-sql/database/sql"
)

// GpConnection is a wrapper around either:
// 1) Go native sql.DB
// 2) relloyd/go-sql.DB, which is what the Oracle plugin opens
// It also adds the DmlGenerator for the database type so callers can build upserts in the right dialect.
type GpConnection struct {
	DbRelloyd *relloyd.DB
	DbSql     *sql.DB
	Dml       DmlGenerator
	DbType    string
}

// NewGpConnection wraps db in a Connector using the SQL dialect of dbType.
func NewGpConnection(db *sql.DB, dbType string) (*GpConnection, error) {
	d, err := GetDialect(dbType)
	if err != nil {
		return nil, err
	}
	return &GpConnection{DbSql: db, DbType: dbType, Dml: &DmlGeneratorTxtBatch{Dialect: d}}, nil
}

// Connector:

func (c *GpConnection) Begin() (Transacter, error) {
	return c.BeginTx(context.Background())
}

func (c *GpConnection) BeginTx(ctx context.Context) (Transacter, error) {
	if c.DbRelloyd == nil && c.DbSql == nil {
		return nil, errors.New("GpConnection was not configured correctly: both DbSql and DbRelloyd are missing")
	}
	if c.DbRelloyd != nil { // if we're using relloyd/go-sql...
		tx, err := c.DbRelloyd.BeginTx(ctx, nil)
		return &GpTx{txRelloyd: tx}, err
	}
	tx, err := c.DbSql.BeginTx(ctx, nil)
	return &GpTx{txSql: tx}, err
}

func (c *GpConnection) Exec(query string, args ...interface{}) (Result, error) {
	return c.ExecContext(context.Background(), query, args...)
}

func (c *GpConnection) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	if c.DbRelloyd != nil {
		return c.DbRelloyd.ExecContext(ctx, query, args...)
	}
	return c.DbSql.ExecContext(ctx, query, args...)
}

func (c *GpConnection) Query(query string, args ...interface{}) (*GpRows, error) {
	return c.QueryContext(context.Background(), query, args...)
}

func (c *GpConnection) QueryContext(ctx context.Context, query string, args ...interface{}) (*GpRows, error) {
	if c.DbRelloyd != nil {
		r, err := c.DbRelloyd.QueryContext(ctx, query, args...)
		return &GpRows{rowsRelloyd: r, useRelloyd: true}, err
	}
	r, err := c.DbSql.QueryContext(ctx, query, args...)
	return &GpRows{rowsSql: r}, err
}

func (c *GpConnection) Close() {
	if c.DbRelloyd != nil {
		_ = c.DbRelloyd.Close()
	} else if c.DbSql != nil {
		_ = c.DbSql.Close()
	}
}

func (c *GpConnection) GetDmlGenerator() DmlGenerator {
	return c.Dml
}

func (c *GpConnection) GetType() string {
	return c.DbType
}

// Transacter:

type GpTx struct {
	txRelloyd *relloyd.Tx
	txSql     *sql.Tx
}

func (t *GpTx) Exec(query string, args ...interface{}) (Result, error) {
	return t.ExecContext(context.Background(), query, args...)
}

func (t *GpTx) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	if t.txRelloyd != nil {
		return t.txRelloyd.ExecContext(ctx, query, args...)
	}
	return t.txSql.ExecContext(ctx, query, args...)
}

func (t *GpTx) Commit() error {
	if t.txRelloyd != nil {
		return t.txRelloyd.Commit()
	}
	return t.txSql.Commit()
}

func (t *GpTx) Rollback() error {
	if t.txRelloyd != nil {
		return t.txRelloyd.Rollback()
	}
	return t.txSql.Rollback()
}

// Rows:

type GpRows struct {
	rowsRelloyd *relloyd.Rows
	rowsSql     *sql.Rows
	useRelloyd  bool
}

func (r *GpRows) Close() error {
	if r.useRelloyd {
		return r.rowsRelloyd.Close()
	}
	return r.rowsSql.Close()
}

func (r *GpRows) Columns() ([]string, error) {
	if r.useRelloyd {
		return r.rowsRelloyd.Columns()
	}
	return r.rowsSql.Columns()
}

func (r *GpRows) Err() error {
	if r.useRelloyd {
		return r.rowsRelloyd.Err()
	}
	return r.rowsSql.Err()
}

func (r *GpRows) Next() bool {
	if r.useRelloyd {
		return r.rowsRelloyd.Next()
	}
	return r.rowsSql.Next()
}

func (r *GpRows) Scan(dest ...interface{}) error {
	if r.useRelloyd {
		return r.rowsRelloyd.Scan(dest...)
	}
	return r.rowsSql.Scan(dest...)
}
