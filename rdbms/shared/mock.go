package shared

import (
	"context"
	"errors"
	"sync"

	"github.com/relloyd/geniepipe/logger"
)

const mockOutputChanSize = 1000

// MockStatement is a statement captured by MockConnectionWithMockTx.
type MockStatement struct {
	Sql  string
	Args []interface{}
}

// MockConnectionWithMockTx implements Connector without a database.
// Every statement executed is captured and also sent to OutputChan, if there is room, so tests can validate SQL.
type MockConnectionWithMockTx struct {
	OutputChan chan string
	Dml        DmlGenerator
	DbType     string
	ExecErr    error // returned by every Exec when set
	Statements []MockStatement
	Commits    int
	Rollbacks  int
	log        logger.Logger
	mu         sync.Mutex
}

// NewMockConnectionWithMockTx returns a mock Connector that generates SQL in the dialect of dbType.
func NewMockConnectionWithMockTx(log logger.Logger, dbType string) (*MockConnectionWithMockTx, chan string) {
	c := &MockConnectionWithMockTx{
		OutputChan: make(chan string, mockOutputChanSize),
		Dml:        &DmlGeneratorTxtBatch{Dialect: MustGetDialect(dbType)},
		DbType:     dbType,
		log:        log,
	}
	return c, c.OutputChan
}

func (c *MockConnectionWithMockTx) capture(query string, args []interface{}) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ExecErr != nil {
		return nil, c.ExecErr
	}
	c.log.Debug("mock exec: ", query)
	c.Statements = append(c.Statements, MockStatement{Sql: query, Args: args})
	select {
	case c.OutputChan <- query:
	default:
	}
	return mockResult{rows: 1}, nil
}

// GetStatements returns a copy of the statements captured so far.
func (c *MockConnectionWithMockTx) GetStatements() []MockStatement {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]MockStatement(nil), c.Statements...)
}

func (c *MockConnectionWithMockTx) Begin() (Transacter, error) {
	return c.BeginTx(context.Background())
}

func (c *MockConnectionWithMockTx) BeginTx(_ context.Context) (Transacter, error) {
	return &mockTx{conn: c}, nil
}

func (c *MockConnectionWithMockTx) Exec(query string, args ...interface{}) (Result, error) {
	return c.capture(query, args)
}

func (c *MockConnectionWithMockTx) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.capture(query, args)
}

func (c *MockConnectionWithMockTx) Query(query string, args ...interface{}) (*GpRows, error) {
	return nil, errors.New("query is not supported by the mock connection")
}

func (c *MockConnectionWithMockTx) QueryContext(_ context.Context, query string, args ...interface{}) (*GpRows, error) {
	return c.Query(query, args...)
}

func (c *MockConnectionWithMockTx) Close() {}

func (c *MockConnectionWithMockTx) GetType() string {
	return c.DbType
}

func (c *MockConnectionWithMockTx) GetDmlGenerator() DmlGenerator {
	return c.Dml
}

type mockTx struct {
	conn *MockConnectionWithMockTx
}

func (t *mockTx) Exec(query string, args ...interface{}) (Result, error) {
	return t.conn.capture(query, args)
}

func (t *mockTx) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	return t.conn.ExecContext(ctx, query, args...)
}

func (t *mockTx) Commit() error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	t.conn.Commits++
	return nil
}

func (t *mockTx) Rollback() error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	t.conn.Rollbacks++
	return nil
}

type mockResult struct {
	rows int64
}

func (r mockResult) LastInsertId() (int64, error) {
	return 0, nil
}

func (r mockResult) RowsAffected() (int64, error) {
	return r.rows, nil
}
