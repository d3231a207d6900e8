package rdbms

import (
	"fmt"

	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/rdbms/shared"
	"golang.org/x/net/context"
)

// SqlQuery runs sqltext against db and sends the column names followed by each row to i.
func SqlQuery(ctx context.Context, log logger.Logger, db shared.Connector, sqltext string, i shared.SqlResultHandler, args ...interface{}) error {
	rows, err := db.QueryContext(ctx, sqltext, args...)
	if err != nil {
		return fmt.Errorf("error during database query using SQL: '%v': %w", sqltext, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("error fetching columns: %w", err)
	}
	log.Debug("query columns = ", cols)
	// Scan the values dynamically.
	numCols := len(cols)
	scanPtrs := make([]interface{}, numCols)
	scanVals := make([]interface{}, numCols)
	for idx := 0; idx < numCols; idx++ {
		scanPtrs[idx] = &scanVals[idx]
	}
	header := make([]interface{}, numCols)
	for idx := range cols {
		header[idx] = cols[idx]
	}
	if err = i.HandleHeader(header); err != nil {
		return err
	}
	for rows.Next() {
		if err = ctx.Err(); err != nil { // quit if asked to.
			return err
		}
		if err = rows.Scan(scanPtrs...); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}
		row := make([]interface{}, numCols)
		copy(row, scanVals)
		if err = i.HandleRow(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

// rowCollector is a SqlResultHandler that keeps every row.
type rowCollector struct {
	header []string
	rows   [][]interface{}
}

func (c *rowCollector) HandleHeader(h []interface{}) error {
	for _, v := range h {
		c.header = append(c.header, fmt.Sprintf("%v", v))
	}
	return nil
}

func (c *rowCollector) HandleRow(r []interface{}) error {
	c.rows = append(c.rows, r)
	return nil
}

// QueryRows runs sqltext and returns the column names and all rows.
func QueryRows(ctx context.Context, log logger.Logger, db shared.Connector, sqltext string, args ...interface{}) ([]string, [][]interface{}, error) {
	c := &rowCollector{}
	if err := SqlQuery(ctx, log, db, sqltext, c, args...); err != nil {
		return nil, nil, err
	}
	return c.header, c.rows, nil
}
