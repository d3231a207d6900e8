package components

import (
	"context"
	"sync"

	"github.com/relloyd/geniepipe/helper"
	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/stream"
	td "github.com/relloyd/geniepipe/table-definition"
)

// MemoryTableWriter implements TableWriter by holding tables in memory.
type MemoryTableWriter struct {
	log    logger.Logger
	mu     sync.Mutex
	tables map[string]*memoryTable
}

type memoryTable struct {
	keys []string
	rows map[string]stream.Record
}

func NewMemoryTableWriter(log logger.Logger) *MemoryTableWriter {
	return &MemoryTableWriter{log: log, tables: make(map[string]*memoryTable)}
}

func (w *MemoryTableWriter) Merge(ctx context.Context, sch *td.Schema, rows []stream.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := w.tables[sch.Table]
	if !ok {
		t = &memoryTable{rows: make(map[string]stream.Record)}
		w.tables[sch.Table] = t
	}
	for _, row := range rows {
		k := helper.GetStringFromInterfaceUseUtcTime(w.log, row.GetData(sch.Key))
		if _, ok := t.rows[k]; !ok {
			t.keys = append(t.keys, k)
		}
		t.rows[k] = row.Clone()
	}
	return nil
}

// Rows returns copies of the rows of table in the order their keys were first inserted.
func (w *MemoryTableWriter) Rows(table string) []stream.Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := w.tables[table]
	if !ok {
		return nil
	}
	retval := make([]stream.Record, 0, len(t.keys))
	for _, k := range t.keys {
		retval = append(retval, t.rows[k].Clone())
	}
	return retval
}
