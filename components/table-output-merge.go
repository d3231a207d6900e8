package components

import (
	"context"

	om "github.com/cevaris/ordered_map"
	"github.com/pkg/errors"
	c "github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/rdbms"
	"github.com/relloyd/geniepipe/rdbms/shared"
	s "github.com/relloyd/geniepipe/stats"
	"github.com/relloyd/geniepipe/stream"
	td "github.com/relloyd/geniepipe/table-definition"
)

type TableMergeConfig struct {
	Log           logger.Logger
	OutputDb      shared.Connector // target database connection for writes.
	Namespace     rdbms.Namespace  // [catalog.]schema holding the tables.
	ExecBatchSize int              // rows per MERGE statement.
	Stats         s.StatsManager   // optional; a step watcher is added per table.
}

// TableMerge implements TableWriter using batched MERGE statements in the dialect of the connection.
type TableMerge struct {
	log           logger.Logger
	outputDb      shared.Connector
	namespace     rdbms.Namespace
	mapper        td.Mapper
	execBatchSize int
	stats         s.StatsManager
}

func NewTableMerge(cfg TableMergeConfig) (*TableMerge, error) {
	if cfg.OutputDb == nil {
		return nil, errors.New("missing db connection for table merge")
	}
	m, err := td.GetMapper(cfg.OutputDb.GetType())
	if err != nil {
		return nil, err
	}
	if cfg.ExecBatchSize <= 0 {
		cfg.ExecBatchSize = c.TableMergeBatchSizeDefault
	}
	if cfg.OutputDb.GetType() == c.ConnectionTypeOracle {
		// Oracle fails when a column value is initially null then takes a real value in a subsequent row.
		cfg.Log.Info("forcing MERGE batch size to 1 for Oracle")
		cfg.ExecBatchSize = 1
	}
	return &TableMerge{
		log:           cfg.Log,
		outputDb:      cfg.OutputDb,
		namespace:     cfg.Namespace,
		mapper:        m,
		execBatchSize: cfg.ExecBatchSize,
		stats:         cfg.Stats,
	}, nil
}

func (t *TableMerge) newMergeGenerator(sch *td.Schema) (shared.SqlStmtTxtBatcher, error) {
	types, err := td.ColumnTypes(sch, t.mapper)
	if err != nil {
		return nil, err
	}
	keyCols := om.NewOrderedMap()
	keyCols.Set(sch.Key, sch.Key)
	otherCols := om.NewOrderedMap()
	for _, col := range sch.NonKeyColumnNames() {
		otherCols.Set(col, col)
	}
	return t.outputDb.GetDmlGenerator().NewMergeGenerator(&shared.SqlStatementGeneratorConfig{
		Log:             t.log,
		OutputSchema:    t.namespace.String(),
		OutputTable:     sch.Table,
		TargetKeyCols:   keyCols,
		TargetOtherCols: otherCols,
		ColumnTypes:     types,
	}), nil
}

// Merge upserts rows into the schema's table in a single transaction.
// Rows must be unique on the key; see Dedupe.
func (t *TableMerge) Merge(ctx context.Context, sch *td.Schema, rows []stream.Record) (err error) {
	if len(rows) == 0 {
		t.log.Debug("no rows to merge into ", sch.Table)
		return nil
	}
	var sw *s.StepWatcher
	if t.stats != nil {
		sw = t.stats.AddStepWatcher("merge-" + sch.Table)
		sw.StartWatching()
		defer sw.StopWatching()
	}
	gen, err := t.newMergeGenerator(sch)
	if err != nil {
		return err
	}
	tx, err := t.outputDb.BeginTx(ctx)
	if err != nil {
		return errors.Wrapf(err, "unable to start transaction for %v", sch.Table)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				t.log.Error("rollback of ", sch.Table, " failed: ", rbErr)
			}
		}
	}()
	cols := sch.MergeColumnNames()
	pending := 0
	exec := func() error {
		if _, err := tx.ExecContext(ctx, gen.GetStatement(), gen.GetValues()...); err != nil {
			return errors.Wrapf(err, "error executing MERGE into %v", sch.Table)
		}
		if sw != nil {
			sw.AddRows(pending)
		}
		pending = 0
		return nil
	}
	gen.InitBatch(t.execBatchSize)
	for _, row := range rows {
		batchIsFull, err := gen.AddValuesToBatch(row.GetDataByKeys(cols))
		if err != nil {
			return errors.Wrapf(err, "error adding row to MERGE batch for %v", sch.Table)
		}
		pending++
		if batchIsFull {
			if err = exec(); err != nil {
				return err
			}
			gen.InitBatch(t.execBatchSize)
		}
	}
	if pending > 0 { // exec the final partial batch.
		if err = exec(); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrapf(err, "error committing MERGE into %v", sch.Table)
	}
	t.log.Info("merged ", len(rows), " rows into ", t.namespace.Qualify(sch.Table))
	return nil
}
