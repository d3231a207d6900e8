package shared

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	h "github.com/relloyd/geniepipe/helper"
)

// SqlMergeTxtBatch implements interface SqlStmtTxtBatcher.
// It generates a single MERGE (or equivalent upsert) statement per batch of rows where the rows are supplied
// as an inline select of typed bind variables.
type SqlMergeTxtBatch struct {
	SqlStatementGeneratorConfig // mandatory to be populated.
	Dialect                     *SqlDialect
	sqlSelectBuf                []byte        // inline select of binds, one row per union all
	sqlValues                   []interface{} // data values for all rows in batch
	batchIndex                  int
	batchSize                   int
	previousNumRowsInBatch      int
	sqlStmt                     string
	AllCols                     []string
	KeyCols                     []string // list of columns extracted from SqlStatementGeneratorConfig.
	OtherCols                   []string
}

// NewMergeGenerator returns a SqlStmtTxtBatcher that generates upserts in the generator's dialect.
// Configure defaults in SqlStatementGeneratorConfig.
func (o *DmlGeneratorTxtBatch) NewMergeGenerator(cfg *SqlStatementGeneratorConfig) SqlStmtTxtBatcher {
	if err := FixSqlStatementGeneratorConfig(cfg); err != nil {
		cfg.Log.Panic(err)
	}
	cfg.Log.Debug("Creating new SqlMerge for dialect ", o.Dialect.Name)
	return &SqlMergeTxtBatch{SqlStatementGeneratorConfig: *cfg, Dialect: o.Dialect}
}

func (o *SqlMergeTxtBatch) getSqlTemplate() string {
	switch o.Dialect.mergeStyle {
	case mergeStyleStar:
		return `merge into <SCHEMA><SEPARATOR><TABLE> <TGT-ALIAS>
using (<SELECT-BINDS>) <SRC-ALIAS>
on (<KEY-COLS-EQUALS>)
when matched then update set *
when not matched then insert *<TERMINATOR>`
	case mergeStyleOnConflict:
		return `insert into <SCHEMA><SEPARATOR><TABLE> (<ALL-COLS>)
select <ALL-COLS> from (<SELECT-BINDS>) <SRC-ALIAS>
on conflict (<KEY-COLS>) do update set
<OTHER-COLS-EXCLUDED><TERMINATOR>`
	default:
		return `merge into <SCHEMA><SEPARATOR><TABLE> <TGT-ALIAS>
using (<SELECT-BINDS>) <SRC-ALIAS>
on (<KEY-COLS-EQUALS>)
when matched then update set
<OTHER-COLS-EQUALS>
when not matched then insert
(<ALL-COLS>)
values (<SRC-COLS>)<TERMINATOR>`
	}
}

func (o *SqlMergeTxtBatch) InitBatch(batchSize int) {
	o.Log.Debug("initBatch() for MERGE...")
	o.batchSize = batchSize
	o.batchIndex = 0
	if len(o.KeyCols) == 0 {
		o.KeyCols = orderedMapValues(o.TargetKeyCols)
	}
	if len(o.OtherCols) == 0 {
		o.OtherCols = orderedMapValues(o.TargetOtherCols)
	}
	if len(o.AllCols) == 0 {
		o.AllCols = append(append(make([]string, 0, len(o.KeyCols)+len(o.OtherCols)), o.KeyCols...), o.OtherCols...)
	}
	o.sqlSelectBuf = make([]byte, 0, o.batchSize*len(o.AllCols)*32)
	o.sqlValues = make([]interface{}, 0, o.batchSize*len(o.AllCols)) // many values per row in a batch.
	o.Log.Debug("keyCols = ", o.KeyCols, "; otherCols = ", o.OtherCols, "; batchSize = ", o.batchSize)
}

// AddValuesToBatch adds one row of values to the MERGE statement.
// The ordering of values is important: supply the key columns followed by the other columns.
func (o *SqlMergeTxtBatch) AddValuesToBatch(values []interface{}) (batchIsFull bool, err error) {
	if o.batchIndex >= o.batchSize { // if we have added to batch more than batch size allows...
		err = errors.New("no more rows allowed in batch")
		batchIsFull = true
		return
	}
	if len(values) != len(o.AllCols) {
		err = fmt.Errorf("the number of target table columns does not match the number of input values supplied: num values = %v; num all columns = %v", len(values), len(o.AllCols))
		return
	}
	// Append '[union all] select cast(:1 as type) [as colname], ... [from dual]' to o.sqlSelectBuf.
	for idx := 0; idx < len(values); idx++ {
		var sep string
		bind := o.Dialect.Bind((len(values)*o.batchIndex)+idx+1, o.ColumnTypes[o.AllCols[idx]])
		if idx != 0 {
			sep = ", "
		} else if o.batchIndex == 0 {
			sep = "select "
		} else {
			sep = strUnionAllSelect
		}
		if o.batchIndex == 0 { // if this is the first row then name the columns...
			bind = fmt.Sprintf("%v as %v", bind, o.AllCols[idx])
		}
		o.sqlSelectBuf = append(o.sqlSelectBuf, sep...)
		o.sqlSelectBuf = append(o.sqlSelectBuf, bind...)
		o.sqlValues = append(o.sqlValues, o.Dialect.ConvertValue(values[idx]))
	}
	o.sqlSelectBuf = append(o.sqlSelectBuf, o.Dialect.fromDual...)
	o.batchIndex++
	batchIsFull = o.batchIndex >= o.batchSize
	return
}

// GetStatement returns the MERGE statement for the rows added since InitBatch.
func (o *SqlMergeTxtBatch) GetStatement() string {
	if o.previousNumRowsInBatch == o.batchIndex && o.sqlStmt != "" {
		return o.sqlStmt
	}
	srcAlias := "s"
	tgtAlias := "t"
	keyColsEquals := h.GenerateStringOfColsEqualsCols(o.KeyCols, tgtAlias, srcAlias, " and ")
	otherColsEquals := h.GenerateStringOfColsEqualsCols(o.OtherCols, "", srcAlias, ", ")
	otherColsExcluded := h.GenerateStringOfColsEqualsCols(o.OtherCols, "", "excluded", ", ")
	r := strings.NewReplacer(
		"<SCHEMA>", o.OutputSchema,
		"<SEPARATOR>", o.SchemaSeparator,
		"<TABLE>", o.OutputTable,
		"<SRC-ALIAS>", srcAlias,
		"<TGT-ALIAS>", tgtAlias,
		"<SELECT-BINDS>", string(o.sqlSelectBuf),
		"<KEY-COLS-EQUALS>", keyColsEquals,
		"<KEY-COLS>", strings.Join(o.KeyCols, ", "),
		"<OTHER-COLS-EQUALS>", otherColsEquals,
		"<OTHER-COLS-EXCLUDED>", otherColsExcluded,
		"<ALL-COLS>", strings.Join(o.AllCols, ", "),
		"<SRC-COLS>", strings.Join(h.PrefixStrings(o.AllCols, srcAlias+"."), ", "),
		"<TERMINATOR>", o.Dialect.terminator,
	)
	o.sqlStmt = r.Replace(o.getSqlTemplate())
	o.previousNumRowsInBatch = o.batchIndex
	o.Log.Trace("SQL Merge Generator returning SQL: ", o.sqlStmt)
	return o.sqlStmt
}

func (o *SqlMergeTxtBatch) GetValues() []interface{} {
	return o.sqlValues
}
