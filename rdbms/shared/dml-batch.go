package shared

import (
	om "github.com/cevaris/ordered_map"
	"github.com/relloyd/geniepipe/logger"
)

const strUnionAllSelect string = "\n\t\tunion all select " // deliberate trailing space.

// DmlGeneratorTxtBatch generates batched DML statements as text for a SqlDialect.
type DmlGeneratorTxtBatch struct {
	Dialect *SqlDialect
}

func (o *DmlGeneratorTxtBatch) GetDialect() *SqlDialect {
	return o.Dialect
}

type SqlStatementGeneratorConfig struct {
	Log             logger.Logger
	OutputSchema    string
	SchemaSeparator string
	OutputTable     string
	TargetKeyCols   *om.OrderedMap    // ordered map of: key = record field name; value = target table column name
	TargetOtherCols *om.OrderedMap    // ordered map of: key = record field name; value = target table column name
	ColumnTypes     map[string]string // target table column name to database data type used to cast binds
}
