package tabledefinition

import (
	"context"
	"fmt"
	"strings"

	"github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/rdbms"
	"github.com/relloyd/geniepipe/rdbms/shared"
)

type mapTabDefinitionConfigT map[string]tabDefinitionConfigT

// tabDefinitionConfigT holds SQL used to fetch the column names of an existing table.
// <P1> and <P2> are replaced by the bind placeholders of the database.
// <CATALOG> is replaced by the catalog of the namespace, if there is one, followed by a dot.
type tabDefinitionConfigT struct {
	withSchema    string
	withoutSchema string
}

const informationSchemaColumnsWithSchema = `select lower(column_name) as column_name
from <CATALOG>information_schema.columns
where lower(table_schema) = lower(<P1>)
and lower(table_name) = lower(<P2>)
order by ordinal_position`

func informationSchemaColumnsWithoutSchema(currentSchema string) string {
	return fmt.Sprintf(`select lower(column_name) as column_name
from <CATALOG>information_schema.columns
where lower(table_schema) = lower(%v)
and lower(table_name) = lower(<P1>)
order by ordinal_position`, currentSchema)
}

// tabDefinitionConfig is keyed by the connection type with any "odbc+" prefix removed.
var tabDefinitionConfig = mapTabDefinitionConfigT{
	constants.ConnectionTypeDatabricks: {
		withSchema:    informationSchemaColumnsWithSchema,
		withoutSchema: informationSchemaColumnsWithoutSchema("current_schema()"),
	},
	constants.ConnectionTypeSnowflake: {
		withSchema:    informationSchemaColumnsWithSchema,
		withoutSchema: informationSchemaColumnsWithoutSchema("current_schema()"),
	},
	constants.ConnectionTypeSqlServer: {
		withSchema:    informationSchemaColumnsWithSchema,
		withoutSchema: informationSchemaColumnsWithoutSchema("schema_name()"),
	},
	constants.ConnectionTypePostgres: {
		withSchema:    informationSchemaColumnsWithSchema,
		withoutSchema: informationSchemaColumnsWithoutSchema("current_schema()"),
	},
	constants.ConnectionTypeDuckDb: {
		withSchema:    informationSchemaColumnsWithSchema,
		withoutSchema: informationSchemaColumnsWithoutSchema("current_schema()"),
	},
	constants.ConnectionTypeNetezza: {
		withSchema:    informationSchemaColumnsWithSchema,
		withoutSchema: informationSchemaColumnsWithoutSchema("current_schema"),
	},
	constants.ConnectionTypeOracle: { // Oracle makes the column names upper case unless quoted.
		withSchema: `select lower(column_name) as column_name
from all_tab_columns
where owner = upper(<P1>)
and table_name = upper(<P2>)
order by column_id`,
		withoutSchema: `select lower(column_name) as column_name
from user_tab_columns
where table_name = upper(<P1>)
order by column_id`,
	},
}

// getRecord looks up and returns a value from the map t using the supplied databaseType.
// The prefix "odbc+" is trimmed from the left of databaseType.
func (t mapTabDefinitionConfigT) getRecord(databaseType string) (tabDefinitionConfigT, error) {
	dt := strings.TrimPrefix(databaseType, constants.ConnectionTypeOdbc+"+")
	if dt == constants.ConnectionTypeMockOracle {
		dt = constants.ConnectionTypeOracle
	}
	k, ok := t[dt]
	if !ok {
		return tabDefinitionConfigT{}, fmt.Errorf("error fetching table definition config, unsupported database type: %q", dt)
	}
	return k, nil
}

// columnsQuery returns the SQL and bind values that fetch the columns of table in namespace ns.
func columnsQuery(d *shared.SqlDialect, databaseType string, ns rdbms.Namespace, table string) (string, []interface{}, error) {
	t, err := tabDefinitionConfig.getRecord(databaseType)
	if err != nil {
		return "", nil, err
	}
	unquote := func(s string) string { return strings.Replace(s, `"`, ``, -1) }
	catalog := ""
	if c := ns.GetCatalog(); c != "" {
		catalog = c + "."
	}
	var sqlText string
	var args []interface{}
	if ns.String() != "" {
		sqlText = t.withSchema
		args = []interface{}{unquote(ns.GetSchema()), unquote(table)}
	} else {
		sqlText = t.withoutSchema
		args = []interface{}{unquote(table)}
	}
	r := strings.NewReplacer(
		"<CATALOG>", catalog,
		"<P1>", d.Placeholder(1),
		"<P2>", d.Placeholder(2),
	)
	return r.Replace(sqlText), args, nil
}

// GetTableColumns fetches the lower case names of the columns of an existing table in namespace ns.
// An empty slice means the table does not exist.
func GetTableColumns(ctx context.Context, log logger.Logger, db shared.Connector, ns rdbms.Namespace, table string) ([]string, error) {
	sqlText, args, err := columnsQuery(db.GetDmlGenerator().GetDialect(), db.GetType(), ns, table)
	if err != nil {
		return nil, err
	}
	log.Debug("fetching columns of ", ns.Qualify(table), " using SQL: ", sqlText)
	_, rows, err := rdbms.QueryRows(ctx, log, db, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("error fetching columns of %v: %w", ns.Qualify(table), err)
	}
	cols := make([]string, 0, len(rows))
	for _, r := range rows {
		cols = append(cols, strings.ToLower(columnValueToString(r[0])))
	}
	return cols, nil
}

func columnValueToString(v interface{}) string {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", x)
	}
}

// TableCheck is the result of comparing an existing table with a Schema.
type TableCheck struct {
	Table          string   `json:"table"`
	Exists         bool     `json:"exists"`
	MissingColumns []string `json:"missingColumns,omitempty"`
}

// CompareColumns returns the columns of s that are not in existing.
func CompareColumns(s *Schema, existing []string) []string {
	have := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		have[strings.ToLower(c)] = struct{}{}
	}
	var missing []string
	for _, c := range s.ColumnNames() {
		if _, ok := have[strings.ToLower(c)]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// CheckTables compares the tables in namespace ns with schemas.
func CheckTables(ctx context.Context, log logger.Logger, db shared.Connector, ns rdbms.Namespace, schemas []Schema) ([]TableCheck, error) {
	retval := make([]TableCheck, 0, len(schemas))
	for idx := range schemas {
		s := &schemas[idx]
		cols, err := GetTableColumns(ctx, log, db, ns, s.Table)
		if err != nil {
			return nil, err
		}
		c := TableCheck{Table: ns.Qualify(s.Table), Exists: len(cols) > 0}
		if c.Exists {
			c.MissingColumns = CompareColumns(s, cols)
		}
		retval = append(retval, c)
	}
	return retval, nil
}
