package shared

import (
	"fmt"
	"strings"

	"github.com/relloyd/geniepipe/constants"
)

type mergeStyle int

const (
	mergeStyleStar       mergeStyle = iota + 1 // MERGE ... UPDATE SET * / INSERT *
	mergeStyleExplicit                         // MERGE with explicit column lists
	mergeStyleOnConflict                       // INSERT ... ON CONFLICT (key) DO UPDATE
)

// SqlDialect holds the SQL differences between the supported target databases.
// Functions that build statements return them as a slice since some databases need more than one statement
// to do the job of another's single statement.
type SqlDialect struct {
	Name           string
	placeholder    func(n int) string
	bind           func(placeholder string, dataType string) string
	convertValue   func(v interface{}) interface{}
	fromDual       string
	mergeStyle     mergeStyle
	terminator     string
	keyConstraint  bool
	createSchema   func(schema string) []string
	createTable    func(table string, body string, partitionBy []string) []string
	replaceTableAs func(table string, query string) []string
	dayTruncFmt    string
	hourOfFmt      string
	windowStartFmt string
	minutesBetween func(from string, to string) string
}

// Placeholder returns the n'th (1-based) bind variable.
func (d *SqlDialect) Placeholder(n int) string {
	return d.placeholder(n)
}

// Bind returns the n'th bind variable cast to dataType.
// An empty dataType leaves the bind variable uncast.
func (d *SqlDialect) Bind(n int, dataType string) string {
	ph := d.placeholder(n)
	if dataType == "" {
		return ph
	}
	if d.bind != nil {
		return d.bind(ph, dataType)
	}
	return fmt.Sprintf("cast(%v as %v)", ph, dataType)
}

// ConvertValue converts a Go value into one the database driver can bind.
func (d *SqlDialect) ConvertValue(v interface{}) interface{} {
	if d.convertValue != nil && v != nil {
		return d.convertValue(v)
	}
	return v
}

// TableName returns table prefixed with schema, which may itself be of the form catalog.schema.
func (d *SqlDialect) TableName(schema string, table string) string {
	if schema == "" {
		return table
	}
	return schema + "." + table
}

func (d *SqlDialect) CreateSchemaIfNotExists(schema string) []string {
	if schema == "" || d.createSchema == nil {
		return nil
	}
	return d.createSchema(schema)
}

// CreateTableIfNotExists builds DDL for table using the column definitions supplied in colDefs.
func (d *SqlDialect) CreateTableIfNotExists(table string, colDefs []string, keyCols []string, partitionBy []string) []string {
	body := strings.Join(colDefs, ",\n  ")
	if d.keyConstraint && len(keyCols) > 0 {
		body = fmt.Sprintf("%v,\n  primary key (%v)", body, strings.Join(keyCols, ", "))
	}
	return d.createTable(table, body, partitionBy)
}

// CreateOrReplaceTableAs builds statements that replace table with the results of query.
func (d *SqlDialect) CreateOrReplaceTableAs(table string, query string) []string {
	return d.replaceTableAs(table, query)
}

func (d *SqlDialect) DayTrunc(expr string) string {
	return fmt.Sprintf(d.dayTruncFmt, expr)
}

func (d *SqlDialect) HourOf(expr string) string {
	return fmt.Sprintf(d.hourOfFmt, expr)
}

// WindowStart returns an expression for the current timestamp minus days.
func (d *SqlDialect) WindowStart(days int) string {
	return fmt.Sprintf(d.windowStartFmt, days)
}

// MinutesBetween returns an expression for the fractional minutes elapsed between from and to.
func (d *SqlDialect) MinutesBetween(from string, to string) string {
	return d.minutesBetween(from, to)
}

// GetDialect returns the SqlDialect for the supplied connection type.
// The prefix "odbc+" is trimmed so ODBC connections pick up their database's dialect, but with ODBC binds.
func GetDialect(connectionType string) (*SqlDialect, error) {
	t := strings.TrimPrefix(connectionType, constants.ConnectionTypeOdbc+"+")
	if t == constants.ConnectionTypeMockOracle {
		t = constants.ConnectionTypeOracle
	}
	d, ok := dialects[t]
	if !ok {
		return nil, fmt.Errorf("no SQL dialect available for database type %q", connectionType)
	}
	if t != connectionType && strings.HasPrefix(connectionType, constants.ConnectionTypeOdbc+"+") {
		o := *d
		o.Name = connectionType
		o.placeholder = questionMark
		return &o, nil
	}
	return d, nil
}

// MustGetDialect is GetDialect that panics on unsupported types.
func MustGetDialect(connectionType string) *SqlDialect {
	d, err := GetDialect(connectionType)
	if err != nil {
		panic(err)
	}
	return d
}

func questionMark(int) string {
	return "?"
}

func dollarN(n int) string {
	return fmt.Sprintf("$%d", n)
}

func createSchemaIfNotExists(schema string) []string {
	return []string{fmt.Sprintf("create schema if not exists %v", schema)}
}

func createTableIfNotExists(table string, body string, _ []string) []string {
	return []string{fmt.Sprintf("create table if not exists %v (\n  %v\n)", table, body)}
}

func createOrReplaceTableAs(table string, query string) []string {
	return []string{fmt.Sprintf("create or replace table %v as\n%v", table, query)}
}

func dropThenCreateTableAs(table string, query string) []string {
	return []string{
		fmt.Sprintf("drop table if exists %v", table),
		fmt.Sprintf("create table %v as\n%v", table, query),
	}
}

func epochMinutesBetween(from string, to string) string {
	return fmt.Sprintf("extract(epoch from (%v - %v)) / 60.0", to, from)
}

func datediffMinutesBetween(from string, to string) string {
	return fmt.Sprintf("datediff(second, %v, %v) / 60.0", from, to)
}

var dialects = map[string]*SqlDialect{
	constants.ConnectionTypeDatabricks: {
		Name:           constants.ConnectionTypeDatabricks,
		placeholder:    questionMark,
		mergeStyle:     mergeStyleStar,
		createSchema:   createSchemaIfNotExists,
		createTable:    createDeltaTable,
		replaceTableAs: createOrReplaceTableAs,
		dayTruncFmt:    "date_trunc('DAY', %v)",
		hourOfFmt:      "hour(%v)",
		windowStartFmt: "dateadd(day, -%d, current_timestamp())",
		minutesBetween: func(from string, to string) string {
			return fmt.Sprintf("(unix_timestamp(%v) - unix_timestamp(%v)) / 60.0", to, from)
		},
	},
	constants.ConnectionTypeSnowflake: {
		Name:           constants.ConnectionTypeSnowflake,
		placeholder:    questionMark,
		mergeStyle:     mergeStyleExplicit,
		createSchema:   createSchemaIfNotExists,
		createTable:    createClusteredTable,
		replaceTableAs: createOrReplaceTableAs,
		dayTruncFmt:    "date_trunc('DAY', %v)",
		hourOfFmt:      "hour(%v)",
		windowStartFmt: "dateadd(day, -%d, current_timestamp())",
		minutesBetween: datediffMinutesBetween,
	},
	constants.ConnectionTypeSqlServer: {
		Name:          constants.ConnectionTypeSqlServer,
		placeholder:   func(n int) string { return fmt.Sprintf("@p%d", n) },
		mergeStyle:    mergeStyleExplicit,
		terminator:    ";",
		keyConstraint: true,
		createSchema: func(schema string) []string {
			return []string{fmt.Sprintf("if schema_id('%v') is null exec('create schema %v')", schema, schema)}
		},
		createTable: func(table string, body string, _ []string) []string {
			return []string{fmt.Sprintf("if object_id('%v', 'U') is null create table %v (\n  %v\n)", table, table, body)}
		},
		replaceTableAs: func(table string, query string) []string {
			return []string{
				fmt.Sprintf("drop table if exists %v", table),
				fmt.Sprintf("select * into %v from (\n%v\n) r", table, query),
			}
		},
		dayTruncFmt:    "cast(cast(%v as date) as datetime2)",
		hourOfFmt:      "datepart(hour, %v)",
		windowStartFmt: "dateadd(day, -%d, sysdatetime())",
		minutesBetween: datediffMinutesBetween,
	},
	constants.ConnectionTypePostgres: {
		Name:           constants.ConnectionTypePostgres,
		placeholder:    dollarN,
		mergeStyle:     mergeStyleOnConflict,
		keyConstraint:  true,
		createSchema:   createSchemaIfNotExists,
		createTable:    createTableIfNotExists,
		replaceTableAs: dropThenCreateTableAs,
		dayTruncFmt:    "date_trunc('day', %v)",
		hourOfFmt:      "extract(hour from %v)",
		windowStartFmt: "current_timestamp - interval '%d days'",
		minutesBetween: epochMinutesBetween,
	},
	constants.ConnectionTypeDuckDb: {
		Name:           constants.ConnectionTypeDuckDb,
		placeholder:    questionMark,
		mergeStyle:     mergeStyleOnConflict,
		keyConstraint:  true,
		createSchema:   createSchemaIfNotExists,
		createTable:    createTableIfNotExists,
		replaceTableAs: createOrReplaceTableAs,
		dayTruncFmt:    "date_trunc('day', %v)",
		hourOfFmt:      "extract(hour from %v)",
		windowStartFmt: "current_timestamp - interval '%d days'",
		minutesBetween: epochMinutesBetween,
	},
	constants.ConnectionTypeNetezza: {
		Name:        constants.ConnectionTypeNetezza,
		placeholder: dollarN,
		mergeStyle:  mergeStyleExplicit,
		createTable: func(table string, body string, partitionBy []string) []string {
			ddl := fmt.Sprintf("create table if not exists %v (\n  %v\n)", table, body)
			if len(partitionBy) > 0 {
				ddl = fmt.Sprintf("%v distribute on (%v)", ddl, strings.Join(partitionBy, ", "))
			}
			return []string{ddl}
		},
		replaceTableAs: func(table string, query string) []string {
			return []string{
				fmt.Sprintf("drop table %v if exists", table),
				fmt.Sprintf("create table %v as\n%v", table, query),
			}
		},
		dayTruncFmt:    "date_trunc('day', %v)",
		hourOfFmt:      "extract(hour from %v)",
		windowStartFmt: "current_timestamp - interval '%d days'",
		minutesBetween: epochMinutesBetween,
	},
	constants.ConnectionTypeOracle: {
		Name:          constants.ConnectionTypeOracle,
		placeholder:   func(n int) string { return fmt.Sprintf(":%d", n) },
		fromDual:      " from dual",
		mergeStyle:    mergeStyleExplicit,
		keyConstraint: true,
		bind: func(ph string, dataType string) string {
			if dataType == "clob" {
				return fmt.Sprintf("to_clob(%v)", ph)
			}
			return fmt.Sprintf("cast(%v as %v)", ph, dataType)
		},
		convertValue: func(v interface{}) interface{} {
			if b, ok := v.(bool); ok {
				if b {
					return 1
				}
				return 0
			}
			return v
		},
		createTable: func(table string, body string, _ []string) []string {
			return []string{ignoreOracleError(fmt.Sprintf("create table %v (\n  %v\n)", table, body), -955)}
		},
		replaceTableAs: func(table string, query string) []string {
			return []string{
				ignoreOracleError(fmt.Sprintf("drop table %v purge", table), -942),
				fmt.Sprintf("create table %v as\n%v", table, query),
			}
		},
		dayTruncFmt:    "trunc(%v)",
		hourOfFmt:      "extract(hour from %v)",
		windowStartFmt: "systimestamp - numtodsinterval(%d, 'DAY')",
		minutesBetween: func(from string, to string) string {
			return fmt.Sprintf("(cast(%v as date) - cast(%v as date)) * 1440", to, from)
		},
	},
}

// createDeltaTable creates a Databricks table partitioned by the supplied columns.
func createDeltaTable(table string, body string, partitionBy []string) []string {
	ddl := fmt.Sprintf("create table if not exists %v (\n  %v\n) using delta", table, body)
	if len(partitionBy) > 0 {
		ddl = fmt.Sprintf("%v\npartitioned by (%v)", ddl, strings.Join(partitionBy, ", "))
	}
	return []string{ddl}
}

// createClusteredTable creates a Snowflake table clustered by the supplied columns.
func createClusteredTable(table string, body string, partitionBy []string) []string {
	ddl := fmt.Sprintf("create table if not exists %v (\n  %v\n)", table, body)
	if len(partitionBy) > 0 {
		ddl = fmt.Sprintf("%v\ncluster by (%v)", ddl, strings.Join(partitionBy, ", "))
	}
	return []string{ddl}
}

// ignoreOracleError wraps stmt in a PL/SQL block that swallows the given SQLCODE.
func ignoreOracleError(stmt string, sqlCode int) string {
	return fmt.Sprintf("begin\n  execute immediate '%v';\nexception\n  when others then\n    if sqlcode != %d then raise; end if;\nend;",
		strings.ReplaceAll(stmt, "'", "''"), sqlCode)
}
