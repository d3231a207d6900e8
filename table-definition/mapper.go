package tabledefinition

import (
	"fmt"
	"strings"

	"github.com/relloyd/geniepipe/constants"
)

// Mapper converts a logical column type into the data type of a target database.
type Mapper interface {
	Map(t LogicalType) (string, error)
}

type dataTypeLink struct {
	SourceDataType LogicalType `json:"logicalDataType"`
	TargetDataType string      `json:"targetDataType"`
}

// dataTypeMap implements Mapper.
type dataTypeMap struct {
	connectionType string
	mapTypes       map[LogicalType]string
}

func (o dataTypeMap) Map(t LogicalType) (string, error) {
	v, ok := o.mapTypes[t]
	if !ok {
		return "", fmt.Errorf("unsupported data type %q for database type %q", t, o.connectionType)
	}
	return v, nil
}

func newDataTypeMapper(connectionType string, types []dataTypeLink) dataTypeMap {
	dtm := dataTypeMap{connectionType: connectionType, mapTypes: make(map[LogicalType]string, len(types))}
	for _, row := range types {
		dtm.mapTypes[row.SourceDataType] = row.TargetDataType
	}
	return dtm
}

var DatabricksDataTypeMapping = []dataTypeLink{
	{SourceDataType: TypeString, TargetDataType: "STRING"},
	{SourceDataType: TypeText, TargetDataType: "STRING"},
	{SourceDataType: TypeTimestampMs, TargetDataType: "TIMESTAMP"},
	{SourceDataType: TypeBoolean, TargetDataType: "BOOLEAN"},
	{SourceDataType: TypeBigint, TargetDataType: "BIGINT"},
	{SourceDataType: TypeDouble, TargetDataType: "DOUBLE"},
}

// SnowflakeDataTypeMapping stores timestamps without a time zone since all values are UTC.
var SnowflakeDataTypeMapping = []dataTypeLink{
	{SourceDataType: TypeString, TargetDataType: "varchar"},
	{SourceDataType: TypeText, TargetDataType: "varchar"},
	{SourceDataType: TypeTimestampMs, TargetDataType: "timestamp_ntz"},
	{SourceDataType: TypeBoolean, TargetDataType: "boolean"},
	{SourceDataType: TypeBigint, TargetDataType: "number(38,0)"},
	{SourceDataType: TypeDouble, TargetDataType: "float"},
}

// SqlServerDataTypeMapping limits short strings to 450 characters so they can be used in a primary key.
var SqlServerDataTypeMapping = []dataTypeLink{
	{SourceDataType: TypeString, TargetDataType: "nvarchar(450)"},
	{SourceDataType: TypeText, TargetDataType: "nvarchar(max)"},
	{SourceDataType: TypeTimestampMs, TargetDataType: "datetime2"},
	{SourceDataType: TypeBoolean, TargetDataType: "bit"},
	{SourceDataType: TypeBigint, TargetDataType: "bigint"},
	{SourceDataType: TypeDouble, TargetDataType: "float"},
}

var PostgresDataTypeMapping = []dataTypeLink{
	{SourceDataType: TypeString, TargetDataType: "text"},
	{SourceDataType: TypeText, TargetDataType: "text"},
	{SourceDataType: TypeTimestampMs, TargetDataType: "timestamp"},
	{SourceDataType: TypeBoolean, TargetDataType: "boolean"},
	{SourceDataType: TypeBigint, TargetDataType: "bigint"},
	{SourceDataType: TypeDouble, TargetDataType: "double precision"},
}

var DuckDbDataTypeMapping = []dataTypeLink{
	{SourceDataType: TypeString, TargetDataType: "varchar"},
	{SourceDataType: TypeText, TargetDataType: "varchar"},
	{SourceDataType: TypeTimestampMs, TargetDataType: "timestamp"},
	{SourceDataType: TypeBoolean, TargetDataType: "boolean"},
	{SourceDataType: TypeBigint, TargetDataType: "bigint"},
	{SourceDataType: TypeDouble, TargetDataType: "double"},
}

// OracleDataTypeMapping stores booleans as 1 or 0.
var OracleDataTypeMapping = []dataTypeLink{
	{SourceDataType: TypeString, TargetDataType: "varchar2(4000)"},
	{SourceDataType: TypeText, TargetDataType: "clob"},
	{SourceDataType: TypeTimestampMs, TargetDataType: "timestamp"},
	{SourceDataType: TypeBoolean, TargetDataType: "number(1)"},
	{SourceDataType: TypeBigint, TargetDataType: "number(19)"},
	{SourceDataType: TypeDouble, TargetDataType: "binary_double"},
}

var NetezzaDataTypeMapping = []dataTypeLink{
	{SourceDataType: TypeString, TargetDataType: "varchar(1000)"},
	{SourceDataType: TypeText, TargetDataType: "varchar(64000)"},
	{SourceDataType: TypeTimestampMs, TargetDataType: "timestamp"},
	{SourceDataType: TypeBoolean, TargetDataType: "boolean"},
	{SourceDataType: TypeBigint, TargetDataType: "bigint"},
	{SourceDataType: TypeDouble, TargetDataType: "double precision"},
}

var mappings = map[string][]dataTypeLink{
	constants.ConnectionTypeDatabricks: DatabricksDataTypeMapping,
	constants.ConnectionTypeSnowflake:  SnowflakeDataTypeMapping,
	constants.ConnectionTypeSqlServer:  SqlServerDataTypeMapping,
	constants.ConnectionTypePostgres:   PostgresDataTypeMapping,
	constants.ConnectionTypeDuckDb:     DuckDbDataTypeMapping,
	constants.ConnectionTypeOracle:     OracleDataTypeMapping,
	constants.ConnectionTypeMockOracle: OracleDataTypeMapping,
	constants.ConnectionTypeNetezza:    NetezzaDataTypeMapping,
}

// GetMapper returns the Mapper for the supplied connection type.
// The prefix "odbc+" is trimmed so ODBC connections use the types of their database.
func GetMapper(connectionType string) (Mapper, error) {
	dt := strings.TrimPrefix(connectionType, constants.ConnectionTypeOdbc+"+")
	m, ok := mappings[dt]
	if !ok {
		return nil, fmt.Errorf("unable to find data type mapper for RDBMS type %q", connectionType)
	}
	return newDataTypeMapper(dt, m), nil
}

// MustGetMapper is GetMapper that panics on unsupported connection types.
func MustGetMapper(connectionType string) Mapper {
	m, err := GetMapper(connectionType)
	if err != nil {
		panic(err)
	}
	return m
}

// ColumnTypes returns a map of column name to target data type for all columns in s.
func ColumnTypes(s *Schema, m Mapper) (map[string]string, error) {
	retval := make(map[string]string, len(s.Columns))
	for _, c := range s.Columns {
		t, err := m.Map(c.Type)
		if err != nil {
			return nil, fmt.Errorf("error mapping column %q of %v: %w", c.Name, s.Table, err)
		}
		retval[c.Name] = t
	}
	return retval, nil
}
