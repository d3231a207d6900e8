package tabledefinition

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// LogicalType is the database independent type of a column.
type LogicalType string

const (
	TypeString      LogicalType = "string"       // short text such as ids and titles
	TypeText        LogicalType = "text"         // long text such as payloads and message content
	TypeTimestampMs LogicalType = "timestamp_ms" // epoch milliseconds in JSON, a UTC timestamp in the database
	TypeBoolean     LogicalType = "boolean"
	TypeBigint      LogicalType = "bigint"
	TypeDouble      LogicalType = "double"
)

var logicalTypes = map[LogicalType]struct{}{
	TypeString:      {},
	TypeText:        {},
	TypeTimestampMs: {},
	TypeBoolean:     {},
	TypeBigint:      {},
	TypeDouble:      {},
}

// Source says where the value of a column comes from when a record is flattened.
type Source string

const (
	SourceJson       Source = "json"        // Path is a JSON path into the record, of the form $.a.b
	SourceContext    Source = "context"     // Path is the name of a parent id, such as space_id
	SourcePayload    Source = "payload"     // the raw JSON of the record
	SourceIngestedAt Source = "ingested_at" // the timestamp of the run
	SourceEnrichment Source = "enrichment"  // Path is the name of a field filled in by a join after flattening
)

var sources = map[Source]struct{}{
	SourceJson:       {},
	SourceContext:    {},
	SourcePayload:    {},
	SourceIngestedAt: {},
	SourceEnrichment: {},
}

// Column maps one value of a record to a table column.
type Column struct {
	Name   string      `json:"name" yaml:"name"`
	Type   LogicalType `json:"type" yaml:"type"`
	Source Source      `json:"source" yaml:"source"`
	Path   string      `json:"path,omitempty" yaml:"path,omitempty"`
}

// JsonPath returns Path converted to the syntax used by gjson i.e. without the "$." prefix.
func (c Column) JsonPath() string {
	return strings.TrimPrefix(c.Path, "$.")
}

// Schema is the explicit mapping of one entity's records to rows of a table.
type Schema struct {
	Entity      string   `json:"entity" yaml:"entity"`
	Table       string   `json:"table" yaml:"table"`
	Key         string   `json:"key" yaml:"key"`
	PartitionBy []string `json:"partitionBy,omitempty" yaml:"partitionBy,omitempty"`
	Columns     []Column `json:"columns" yaml:"columns"`
}

// Validate checks the schema is usable for flattening and merging.
func (s *Schema) Validate() error {
	if s.Entity == "" || s.Table == "" {
		return errors.New("schema requires an entity and a table name")
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("schema %v has no columns", s.Entity)
	}
	names := make(map[string]struct{}, len(s.Columns))
	for idx, c := range s.Columns {
		if c.Name == "" {
			return fmt.Errorf("schema %v column %v has an empty name", s.Entity, idx)
		}
		if _, ok := names[c.Name]; ok {
			return fmt.Errorf("schema %v has duplicate column %q", s.Entity, c.Name)
		}
		names[c.Name] = struct{}{}
		if _, ok := logicalTypes[c.Type]; !ok {
			return fmt.Errorf("schema %v column %q has unknown type %q", s.Entity, c.Name, c.Type)
		}
		if _, ok := sources[c.Source]; !ok {
			return fmt.Errorf("schema %v column %q has unknown source %q", s.Entity, c.Name, c.Source)
		}
		switch c.Source {
		case SourceJson:
			if !strings.HasPrefix(c.Path, "$.") || len(c.Path) < 3 || strings.Contains(c.Path, "..") {
				return fmt.Errorf("schema %v column %q has a malformed JSON path %q", s.Entity, c.Name, c.Path)
			}
		case SourceContext, SourceEnrichment:
			if c.Path == "" {
				return fmt.Errorf("schema %v column %q requires a path naming its %v field", s.Entity, c.Name, c.Source)
			}
		}
	}
	key, ok := s.Column(s.Key)
	if !ok {
		return fmt.Errorf("schema %v key column %q not found", s.Entity, s.Key)
	}
	if key.Source != SourceJson && key.Source != SourceContext {
		return fmt.Errorf("schema %v key column %q must come from the record or its context, not %v", s.Entity, s.Key, key.Source)
	}
	for _, p := range s.PartitionBy {
		if _, ok := names[p]; !ok {
			return fmt.Errorf("schema %v partition column %q not found", s.Entity, p)
		}
	}
	return nil
}

// Column returns the column called name.
func (s *Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the names of all columns in table order.
func (s *Schema) ColumnNames() []string {
	retval := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		retval = append(retval, c.Name)
	}
	return retval
}

// NonKeyColumnNames returns the names of all columns except the key, in table order.
func (s *Schema) NonKeyColumnNames() []string {
	retval := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		if c.Name != s.Key {
			retval = append(retval, c.Name)
		}
	}
	return retval
}

// MergeColumnNames returns the key column followed by the other columns, which is the order values are
// supplied to a merge.
func (s *Schema) MergeColumnNames() []string {
	return append([]string{s.Key}, s.NonKeyColumnNames()...)
}
