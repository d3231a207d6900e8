package tabledefinition

import (
	"fmt"

	"github.com/relloyd/geniepipe/rdbms"
	"github.com/relloyd/geniepipe/rdbms/shared"
)

// TableDDL returns the statements that create the table for s in namespace ns if it does not exist.
func TableDDL(d *shared.SqlDialect, m Mapper, ns rdbms.Namespace, s *Schema) ([]string, error) {
	colDefs := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		t, err := m.Map(c.Type)
		if err != nil {
			return nil, fmt.Errorf("error mapping column %q of %v: %w", c.Name, s.Table, err)
		}
		colDefs = append(colDefs, fmt.Sprintf("%v %v", c.Name, t))
	}
	return d.CreateTableIfNotExists(ns.Qualify(s.Table), colDefs, []string{s.Key}, s.PartitionBy), nil
}

// TargetDDL returns the statements that create namespace ns and the tables for every schema in schemas.
func TargetDDL(d *shared.SqlDialect, m Mapper, ns rdbms.Namespace, schemas []Schema) ([]string, error) {
	var retval []string
	if ns.GetSchema() != "" {
		retval = append(retval, d.CreateSchemaIfNotExists(ns.String())...)
	}
	for idx := range schemas {
		ddl, err := TableDDL(d, m, ns, &schemas[idx])
		if err != nil {
			return nil, err
		}
		retval = append(retval, ddl...)
	}
	return retval, nil
}
