package actions

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/rdbms"
	"github.com/relloyd/geniepipe/rdbms/shared"
	td "github.com/relloyd/geniepipe/table-definition"
)

// TargetStatements returns the DDL that creates namespace ns and the genie tables in a database of type dbType.
func TargetStatements(dbType string, ns rdbms.Namespace) ([]string, error) {
	m, err := td.GetMapper(dbType)
	if err != nil {
		return nil, err
	}
	d, err := shared.GetDialect(dbType)
	if err != nil {
		return nil, err
	}
	return td.TargetDDL(d, m, ns, td.AllSchemas())
}

// RunDDL prints the target DDL to STDOUT, or executes it and prints a table check when ExecuteDDL is set.
func RunDDL(cfg interface{}) error {
	c := cfg.(*IngestConfig)
	if c.ExportConfigType != "" {
		return outputRunConfig(c, c.stdout(), c.ExportConfigType)
	}
	log := newActionLogger(c.LogLevel, c.StackDumpOnPanic)
	ctx, cancel := signalContext(log)
	defer cancel()
	return DDL(ctx, log, c)
}

// DDL prints or executes the statements that create the tables in the target of c.
func DDL(ctx context.Context, log logger.Logger, c *IngestConfig) error {
	if err := c.validateTarget(); err != nil {
		return err
	}
	if c.TgtConnDetails.Type == constants.ConnectionTypeCsv {
		return errors.New("CSV targets need no DDL")
	}
	ddl, err := TargetStatements(c.TgtConnDetails.Type, c.namespace())
	if err != nil {
		return err
	}
	printLogFn := getPrintLogFunc(log, c.stdout(), !c.ExecuteDDL)
	for _, stmt := range ddl {
		printLogFn(strings.TrimSpace(stmt) + ";")
	}
	if !c.ExecuteDDL {
		return nil
	}
	db, err := rdbms.OpenDbConnection(log, *c.TgtConnDetails)
	if err != nil {
		return err
	}
	defer db.Close()
	err = execStatements(ctx, printLogFn, func(ctx context.Context) error {
		for _, stmt := range ddl {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return errors.Wrapf(err, "error executing DDL %q", strings.TrimSpace(stmt))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	checks, err := td.CheckTables(ctx, log, db, c.namespace(), td.AllSchemas())
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(checks, "", "  ")
	if err != nil {
		return err
	}
	log.Info("table check: ", string(b))
	return checkTargetTables(ctx, log, db, c.namespace())
}
