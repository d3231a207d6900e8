package actions

import (
	"context"
	"fmt"

	"github.com/relloyd/geniepipe/components"
	"github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/rdbms"
	"github.com/relloyd/geniepipe/rdbms/shared"
	"github.com/relloyd/geniepipe/stats"
)

func newRollups(log logger.Logger, c *IngestConfig, db shared.Connector, sm stats.StatsManager) (*components.Rollups, error) {
	return components.NewRollups(components.RollupConfig{
		Log:               log,
		OutputDb:          db,
		Namespace:         c.namespace(),
		LookbackDays:      c.LookbackDays,
		ShortLookbackDays: c.ShortLookbackDays,
		TopN:              c.TopN,
		StepWatcher:       sm.AddStepWatcher(components.StepRollups),
	})
}

// buildRollups recreates the rollup tables and returns their names.
func buildRollups(ctx context.Context, log logger.Logger, c *IngestConfig, db shared.Connector, sm stats.StatsManager) ([]string, error) {
	r, err := newRollups(log, c, db, sm)
	if err != nil {
		return nil, err
	}
	if err = r.Build(ctx); err != nil {
		return nil, err
	}
	defs := r.Definitions()
	retval := make([]string, 0, len(defs))
	for _, d := range defs {
		retval = append(retval, c.namespace().Qualify(d.Table))
	}
	return retval, nil
}

// RunRollup rebuilds the rollup tables from the tables already in the target.
func RunRollup(cfg interface{}) error {
	c := cfg.(*IngestConfig)
	if c.ExportConfigType != "" {
		return outputRunConfig(c, c.stdout(), c.ExportConfigType)
	}
	log := newActionLogger(c.LogLevel, c.StackDumpOnPanic)
	ctx, cancel := signalContext(log)
	defer cancel()
	sm := stats.NewRunStats(log, stats.SetStatsDumpFrequency(c.StatsDumpFrequencySeconds))
	tables, err := Rollup(ctx, log, c, sm)
	if err != nil {
		return err
	}
	log.Info(fmt.Sprintf("rebuilt %v rollup tables", len(tables)))
	return nil
}

// Rollup opens the target of c and rebuilds its rollup tables.
func Rollup(ctx context.Context, log logger.Logger, c *IngestConfig, sm stats.StatsManager) ([]string, error) {
	if err := c.validateTarget(); err != nil {
		return nil, err
	}
	if c.TgtConnDetails.Type == constants.ConnectionTypeCsv {
		return nil, fmt.Errorf("rollups need a SQL target, got %v connection %q", c.TgtConnDetails.Type, c.TargetConnection)
	}
	db, err := rdbms.OpenDbConnection(log, *c.TgtConnDetails)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	sm.StartDumping()
	defer sm.StopDumping()
	return buildRollups(ctx, log, c, db, sm)
}
