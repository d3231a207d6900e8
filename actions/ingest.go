package actions

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/geniepipe/aws/s3"
	"github.com/relloyd/geniepipe/components"
	"github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/genie"
	"github.com/relloyd/geniepipe/helper"
	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/rdbms"
	"github.com/relloyd/geniepipe/rdbms/shared"
	"github.com/relloyd/geniepipe/stats"
	td "github.com/relloyd/geniepipe/table-definition"
	"github.com/rs/xid"
)

// IngestConfig is the resolved config of the ingest, rollup and ddl actions.
type IngestConfig struct {
	SourceConnection   string                    `json:"sourceConnection,omitempty"`
	TargetConnection   string                    `json:"targetConnection" errorTxt:"target <connection>" mandatory:"yes"`
	TargetNamespace    string                    `json:"targetNamespace"`
	ArchiveConnection  string                    `json:"archiveConnection,omitempty"`
	SrcConnDetails     *shared.ConnectionDetails `json:"-"`
	TgtConnDetails     *shared.ConnectionDetails `json:"-"`
	ArchiveConnDetails *shared.ConnectionDetails `json:"-"`
	IngestSettings
	LogLevel                  string    `json:"-" errorTxt:"log level" mandatory:"yes"`
	StackDumpOnPanic          bool      `json:"-"`
	StatsDumpFrequencySeconds int       `json:"-"`
	ExportConfigType          string    `json:"-"`
	Stdout                    io.Writer `json:"-"` // defaults to os.Stdout.
}

// IngestResult is the outcome of one ingest run.
type IngestResult struct {
	*components.RunResult
	Rollups []string `json:"rollups"`
}

// SetupIngest copies values from genericCfg of type RunConfig to actionCfg of type IngestConfig.
func SetupIngest(genericCfg interface{}, actionCfg interface{}) error {
	src := genericCfg.(*RunConfig)
	tgt := actionCfg.(*IngestConfig)
	var err error
	// Setup real connection details into tgt struct.
	// Commands that only touch the target have no source.
	tgt.SrcConnDetails = nil
	if src.SourceString.GetConnectionName() != "" {
		if tgt.SrcConnDetails, err = src.Connections.GetConnectionDetails(src.SourceString.GetConnectionName()); err != nil {
			return err
		}
	}
	if tgt.TgtConnDetails, err = src.Connections.GetConnectionDetails(src.TargetString.GetConnectionName()); err != nil {
		return err
	}
	tgt.ArchiveConnDetails = nil
	tgt.ArchiveConnection = src.ArchiveString.GetConnectionName()
	if tgt.ArchiveConnection != "" {
		if tgt.ArchiveConnDetails, err = src.Connections.GetConnectionDetails(tgt.ArchiveConnection); err != nil {
			return err
		}
	}
	// General
	tgt.LogLevel = src.LogLevel
	tgt.StackDumpOnPanic = src.StackDumpOnPanic
	tgt.StatsDumpFrequencySeconds = src.StatsDumpFrequencySeconds
	tgt.ExportConfigType = src.ExportConfigType
	tgt.IngestSettings = src.IngestSettings
	// Source
	tgt.SourceConnection = src.SourceString.GetConnectionName()
	// Target
	tgt.TargetConnection = src.TargetString.GetConnectionName()
	tgt.TargetNamespace = src.TargetString.GetObject()
	return nil
}

func (c *IngestConfig) stdout() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

func (c *IngestConfig) namespace() rdbms.Namespace {
	return rdbms.Namespace{Namespace: c.TargetNamespace}
}

// validate checks the full ingest config before anything is opened.
func (c *IngestConfig) validate() error {
	if c.SourceConnection == "" || c.SrcConnDetails == nil {
		return errors.New("missing source workspace <connection>")
	}
	if c.SrcConnDetails.Type != constants.ConnectionTypeWorkspace {
		return fmt.Errorf("source connection %q must be of type %v, got %v", c.SourceConnection, constants.ConnectionTypeWorkspace, c.SrcConnDetails.Type)
	}
	return c.validateTarget()
}

// validateTarget checks the target side of the config.
// A namespace is required by SQL targets only.
func (c *IngestConfig) validateTarget() error {
	if err := helper.ValidateStructIsPopulated(c); err != nil {
		return err
	}
	if c.TgtConnDetails == nil {
		return errors.New("missing target connection details")
	}
	if !rdbms.IsTableConnection(c.TgtConnDetails.Type) {
		return fmt.Errorf("target connection %q has unsupported type %v", c.TargetConnection, c.TgtConnDetails.Type)
	}
	if c.TgtConnDetails.Type != constants.ConnectionTypeCsv {
		if c.TargetNamespace == "" {
			return errors.New("please supply the target as <connection>.[<catalog>.]<schema>")
		}
		if err := c.namespace().Validate(); err != nil {
			return err
		}
	}
	if c.ArchiveConnDetails != nil && c.ArchiveConnDetails.Type != constants.ConnectionTypeS3 {
		return fmt.Errorf("archive connection %q must be of type %v, got %v", c.ArchiveConnection, constants.ConnectionTypeS3, c.ArchiveConnDetails.Type)
	}
	if _, err := components.ParseMissingKeyPolicy(c.MissingKeyPolicy); err != nil {
		return err
	}
	return nil
}

// newGenieClient builds the workspace REST client from the source connection.
func (c *IngestConfig) newGenieClient(log logger.Logger) (*genie.Client, error) {
	w := shared.WorkspaceConnectionDetails{Dsn: c.SrcConnDetails.Data[shared.DefaultDsnConnectionKeyNames.Dsn]}
	host, token, err := w.GetHostAndToken()
	if err != nil {
		return nil, errors.Wrapf(err, "bad workspace connection %q", c.SourceConnection)
	}
	cfg := genie.NewDefaultConfig(host, token)
	cfg.PageSize = c.PageSize
	cfg.Throttle = time.Duration(c.ThrottleMillis) * time.Millisecond
	cfg.MaxRetries = c.MaxRetries
	return genie.NewClient(log, cfg)
}

// openTarget returns the table writer for the target connection.
// The returned db is nil for CSV targets.
func (c *IngestConfig) openTarget(log logger.Logger, sm stats.StatsManager) (components.TableWriter, shared.Connector, error) {
	if c.TgtConnDetails.Type == constants.ConnectionTypeCsv {
		f := shared.FileConnectionDetails{Type: c.TgtConnDetails.Type, Dsn: c.TgtConnDetails.Data[shared.DefaultDsnConnectionKeyNames.Dsn]}
		if err := f.Parse(); err != nil {
			return nil, nil, err
		}
		w, err := components.NewCsvTableWriter(components.CsvTableWriterConfig{
			Log:       log,
			OutputDir: f.GetPath(),
			UseGzip:   f.UseGzip(),
			Stats:     sm,
		})
		return w, nil, err
	}
	db, err := rdbms.OpenDbConnection(log, *c.TgtConnDetails)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to open target connection %q", c.TargetConnection)
	}
	w, err := components.NewTableMerge(components.TableMergeConfig{
		Log:           log,
		OutputDb:      db,
		Namespace:     c.namespace(),
		ExecBatchSize: c.CommitBatchSize,
		Stats:         sm,
	})
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return w, db, nil
}

// checkTargetTables fails unless every table exists with all of its columns.
func checkTargetTables(ctx context.Context, log logger.Logger, db shared.Connector, ns rdbms.Namespace) error {
	checks, err := td.CheckTables(ctx, log, db, ns, td.AllSchemas())
	if err != nil {
		return err
	}
	var problems []string
	for _, chk := range checks {
		switch {
		case !chk.Exists:
			problems = append(problems, chk.Table+" is missing")
		case len(chk.MissingColumns) > 0:
			problems = append(problems, fmt.Sprintf("%v is missing columns %v", chk.Table, strings.Join(chk.MissingColumns, ", ")))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("target is not ready (%v): use 'gp ddl --execute-ddl' to create it", strings.Join(problems, "; "))
	}
	return nil
}

// newPageArchive returns the archive for the s3 connection in c, or nil if there isn't one.
func (c *IngestConfig) newPageArchive(log logger.Logger, runId string, sm stats.StatsManager) (*components.PageArchive, error) {
	if c.ArchiveConnDetails == nil {
		return nil, nil
	}
	b := s3.NewAwsBucket(c.ArchiveConnDetails)
	if err := helper.ValidateStructIsPopulated(b); err != nil {
		return nil, errors.Wrapf(err, "bad archive connection %q", c.ArchiveConnection)
	}
	client, err := s3.NewClient(*b)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create s3 client for archive %v", b)
	}
	log.Info("archiving raw pages to ", b)
	return components.NewPageArchive(log, client, runId, sm.AddStepWatcher(components.StepArchive)), nil
}

// RunIngest executes the ingest action for cfg of type *IngestConfig.
func RunIngest(cfg interface{}) error {
	c := cfg.(*IngestConfig)
	if c.ExportConfigType != "" { // if the user wants the run config on STDOUT...
		return outputRunConfig(c, c.stdout(), c.ExportConfigType)
	}
	log := newActionLogger(c.LogLevel, c.StackDumpOnPanic)
	ctx, cancel := signalContext(log)
	defer cancel()
	sm := stats.NewRunStats(log, stats.SetStatsDumpFrequency(c.StatsDumpFrequencySeconds))
	res, err := Ingest(ctx, log, c, xid.New().String(), sm)
	if err != nil {
		return err
	}
	log.Info(fmt.Sprintf("ingest %v complete: %v spaces (%v selected), %v conversations, %v messages, %v quarantined, %v dropped",
		res.RunId, res.Spaces, res.SelectedSpaces, res.Conversations, res.Messages, res.Quarantined, res.Dropped))
	return nil
}

// Ingest runs the pipeline for c and then the rollups, unless they are skipped or the target is CSV.
func Ingest(ctx context.Context, log logger.Logger, c *IngestConfig, runId string, sm stats.StatsManager) (*IngestResult, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	log = logger.WithFields(log, map[string]interface{}{"run_id": runId})
	filter, err := components.NewSpaceFilter(log, c.SpaceIds, c.SpaceFilter)
	if err != nil {
		return nil, err
	}
	policy, _ := components.ParseMissingKeyPolicy(c.MissingKeyPolicy)
	client, err := c.newGenieClient(log)
	if err != nil {
		return nil, err
	}
	archive, err := c.newPageArchive(log, runId, sm)
	if err != nil {
		return nil, err
	}
	if archive != nil {
		client.SetPageHandler(archive.HandlePage)
	}
	writer, db, err := c.openTarget(log, sm)
	if err != nil {
		return nil, err
	}
	if db != nil {
		defer db.Close()
		if err = checkTargetTables(ctx, log, db, c.namespace()); err != nil {
			return nil, err
		}
	}
	p, err := components.NewPipeline(components.PipelineConfig{
		Log:              log,
		Lister:           client,
		Directory:        client,
		Writer:           writer,
		SpaceFilter:      filter,
		MissingKeyPolicy: policy,
		RunId:            runId,
		IngestedAt:       time.Now().UTC(),
		Stats:            sm,
	})
	if err != nil {
		return nil, err
	}
	sm.StartDumping()
	defer sm.StopDumping()
	res, err := p.Run(ctx)
	if err != nil {
		return nil, err
	}
	retval := &IngestResult{RunResult: res, Rollups: []string{}}
	switch {
	case c.SkipRollups:
		log.Info("skipping rollups")
	case db == nil:
		log.Warn("rollups need a SQL target, skipping them for ", c.TgtConnDetails.Type, " target ", c.TargetConnection)
	default:
		if retval.Rollups, err = buildRollups(ctx, log, c, db, sm); err != nil {
			return retval, err
		}
	}
	return retval, nil
}
