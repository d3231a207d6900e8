package components

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/geniepipe/genie"
	"github.com/relloyd/geniepipe/helper"
	"github.com/relloyd/geniepipe/logger"
	s "github.com/relloyd/geniepipe/stats"
	"github.com/relloyd/geniepipe/stream"
	td "github.com/relloyd/geniepipe/table-definition"
)

// Step names reported by the stats manager.
const (
	StepFetchSpaces        = "fetch-spaces"
	StepFetchConversations = "fetch-conversations"
	StepFetchMessages      = "fetch-messages"
	StepFlatten            = "flatten"
	StepQuarantine         = "quarantine"
	StepEnrich             = "enrich-users"
	StepArchive            = "archive-pages"
	StepRollups            = "rollups"
)

type PipelineConfig struct {
	Log              logger.Logger
	Lister           genie.Lister
	Directory        genie.UserDirectory
	Writer           TableWriter
	SpaceFilter      *SpaceFilter // optional; nil selects every space.
	MissingKeyPolicy MissingKeyPolicy
	RunId            string
	IngestedAt       time.Time
	Stats            s.StatsManager
}

// RunResult counts the rows merged per entity by one run.
type RunResult struct {
	RunId          string    `json:"runId"`
	IngestedAt     time.Time `json:"ingestedAt"`
	Spaces         int       `json:"spaces"`
	SelectedSpaces int       `json:"selectedSpaces"`
	Conversations  int       `json:"conversations"`
	Messages       int       `json:"messages"`
	Quarantined    int       `json:"quarantined"`
	Dropped        int       `json:"dropped"`
}

// Pipeline ingests spaces, then the conversations of the selected spaces, then the messages of those
// conversations. Each entity is flattened, deduplicated and merged before the next is fetched.
type Pipeline struct {
	cfg        PipelineConfig
	schemas    map[string]*td.Schema
	flatteners map[string]*Flattener
	enricher   *Enricher
	quarantine []stream.Record
	result     *RunResult
}

func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.Lister == nil || cfg.Directory == nil || cfg.Writer == nil {
		return nil, errors.New("pipeline requires a lister, a user directory and a table writer")
	}
	if cfg.Stats == nil {
		cfg.Stats = s.NewRunStats(cfg.Log, s.SetStatsDumpFrequency(0))
	}
	p := &Pipeline{
		cfg:        cfg,
		schemas:    make(map[string]*td.Schema),
		flatteners: make(map[string]*Flattener),
		result:     &RunResult{RunId: cfg.RunId, IngestedAt: cfg.IngestedAt},
	}
	flattenWatcher := cfg.Stats.AddStepWatcher(StepFlatten)
	quarantineWatcher := cfg.Stats.AddStepWatcher(StepQuarantine)
	for _, sch := range td.AllSchemas() {
		sch := sch
		p.schemas[sch.Entity] = &sch
		if sch.Entity == td.EntityQuarantine {
			continue
		}
		f, err := NewFlattener(FlattenerConfig{
			Log:               cfg.Log,
			Schema:            &sch,
			MissingKeyPolicy:  cfg.MissingKeyPolicy,
			IngestedAt:        cfg.IngestedAt,
			StepWatcher:       flattenWatcher,
			QuarantineWatcher: quarantineWatcher,
		})
		if err != nil {
			return nil, err
		}
		p.flatteners[sch.Entity] = f
	}
	p.enricher = NewMessageEnricher(cfg.Log, cfg.Directory, cfg.Stats.AddStepWatcher(StepEnrich))
	return p, nil
}

// Run executes the pipeline once.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	log := logger.WithFields(p.cfg.Log, map[string]interface{}{"run_id": p.cfg.RunId})
	for _, step := range []string{StepFlatten, StepQuarantine, StepEnrich} {
		sw := p.cfg.Stats.AddStepWatcher(step)
		sw.StartWatching()
		defer sw.StopWatching()
	}
	// Spaces.
	spaceRows, err := p.fetchAndFlatten(ctx, td.EntitySpaces, StepFetchSpaces,
		func() genie.PageIterator { return p.cfg.Lister.Spaces() }, nil, "error listing spaces")
	if err != nil {
		return nil, err
	}
	spaceRows, err = p.merge(ctx, td.EntitySpaces, spaceRows)
	if err != nil {
		return nil, err
	}
	p.result.Spaces = len(spaceRows)
	selected, err := p.cfg.SpaceFilter.selectOrAll(p.cfg.Log, spaceRows)
	if err != nil {
		return nil, err
	}
	p.result.SelectedSpaces = len(selected)
	log.Info("fetched ", len(spaceRows), " spaces; selected ", len(selected))
	// Conversations of the selected spaces.
	convRows := make([]stream.Record, 0)
	for _, spaceId := range selected {
		spaceId := spaceId
		rows, err := p.fetchAndFlatten(ctx, td.EntityConversations, StepFetchConversations,
			func() genie.PageIterator { return p.cfg.Lister.Conversations(spaceId) },
			map[string]string{td.ColSpaceId: spaceId},
			"error listing conversations for space "+spaceId)
		if err != nil {
			return nil, err
		}
		convRows = append(convRows, rows...)
	}
	convRows, err = p.merge(ctx, td.EntityConversations, convRows)
	if err != nil {
		return nil, err
	}
	p.result.Conversations = len(convRows)
	// Messages of the conversations listed by this run.
	msgRows := make([]stream.Record, 0)
	for _, conv := range convRows {
		spaceId := helper.GetStringFromInterfaceUseUtcTime(p.cfg.Log, conv.GetData(td.ColSpaceId))
		convId := helper.GetStringFromInterfaceUseUtcTime(p.cfg.Log, conv.GetData(td.ColConversationId))
		rows, err := p.fetchAndFlatten(ctx, td.EntityMessages, StepFetchMessages,
			func() genie.PageIterator { return p.cfg.Lister.Messages(spaceId, convId) },
			map[string]string{td.ColSpaceId: spaceId, td.ColConversationId: convId},
			"error listing messages for conversation "+convId)
		if err != nil {
			return nil, err
		}
		msgRows = append(msgRows, rows...)
	}
	msgRows = Dedupe(p.cfg.Log, td.ColMessageId, msgRows)
	if msgRows, err = p.enricher.Enrich(ctx, msgRows); err != nil {
		return nil, err
	}
	msgRows, err = p.merge(ctx, td.EntityMessages, msgRows)
	if err != nil {
		return nil, err
	}
	p.result.Messages = len(msgRows)
	// Records that could not be keyed.
	if len(p.quarantine) > 0 {
		if _, err = p.merge(ctx, td.EntityQuarantine, p.quarantine); err != nil {
			return nil, err
		}
		log.Warn("quarantined ", len(p.quarantine), " records in ", p.schemas[td.EntityQuarantine].Table)
	}
	p.result.Quarantined = len(p.quarantine)
	log.Info("ingest complete: ", p.result.Spaces, " spaces, ", p.result.Conversations, " conversations, ", p.result.Messages, " messages")
	return p.result, nil
}

// fetchAndFlatten drains the iterator returned by newIter and flattens every page.
func (p *Pipeline) fetchAndFlatten(
	ctx context.Context,
	entity string,
	step string,
	newIter func() genie.PageIterator,
	parents map[string]string,
	errTxt string,
) ([]stream.Record, error) {
	sw := p.cfg.Stats.AddStepWatcher(step)
	sw.StartWatching()
	defer sw.StopWatching()
	iter := newIter()
	retval := make([]stream.Record, 0)
	for {
		records, err := iter.Next(ctx)
		if err == io.EOF {
			return retval, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, errTxt)
		}
		sw.AddRows(len(records))
		rows, err := p.flatten(entity, records, parents)
		if err != nil {
			return nil, err
		}
		retval = append(retval, rows...)
	}
}

func (p *Pipeline) flatten(entity string, records []json.RawMessage, parents map[string]string) ([]stream.Record, error) {
	out, err := p.flatteners[entity].Flatten(records, parents)
	if err != nil {
		return nil, err
	}
	p.quarantine = append(p.quarantine, out.Quarantine...)
	p.result.Dropped += out.Dropped
	return out.Rows, nil
}

// merge deduplicates rows on the entity key and upserts them.
// It returns the deduplicated rows.
func (p *Pipeline) merge(ctx context.Context, entity string, rows []stream.Record) ([]stream.Record, error) {
	sch := p.schemas[entity]
	rows = Dedupe(p.cfg.Log, sch.Key, rows)
	if err := p.cfg.Writer.Merge(ctx, sch, rows); err != nil {
		return nil, errors.Wrapf(err, "error merging %v", entity)
	}
	return rows, nil
}

// selectOrAll applies the filter, which may be nil.
func (f *SpaceFilter) selectOrAll(log logger.Logger, rows []stream.Record) ([]string, error) {
	if f == nil {
		f = &SpaceFilter{log: log}
	}
	return f.Select(rows)
}
