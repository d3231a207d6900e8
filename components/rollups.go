package components

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	c "github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/rdbms"
	"github.com/relloyd/geniepipe/rdbms/shared"
	s "github.com/relloyd/geniepipe/stats"
	td "github.com/relloyd/geniepipe/table-definition"
)

const (
	RollupConversationsDaily        = c.RollupTablePrefix + "conversations_daily"
	RollupUniqueCreatorsDaily       = c.RollupTablePrefix + "unique_creators_daily"
	RollupTopCreators               = c.RollupTablePrefix + "top_creators"
	RollupMessagesPerConversation   = c.RollupTablePrefix + "messages_per_conversation"
	RollupConversationHourHistogram = c.RollupTablePrefix + "conversation_hour_histogram"
)

type RollupConfig struct {
	Log               logger.Logger
	OutputDb          shared.Connector
	Namespace         rdbms.Namespace
	LookbackDays      int // window of the daily and top creator rollups.
	ShortLookbackDays int // window of the per conversation and hourly rollups.
	TopN              int // creators kept per space; 0 keeps all.
	StepWatcher       *s.StepWatcher
}

// Rollup is one aggregate table rebuilt from the merged tables.
type Rollup struct {
	Table string
	Query string
}

// Rollups rebuilds the aggregate tables used by dashboards.
type Rollups struct {
	cfg     RollupConfig
	dialect *shared.SqlDialect
}

func NewRollups(cfg RollupConfig) (*Rollups, error) {
	if cfg.OutputDb == nil {
		return nil, errors.New("missing db connection for rollups")
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = c.RollupLookbackDaysDefault
	}
	if cfg.ShortLookbackDays <= 0 {
		cfg.ShortLookbackDays = c.RollupShortLookbackDaysDefault
	}
	if cfg.TopN < 0 {
		return nil, fmt.Errorf("top-n must not be negative, got %v", cfg.TopN)
	}
	return &Rollups{cfg: cfg, dialect: cfg.OutputDb.GetDmlGenerator().GetDialect()}, nil
}

func (r *Rollups) table(name string) string {
	return r.cfg.Namespace.Qualify(name)
}

// Definitions returns the query behind each rollup table.
func (r *Rollups) Definitions() []Rollup {
	d := r.dialect
	spaces := r.table(td.SpacesSchema().Table)
	conversations := r.table(td.ConversationsSchema().Table)
	messages := r.table(td.MessagesSchema().Table)
	window := d.WindowStart(r.cfg.LookbackDays)
	shortWindow := d.WindowStart(r.cfg.ShortLookbackDays)
	convDay := d.DayTrunc("c.created_timestamp")
	msgDay := d.DayTrunc("m.created_timestamp")
	convHour := d.HourOf("c.created_timestamp")

	topCreators := fmt.Sprintf(`select space_id, title, author_name, conversation_count, creator_rank
from (
  select m.space_id, s.title, m.author_name,
    count(distinct m.conversation_id) as conversation_count,
    rank() over (partition by m.space_id order by count(distinct m.conversation_id) desc) as creator_rank
  from %v m
  join %v s on m.space_id = s.space_id
  where m.created_timestamp >= %v
  group by m.space_id, s.title, m.author_name
) r`, messages, spaces, window)
	if r.cfg.TopN > 0 {
		topCreators = fmt.Sprintf("%v\nwhere creator_rank <= %d", topCreators, r.cfg.TopN)
	}

	return []Rollup{
		{
			Table: RollupConversationsDaily,
			Query: fmt.Sprintf(`select c.space_id, s.title, %v as activity_date, count(c.conversation_id) as conversations
from %v c
join %v s on c.space_id = s.space_id
where c.created_timestamp >= %v
group by c.space_id, s.title, %v`, convDay, conversations, spaces, window, convDay),
		},
		{
			Table: RollupUniqueCreatorsDaily,
			Query: fmt.Sprintf(`select m.space_id, s.title, %v as activity_date, count(distinct m.author_id) as unique_creators
from %v m
join %v s on m.space_id = s.space_id
where m.created_timestamp >= %v
group by m.space_id, s.title, %v`, msgDay, messages, spaces, window, msgDay),
		},
		{
			Table: RollupTopCreators,
			Query: topCreators,
		},
		{
			Table: RollupMessagesPerConversation,
			Query: fmt.Sprintf(`select c.conversation_id, c.title, m.author_name,
  count(m.message_id) as messages,
  min(m.created_timestamp) as first_message_ts,
  max(m.created_timestamp) as last_message_ts,
  %v as duration_minutes
from %v c
left join %v m on m.conversation_id = c.conversation_id
where c.created_timestamp >= %v
group by c.conversation_id, c.title, m.author_name`,
				d.MinutesBetween("min(m.created_timestamp)", "max(m.created_timestamp)"), conversations, messages, shortWindow),
		},
		{
			Table: RollupConversationHourHistogram,
			Query: fmt.Sprintf(`select c.space_id, s.title, %v as hour_of_day, count(*) as conversations
from %v c
join %v s on c.space_id = s.space_id
where c.created_timestamp >= %v
group by c.space_id, s.title, %v`, convHour, conversations, spaces, shortWindow, convHour),
		},
	}
}

// Statements returns the SQL that rebuilds every rollup, in order.
func (r *Rollups) Statements() []string {
	retval := make([]string, 0)
	for _, def := range r.Definitions() {
		retval = append(retval, r.dialect.CreateOrReplaceTableAs(r.table(def.Table), def.Query)...)
	}
	return retval
}

// Build recreates every rollup table.
func (r *Rollups) Build(ctx context.Context) error {
	if r.cfg.StepWatcher != nil {
		r.cfg.StepWatcher.StartWatching()
		defer r.cfg.StepWatcher.StopWatching()
	}
	for _, def := range r.Definitions() {
		for _, stmt := range r.dialect.CreateOrReplaceTableAs(r.table(def.Table), def.Query) {
			r.cfg.Log.Debug("executing rollup SQL: ", strings.TrimSpace(stmt))
			if _, err := r.cfg.OutputDb.ExecContext(ctx, stmt); err != nil {
				return errors.Wrapf(err, "error building rollup %v", def.Table)
			}
		}
		if r.cfg.StepWatcher != nil {
			r.cfg.StepWatcher.AddRows(1)
		}
		r.cfg.Log.Info("rebuilt rollup ", r.table(def.Table))
	}
	return nil
}
