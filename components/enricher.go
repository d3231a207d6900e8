package components

import (
	"context"

	"github.com/pkg/errors"
	"github.com/relloyd/geniepipe/genie"
	"github.com/relloyd/geniepipe/helper"
	"github.com/relloyd/geniepipe/logger"
	s "github.com/relloyd/geniepipe/stats"
	"github.com/relloyd/geniepipe/stream"
	td "github.com/relloyd/geniepipe/table-definition"
)

type EnricherConfig struct {
	Log         logger.Logger
	Directory   genie.UserDirectory
	IdField     string         // the row field holding the user id
	NameField   string         // set to the display name of the user
	EmailField  string         // set to the email of the user
	StepWatcher *s.StepWatcher // counts distinct users looked up
}

// Enricher left joins user details onto rows.
// Each distinct user id is resolved once per Enricher.
type Enricher struct {
	cfg   EnricherConfig
	users map[string]*genie.User // nil values are users that could not be resolved
}

// NewMessageEnricher returns an Enricher for rows of the messages schema.
func NewMessageEnricher(log logger.Logger, dir genie.UserDirectory, sw *s.StepWatcher) *Enricher {
	return NewEnricher(EnricherConfig{
		Log:         log,
		Directory:   dir,
		IdField:     td.ColAuthorId,
		NameField:   td.ColAuthorName,
		EmailField:  td.ColAuthorEmail,
		StepWatcher: sw,
	})
}

func NewEnricher(cfg EnricherConfig) *Enricher {
	return &Enricher{cfg: cfg, users: make(map[string]*genie.User)}
}

// Enrich sets the name and email fields of every row.
// The number of rows is unchanged. Rows whose user can't be resolved get nil values.
// Only context cancellation causes an error.
func (e *Enricher) Enrich(ctx context.Context, rows []stream.Record) ([]stream.Record, error) {
	for _, id := range e.distinctIds(rows) {
		if _, ok := e.users[id]; ok {
			continue
		}
		u, err := e.resolve(ctx, id)
		if err != nil {
			return nil, err
		}
		e.users[id] = u
		if e.cfg.StepWatcher != nil {
			e.cfg.StepWatcher.AddRows(1)
		}
	}
	resolved := 0
	for _, row := range rows {
		var name, email interface{}
		if row.HasData(e.cfg.IdField) {
			if u := e.users[idString(e.cfg.Log, row.GetData(e.cfg.IdField))]; u != nil {
				resolved++
				name = nilIfEmpty(u.DisplayName)
				email = nilIfEmpty(u.Email)
			}
		}
		row.SetData(e.cfg.NameField, name)
		row.SetData(e.cfg.EmailField, email)
	}
	e.cfg.Log.Info("enriched ", resolved, " of ", len(rows), " rows with user details")
	return rows, nil
}

func (e *Enricher) resolve(ctx context.Context, id string) (*genie.User, error) {
	u, err := e.cfg.Directory.GetUser(ctx, id)
	if err == nil {
		return u, nil
	}
	if ctx.Err() != nil {
		return nil, errors.Wrap(ctx.Err(), "user enrichment cancelled")
	}
	if errors.Cause(err) != genie.ErrUserNotFound {
		e.cfg.Log.Warn("unable to resolve user ", id, ": ", err)
	} else {
		e.cfg.Log.Debug("user ", id, " not found")
	}
	return nil, nil
}

// distinctIds returns the non-empty user ids found in rows in first-seen order.
func (e *Enricher) distinctIds(rows []stream.Record) []string {
	seen := make(map[string]struct{})
	retval := make([]string, 0)
	for _, row := range rows {
		if !row.HasData(e.cfg.IdField) {
			continue
		}
		id := idString(e.cfg.Log, row.GetData(e.cfg.IdField))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			retval = append(retval, id)
		}
	}
	return retval
}

func idString(log logger.Logger, v interface{}) string {
	if v == nil {
		return ""
	}
	return helper.GetStringFromInterfaceUseUtcTime(log, v)
}

func nilIfEmpty(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
