package components

import (
	"context"
	"fmt"
	"path"

	"github.com/relloyd/geniepipe/aws/s3"
	"github.com/relloyd/geniepipe/genie"
	"github.com/relloyd/geniepipe/logger"
	s "github.com/relloyd/geniepipe/stats"
)

// PageArchive writes the raw body of every listing page to a bucket.
type PageArchive struct {
	log         logger.Logger
	putter      s3.Putter
	runId       string
	stepWatcher *s.StepWatcher
}

func NewPageArchive(log logger.Logger, putter s3.Putter, runId string, sw *s.StepWatcher) *PageArchive {
	return &PageArchive{log: log, putter: putter, runId: runId, stepWatcher: sw}
}

// PageKey returns the object key of a page: <run id>/<kind>/<parent ids>/page-000001.json.
func PageKey(runId string, p genie.Page) string {
	elems := append([]string{runId, p.Kind}, p.Parents...)
	elems = append(elems, fmt.Sprintf("page-%06d.json", p.Number))
	return path.Join(elems...)
}

// HandlePage implements genie.PageHandler.
func (a *PageArchive) HandlePage(ctx context.Context, p genie.Page) error {
	key := PageKey(a.runId, p)
	if err := a.putter.Put(ctx, key, p.Body, "application/json"); err != nil {
		return err
	}
	if a.stepWatcher != nil {
		a.stepWatcher.AddRows(1)
	}
	a.log.Debug("archived page ", key)
	return nil
}
