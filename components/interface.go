package components

import (
	"context"

	"github.com/relloyd/geniepipe/stream"
	td "github.com/relloyd/geniepipe/table-definition"
)

// TableWriter upserts rows into the table described by a schema.
// Rows are matched on the schema key: matches are overwritten and the rest are inserted.
// Implementations apply all rows of one call atomically where the target allows it.
type TableWriter interface {
	Merge(ctx context.Context, s *td.Schema, rows []stream.Record) error
}
