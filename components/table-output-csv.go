package components

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"sync"

	"github.com/pkg/errors"
	f "github.com/relloyd/geniepipe/file"
	"github.com/relloyd/geniepipe/helper"
	"github.com/relloyd/geniepipe/logger"
	s "github.com/relloyd/geniepipe/stats"
	"github.com/relloyd/geniepipe/stream"
	td "github.com/relloyd/geniepipe/table-definition"
)

type CsvTableWriterConfig struct {
	Log       logger.Logger
	OutputDir string `errorTxt:"CSV output directory" mandatory:"yes"`
	UseGzip   bool
	Stats     s.StatsManager
}

// CsvTableWriter implements TableWriter with one CSV file per table in a directory.
// Each merge reads the file, upserts rows on the key in memory and rewrites the file.
type CsvTableWriter struct {
	cfg CsvTableWriterConfig
	mu  sync.Mutex
}

func NewCsvTableWriter(cfg CsvTableWriterConfig) (*CsvTableWriter, error) {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "unable to create CSV output directory %v", cfg.OutputDir)
	}
	return &CsvTableWriter{cfg: cfg}, nil
}

func (w *CsvTableWriter) file(sch *td.Schema) *f.CSVTableFile {
	return f.NewCSVTableFile(w.cfg.Log, w.cfg.OutputDir, sch.Table, "csv", w.cfg.UseGzip)
}

func (w *CsvTableWriter) Merge(ctx context.Context, sch *td.Schema, rows []stream.Record) error {
	if len(rows) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	var sw *s.StepWatcher
	if w.cfg.Stats != nil {
		sw = w.cfg.Stats.AddStepWatcher("merge-" + sch.Table)
		sw.StartWatching()
		defer sw.StopWatching()
	}
	cols := sch.ColumnNames()
	file := w.file(sch)
	header, existing, err := file.Read()
	if err != nil {
		return err
	}
	if header != nil && !reflect.DeepEqual(header, cols) {
		return fmt.Errorf("CSV file %v has header %v, expected %v", file.Name(), header, cols)
	}
	keyIdx := 0
	for idx, c := range cols {
		if c == sch.Key {
			keyIdx = idx
		}
	}
	positions := make(map[string]int, len(existing)+len(rows))
	for idx, rec := range existing {
		positions[rec[keyIdx]] = idx
	}
	for _, row := range rows {
		rec := row.GetDataKeysAsStringSlice(w.cfg.Log, cols)
		if idx, ok := positions[rec[keyIdx]]; ok {
			existing[idx] = rec
			continue
		}
		positions[rec[keyIdx]] = len(existing)
		existing = append(existing, rec)
	}
	if err = file.Write(cols, existing); err != nil {
		return err
	}
	if sw != nil {
		sw.AddRows(len(rows))
	}
	w.cfg.Log.Info("merged ", len(rows), " rows into ", file.Name())
	return nil
}
