package components

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
	f "github.com/relloyd/geniepipe/file"
	td "github.com/relloyd/geniepipe/table-definition"
	"github.com/sirupsen/logrus"
)

func TestCsvTableWriterUpsertsOnKey(t *testing.T) {
	for _, useGzip := range []bool{false, true} {
		g := NewGomegaWithT(t)
		dir := t.TempDir()
		w, err := NewCsvTableWriter(CsvTableWriterConfig{Log: logrus.New(), OutputDir: dir, UseGzip: useGzip})
		g.Expect(err).To(BeNil())
		sch := td.SpacesSchema()
		rows := spaceRowsFlattened(t, 2)

		g.Expect(w.Merge(context.Background(), &sch, rows)).To(Succeed())
		g.Expect(w.Merge(context.Background(), &sch, rows)).To(Succeed())

		updated := rows[1].Clone()
		updated.SetData(td.ColTitle, "renamed")
		g.Expect(w.Merge(context.Background(), &sch, append(spaceRowsFlattened(t, 3)[2:], updated))).To(Succeed())

		header, records, err := f.NewCSVTableFile(logrus.New(), dir, sch.Table, "csv", useGzip).Read()
		g.Expect(err).To(BeNil())
		g.Expect(header).To(Equal(sch.ColumnNames()))
		g.Expect(records).To(HaveLen(3))
		g.Expect(records[0][0]).To(Equal("S1"))
		g.Expect(records[1][0]).To(Equal("S2"))
		g.Expect(records[1][1]).To(Equal("renamed"))
		g.Expect(records[2][0]).To(Equal("S3"))
	}
}

func TestCsvTableWriterRejectsHeaderDrift(t *testing.T) {
	g := NewGomegaWithT(t)
	dir := t.TempDir()
	sch := td.SpacesSchema()
	g.Expect(f.NewCSVTableFile(logrus.New(), dir, sch.Table, "csv", false).Write([]string{"a", "b"}, nil)).To(Succeed())
	w, err := NewCsvTableWriter(CsvTableWriterConfig{Log: logrus.New(), OutputDir: dir})
	g.Expect(err).To(BeNil())
	g.Expect(w.Merge(context.Background(), &sch, spaceRowsFlattened(t, 1))).NotTo(Succeed())
}

func TestNewCsvTableWriterRequiresDirectory(t *testing.T) {
	if _, err := NewCsvTableWriter(CsvTableWriterConfig{Log: logrus.New()}); err == nil {
		t.Fatal("expected error without an output directory")
	}
}
