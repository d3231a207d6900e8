package actions

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/relloyd/geniepipe/stats"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestRunConfig(conns memConnections, target string) *RunConfig {
	s := NewDefaultIngestSettings()
	s.ThrottleMillis = 0
	s.MaxRetries = 0
	return &RunConfig{
		SrcAndTgtConnections: SrcAndTgtConnections{
			Connections:  conns,
			SourceString: ConnectionObject{ConnectionObject: "ws"},
			TargetString: ConnectionObject{ConnectionObject: target},
		},
		LogLevel:       "error",
		IngestSettings: s,
	}
}

func readCsv(t *testing.T, name string) [][]string {
	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestIngestIntoCsv(t *testing.T) {
	srv := newFakeWorkspace(t)
	dir := t.TempDir()
	c := &IngestConfig{}
	require.NoError(t, SetupIngest(newTestRunConfig(testConnections(srv, dir), "out"), c))

	log := logrus.New()
	res, err := Ingest(context.Background(), log, c, "run1", stats.NewRunStats(log, stats.SetStatsDumpFrequency(0)))
	require.NoError(t, err)
	require.Equal(t, 2, res.Spaces)
	require.Equal(t, 2, res.Conversations)
	require.Equal(t, 2, res.Messages)
	require.Empty(t, res.Rollups, "csv targets skip rollups")

	msgs := readCsv(t, filepath.Join(dir, "genie_messages.csv"))
	require.Len(t, msgs, 3, "header and two messages")
	header := msgs[0]
	idx := -1
	for i, h := range header {
		if h == "author_name" {
			idx = i
		}
	}
	require.NotEqual(t, -1, idx)
	require.Equal(t, "Ann", msgs[1][idx])

	// A second run upserts in place.
	_, err = Ingest(context.Background(), log, c, "run2", stats.NewRunStats(log, stats.SetStatsDumpFrequency(0)))
	require.NoError(t, err)
	require.Len(t, readCsv(t, filepath.Join(dir, "genie_messages.csv")), 3)
}

func TestIngestSpaceFilter(t *testing.T) {
	srv := newFakeWorkspace(t)
	dir := t.TempDir()
	rc := newTestRunConfig(testConnections(srv, dir), "out")
	rc.SpaceFilter = `{"==":[{"var":"title"},"Ops"]}`
	c := &IngestConfig{}
	require.NoError(t, SetupIngest(rc, c))
	log := logrus.New()
	res, err := Ingest(context.Background(), log, c, "run1", stats.NewRunStats(log, stats.SetStatsDumpFrequency(0)))
	require.NoError(t, err)
	require.Equal(t, 2, res.Spaces)
	require.Equal(t, 1, res.SelectedSpaces)
	require.Equal(t, 1, res.Messages)
}

func TestIngestValidation(t *testing.T) {
	srv := newFakeWorkspace(t)
	conns := testConnections(srv, t.TempDir())
	log := logrus.New()
	sm := stats.NewRunStats(log, stats.SetStatsDumpFrequency(0))
	cases := []struct {
		name   string
		mutate func(rc *RunConfig)
	}{
		{"sql target without namespace", func(rc *RunConfig) { rc.TargetString = ConnectionObject{ConnectionObject: "wh"} }},
		{"bad namespace", func(rc *RunConfig) { rc.TargetString = ConnectionObject{ConnectionObject: "wh.a.b.c"} }},
		{"source is not a workspace", func(rc *RunConfig) { rc.SourceString = ConnectionObject{ConnectionObject: "out"} }},
		{"archive is not s3", func(rc *RunConfig) { rc.ArchiveString = ConnectionObject{ConnectionObject: "out"} }},
		{"bad policy", func(rc *RunConfig) { rc.MissingKeyPolicy = "ignore" }},
		{"bad filter", func(rc *RunConfig) { rc.SpaceFilter = `{"==":` }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rc := newTestRunConfig(conns, "out")
			tc.mutate(rc)
			c := &IngestConfig{}
			require.NoError(t, SetupIngest(rc, c))
			_, err := Ingest(context.Background(), log, c, "r", sm)
			require.Error(t, err)
		})
	}
	rc := newTestRunConfig(conns, "missing")
	require.Error(t, SetupIngest(rc, &IngestConfig{}))
}

func TestRunIngestExportsConfig(t *testing.T) {
	srv := newFakeWorkspace(t)
	rc := newTestRunConfig(testConnections(srv, t.TempDir()), "wh.main.genie")
	rc.ExportConfigType = "yaml"
	rc.SpaceIds = "S1,S2"
	var buf bytes.Buffer
	c := &IngestConfig{Stdout: &buf}
	require.NoError(t, SetupIngest(rc, c))
	require.NoError(t, RunIngest(c))
	out := buf.String()
	require.Contains(t, out, "targetNamespace: main.genie")
	require.Contains(t, out, "spaceIds: S1,S2")
	require.NotContains(t, out, "dapi123")

	c.ExportConfigType = "xml"
	require.Error(t, RunIngest(c))
}

func TestRollupRejectsCsv(t *testing.T) {
	srv := newFakeWorkspace(t)
	c := &IngestConfig{}
	require.NoError(t, SetupIngest(newTestRunConfig(testConnections(srv, t.TempDir()), "out"), c))
	log := logrus.New()
	_, err := Rollup(context.Background(), log, c, stats.NewRunStats(log))
	require.Error(t, err)
}
