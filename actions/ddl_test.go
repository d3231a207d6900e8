package actions

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/relloyd/geniepipe/rdbms"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestTargetStatements(t *testing.T) {
	ddl, err := TargetStatements("databricks", rdbms.NewNamespace("main", "genie"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ddl[0], "create schema if not exists main.genie"))
	all := strings.Join(ddl, "\n")
	for _, table := range []string{"genie_spaces", "genie_conversations", "genie_messages", "genie_quarantine"} {
		require.Contains(t, all, "main.genie."+table)
	}
	_, err = TargetStatements("csv", rdbms.NewNamespace("", "x"))
	require.Error(t, err)
}

func TestDDLPrintsStatements(t *testing.T) {
	srv := newFakeWorkspace(t)
	var buf bytes.Buffer
	rc := newTestRunConfig(testConnections(srv, t.TempDir()), "wh.main.genie")
	rc.SourceString = ConnectionObject{}
	c := &IngestConfig{Stdout: &buf}
	require.NoError(t, SetupIngest(rc, c))
	require.NoError(t, DDL(context.Background(), logrus.New(), c))
	require.Contains(t, buf.String(), "main.genie.genie_messages")
	require.Contains(t, buf.String(), ";\n")

	csv := &IngestConfig{}
	require.NoError(t, SetupIngest(newTestRunConfig(testConnections(srv, t.TempDir()), "out"), csv))
	require.Error(t, DDL(context.Background(), logrus.New(), csv))
}
