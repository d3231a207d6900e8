package components

import (
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/relloyd/geniepipe/rdbms"
	"github.com/relloyd/geniepipe/rdbms/shared"
	"github.com/sirupsen/logrus"
)

func newTestRollups(t *testing.T, dbType string, topN int) (*Rollups, *shared.MockConnectionWithMockTx) {
	log := logrus.New()
	db, _ := shared.NewMockConnectionWithMockTx(log, dbType)
	r, err := NewRollups(RollupConfig{Log: log, OutputDb: db, Namespace: rdbms.NewNamespace("", "genie"), TopN: topN})
	if err != nil {
		t.Fatal(err)
	}
	return r, db
}

func TestRollupDefinitions(t *testing.T) {
	g := NewGomegaWithT(t)
	r, _ := newTestRollups(t, "databricks", 10)
	defs := r.Definitions()
	tables := make([]string, 0, len(defs))
	for _, d := range defs {
		tables = append(tables, d.Table)
		if d.Table != RollupTopCreators {
			g.Expect(d.Query).NotTo(ContainSubstring("order by"))
		}
	}
	g.Expect(tables).To(Equal([]string{
		"g_conversations_daily",
		"g_unique_creators_daily",
		"g_top_creators",
		"g_messages_per_conversation",
		"g_conversation_hour_histogram",
	}))
	g.Expect(defs[0].Query).To(ContainSubstring("dateadd(day, -90, current_timestamp())"))
	g.Expect(defs[0].Query).To(ContainSubstring("from genie.genie_conversations c"))
	g.Expect(defs[2].Query).To(HaveSuffix("where creator_rank <= 10"))
	g.Expect(defs[3].Query).To(ContainSubstring("dateadd(day, -30, current_timestamp())"))
	g.Expect(defs[3].Query).To(ContainSubstring("left join genie.genie_messages m"))
	g.Expect(defs[4].Query).To(ContainSubstring("hour(c.created_timestamp) as hour_of_day"))
}

func TestRollupTopNZeroKeepsAllCreators(t *testing.T) {
	r, _ := newTestRollups(t, "databricks", 0)
	if q := r.Definitions()[2].Query; strings.Contains(q, "creator_rank <=") {
		t.Fatalf("expected no rank filter, got %v", q)
	}
}

func TestRollupStatementsPerDialect(t *testing.T) {
	cases := []struct {
		dbType string
		prefix string
		count  int
	}{
		{"databricks", "create or replace table genie.g_conversations_daily as", 5},
		{"duckdb", "create or replace table genie.g_conversations_daily as", 5},
		{"postgres", "drop table if exists genie.g_conversations_daily", 10},
		{"sqlserver", "drop table if exists genie.g_conversations_daily", 10},
	}
	for _, tc := range cases {
		t.Run(tc.dbType, func(t *testing.T) {
			g := NewGomegaWithT(t)
			r, db := newTestRollups(t, tc.dbType, 10)
			stmts := r.Statements()
			g.Expect(stmts).To(HaveLen(tc.count))
			g.Expect(stmts[0]).To(HavePrefix(tc.prefix))
			g.Expect(r.Build(context.Background())).To(Succeed())
			g.Expect(db.GetStatements()).To(HaveLen(tc.count))
		})
	}
}

func TestRollupBuildStopsOnError(t *testing.T) {
	g := NewGomegaWithT(t)
	r, db := newTestRollups(t, "databricks", 10)
	db.ExecErr = errors.New("no warehouse")
	err := r.Build(context.Background())
	g.Expect(err).NotTo(BeNil())
	g.Expect(err.Error()).To(ContainSubstring("g_conversations_daily"))
}

func TestNewRollupsRejectsNegativeTopN(t *testing.T) {
	db, _ := shared.NewMockConnectionWithMockTx(logrus.New(), "duckdb")
	if _, err := NewRollups(RollupConfig{Log: logrus.New(), OutputDb: db, TopN: -1}); err == nil {
		t.Fatal("expected error for negative top-n")
	}
}
