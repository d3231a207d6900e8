package tabledefinition

import (
	"regexp"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/relloyd/geniepipe/rdbms"
	"github.com/relloyd/geniepipe/rdbms/shared"
)

var reWhiteSpace = regexp.MustCompile(`\s+`)

func normaliseSql(s string) string {
	return strings.TrimSpace(reWhiteSpace.ReplaceAllString(s, " "))
}

func TestTableDDLDatabricks(t *testing.T) {
	g := NewGomegaWithT(t)
	s := ConversationsSchema()
	ddl, err := TableDDL(shared.MustGetDialect("databricks"), MustGetMapper("databricks"), rdbms.Namespace{Namespace: "main.genie"}, &s)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ddl).To(HaveLen(1))
	g.Expect(normaliseSql(ddl[0])).To(Equal(normaliseSql(`create table if not exists main.genie.genie_conversations (
		space_id STRING,
		conversation_id STRING,
		title STRING,
		created_timestamp TIMESTAMP,
		ingested_at TIMESTAMP,
		payload_json STRING
	) using delta
	partitioned by (space_id)`)))
}

func TestTableDDLSqlServerHasPrimaryKey(t *testing.T) {
	g := NewGomegaWithT(t)
	s := SpacesSchema()
	ddl, err := TableDDL(shared.MustGetDialect("sqlserver"), MustGetMapper("sqlserver"), rdbms.Namespace{Namespace: "genie"}, &s)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ddl[0]).To(HavePrefix("if object_id('genie.genie_spaces', 'U') is null create table genie.genie_spaces"))
	g.Expect(ddl[0]).To(ContainSubstring("description nvarchar(max)"))
	g.Expect(ddl[0]).To(ContainSubstring("primary key (space_id)"))
}

func TestTargetDDL(t *testing.T) {
	g := NewGomegaWithT(t)
	ddl, err := TargetDDL(shared.MustGetDialect("duckdb"), MustGetMapper("duckdb"), rdbms.Namespace{Namespace: "genie"}, AllSchemas())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ddl).To(HaveLen(5))
	g.Expect(ddl[0]).To(Equal("create schema if not exists genie"))
	g.Expect(ddl[4]).To(ContainSubstring("genie.genie_quarantine"))

	ddl, err = TargetDDL(shared.MustGetDialect("duckdb"), MustGetMapper("duckdb"), rdbms.Namespace{}, AllSchemas())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ddl).To(HaveLen(4))
}
