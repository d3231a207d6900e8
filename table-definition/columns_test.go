package tabledefinition

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/relloyd/geniepipe/rdbms"
	"github.com/relloyd/geniepipe/rdbms/shared"
	"github.com/sirupsen/logrus"
)

func TestColumnsQuery(t *testing.T) {
	g := NewGomegaWithT(t)
	sqlText, args, err := columnsQuery(shared.MustGetDialect("databricks"), "databricks", rdbms.Namespace{Namespace: "main.genie"}, "genie_spaces")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(normaliseSql(sqlText)).To(Equal("select lower(column_name) as column_name from main.information_schema.columns where lower(table_schema) = lower(?) and lower(table_name) = lower(?) order by ordinal_position"))
	g.Expect(args).To(Equal([]interface{}{"genie", "genie_spaces"}))

	sqlText, args, err = columnsQuery(shared.MustGetDialect("postgres"), "postgres", rdbms.Namespace{}, "genie_spaces")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(sqlText).To(ContainSubstring("lower(table_schema) = lower(current_schema())"))
	g.Expect(sqlText).To(ContainSubstring("lower(table_name) = lower($1)"))
	g.Expect(args).To(Equal([]interface{}{"genie_spaces"}))

	sqlText, args, err = columnsQuery(shared.MustGetDialect("oracle"), "mockOracle", rdbms.Namespace{Namespace: `"Genie"`}, "genie_spaces")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(sqlText).To(ContainSubstring("owner = upper(:1)"))
	g.Expect(args).To(Equal([]interface{}{"Genie", "genie_spaces"}))

	_, _, err = columnsQuery(shared.MustGetDialect("duckdb"), "csv", rdbms.Namespace{}, "t")
	g.Expect(err).To(HaveOccurred())
}

func TestCompareColumns(t *testing.T) {
	g := NewGomegaWithT(t)
	s := SpacesSchema()
	g.Expect(CompareColumns(&s, []string{"SPACE_ID", "title", "description", "warehouse_id", "payload_json"})).To(Equal([]string{"ingested_at"}))
	g.Expect(CompareColumns(&s, s.ColumnNames())).To(BeEmpty())
}

func TestCheckTablesReportsQueryErrors(t *testing.T) {
	g := NewGomegaWithT(t)
	log := logrus.New()
	db, _ := shared.NewMockConnectionWithMockTx(log, "oracle")
	_, err := CheckTables(context.Background(), log, db, rdbms.Namespace{Namespace: "genie"}, AllSchemas())
	g.Expect(err).To(MatchError(ContainSubstring("error fetching columns of genie.genie_spaces")))
}
