package components

import (
	"testing"

	. "github.com/onsi/gomega"
	"github.com/relloyd/geniepipe/stream"
	td "github.com/relloyd/geniepipe/table-definition"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

func spaceRows() []stream.Record {
	return []stream.Record{
		rec(td.ColSpaceId, "S1", td.ColTitle, "Sales"),
		rec(td.ColSpaceId, "S2", td.ColTitle, "Finance"),
		rec(td.ColSpaceId, "S3", td.ColTitle, "Sales EMEA"),
	}
}

func TestSpaceFilter(t *testing.T) {
	cases := []struct {
		name string
		ids  string
		rule string
		want []string
	}{
		{"no filter", "", "", []string{"S1", "S2", "S3"}},
		{"ids", " S3, S1 ", "", []string{"S1", "S3"}},
		{"rule", "", `{"==":[{"var":"title"},"Finance"]}`, []string{"S2"}},
		{"ids and rule", "S1,S2", `{"in":["Sales",{"var":"title"}]}`, []string{"S1"}},
		{"unknown id", "S9", "", []string{}},
		{"truthy string", "", `{"var":"title"}`, []string{"S1", "S2", "S3"}},
		{"null", "", `{"var":"missing"}`, []string{}},
		{"numbers", "", `{"if":[{"==":[{"var":"title"},"Finance"]},1,0]}`, []string{"S2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGomegaWithT(t)
			f, err := NewSpaceFilter(logrus.New(), tc.ids, tc.rule)
			g.Expect(err).To(BeNil())
			got, err := f.Select(spaceRows())
			g.Expect(err).To(BeNil())
			g.Expect(got).To(Equal(tc.want))
		})
	}
}

func TestSpaceFilterRejectsInvalidRule(t *testing.T) {
	if _, err := NewSpaceFilter(logrus.New(), "", `{"==":`); err == nil {
		t.Fatal("expected error for an invalid rule")
	}
}

func TestNilSpaceFilterMatchesEverything(t *testing.T) {
	var f *SpaceFilter
	ok, err := f.Match(rec(td.ColSpaceId, "S1"))
	if err != nil || !ok {
		t.Fatalf("expected a nil filter to match, got %v, %v", ok, err)
	}
}

func TestIsTruthy(t *testing.T) {
	g := NewGomegaWithT(t)
	for _, v := range []string{`true`, `1`, `-0.5`, `"x"`, `[0]`, `{}`} {
		g.Expect(isTruthy(gjson.Parse(v))).To(BeTrue(), v)
	}
	for _, v := range []string{`false`, `null`, `0`, `""`, `[]`, ``} {
		g.Expect(isTruthy(gjson.Parse(v))).To(BeFalse(), v)
	}
}
