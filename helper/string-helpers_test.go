package helper

import (
	"os"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/relloyd/geniepipe/logger"
)

func TestCsvToStringSliceTrimSpaces(t *testing.T) {
	g := NewGomegaWithT(t)
	g.Expect(CsvToStringSliceTrimSpaces(" S1, S2 ,,S3 ")).To(Equal([]string{"S1", "S2", "S3"}))
	g.Expect(CsvToStringSliceTrimSpaces("")).To(BeEmpty())
}

func TestGetStringFromInterface(t *testing.T) {
	g := NewGomegaWithT(t)
	log := logger.NewLogger("geniepipe", "info", true)
	ts := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	g.Expect(GetStringFromInterfaceUseUtcTime(log, ts)).To(Equal("2023-11-14T22:13:20Z"))
	g.Expect(GetStringFromInterfaceUseUtcTime(log, nil)).To(Equal(""))
	g.Expect(GetStringFromInterfaceUseUtcTime(log, 1.5)).To(Equal("1.5"))
	g.Expect(GetStringFromInterfaceUseUtcTime(log, int64(42))).To(Equal("42"))
	g.Expect(GetStringFromInterfaceUseUtcTime(log, true)).To(Equal("true"))
}

func TestGenerateStringOfColsEqualsCols(t *testing.T) {
	g := NewGomegaWithT(t)
	g.Expect(GenerateStringOfColsEqualsCols([]string{"a", "b"}, "t", "s", " and ")).
		To(Equal("t.a = s.a and t.b = s.b"))
	g.Expect(GenerateStringOfColsEqualsCols([]string{"a", "b"}, "", "s", ", ")).
		To(Equal("a = s.a, b = s.b"))
}

func TestSplit(t *testing.T) {
	g := NewGomegaWithT(t)
	a, b := Split("conn.schema.table", ".")
	g.Expect(a).To(Equal("conn"))
	g.Expect(b).To(Equal("schema.table"))
	a, b = SplitRight("conn.schema.table", ".")
	g.Expect(a).To(Equal("conn.schema"))
	g.Expect(b).To(Equal("table"))
	a, b = Split("conn", ".")
	g.Expect(a).To(Equal("conn"))
	g.Expect(b).To(Equal(""))
}

func TestOrderedMapKeys(t *testing.T) {
	g := NewGomegaWithT(t)
	o := StringSliceToOrderedMap([]string{"z", "a", "m"})
	g.Expect(OrderedMapKeysToStringSlice(o)).To(Equal([]string{"z", "a", "m"}))
}

func TestGetEnvVarName(t *testing.T) {
	g := NewGomegaWithT(t)
	g.Expect(GetEnvVarName("page-size")).To(Equal("GP_PAGE_SIZE"))
	g.Expect(GetDsnEnvVarName("target")).To(Equal("GP_TARGET_DSN"))
	g.Expect(GetRegionEnvVarName("archive")).To(Equal("GP_ARCHIVE_REGION"))
	_ = os.Setenv("GP_TEST_HELPER_VALUE", "x")
	defer os.Unsetenv("GP_TEST_HELPER_VALUE")
	g.Expect(ReadValueFromEnvWithDefault("GP_TEST_HELPER_VALUE", "y")).To(Equal("x"))
	g.Expect(ReadValueFromEnvWithDefault("GP_TEST_HELPER_MISSING", "y")).To(Equal("y"))
}

func TestValidateStructIsPopulated(t *testing.T) {
	g := NewGomegaWithT(t)
	type cfg struct {
		Name  string `mandatory:"yes" errorTxt:"name"`
		Count int    `mandatory:"yes" errorTxt:"count"`
		Opt   string
	}
	err := ValidateStructIsPopulated(&cfg{Name: "x"})
	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(Equal("please supply values for count"))
	g.Expect(ValidateStructIsPopulated(cfg{Name: "x", Count: 1})).To(Succeed())
}
