package tabledefinition

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestTableDefinitionMapper(t *testing.T) {
	log := logrus.New()
	level, _ := logrus.ParseLevel("debug")
	log.SetLevel(level)
	log.Info("Testing TestTableDefinitionMapper()...")
	for connType, mapping := range mappings {
		mapper := MustGetMapper(connType)
		for _, l := range []LogicalType{TypeString, TypeText, TypeTimestampMs, TypeBoolean, TypeBigint, TypeDouble} {
			o, err := mapper.Map(l)
			if err != nil {
				t.Fatalf("%v: unexpected error mapping %v: %v", connType, l, err)
			}
			log.Debug(connType, ": mapped ", l, " to ", o)
		}
		if len(mapping) != len(logicalTypes) {
			t.Fatalf("%v: expected a mapping for every logical type", connType)
		}
	}
}

func TestGetMapper(t *testing.T) {
	m, err := GetMapper("odbc+sqlserver")
	if err != nil {
		t.Fatal(err)
	}
	if o, _ := m.Map(TypeTimestampMs); o != "datetime2" {
		t.Fatalf("expected datetime2; got %v", o)
	}
	if o, _ := MustGetMapper("snowflake").Map(TypeTimestampMs); o != "timestamp_ntz" {
		t.Fatalf("expected timestamp_ntz; got %v", o)
	}
	if _, err = m.Map(LogicalType("interval")); err == nil {
		t.Fatal("expected error for unknown logical type")
	}
	if _, err = GetMapper("csv"); err == nil {
		t.Fatal("expected error for csv connection")
	}
}
