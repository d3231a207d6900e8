package stream

import (
	"reflect"
	"testing"
	"time"

	"github.com/relloyd/geniepipe/logger"
)

func TestRecord_RecordIsNil(t *testing.T) {
	r1 := NewRecord()
	if r1.RecordIsNil() {
		t.Fatal("TestRecord_RecordIsNil: expected a new record (not nil)")
	}
	r2 := Record{}
	if !r2.RecordIsNil() {
		t.Fatal("TestRecord_RecordIsNil: expected zero struct and nil record")
	}
}

func TestRecord_GetSortedDataMapKeys(t *testing.T) {
	r1 := NewRecord()
	r1.SetData("keyA", "valueA")
	r1.SetData("keyC", "valueC")
	r1.SetData("keyB", nil)
	got := r1.GetSortedDataMapKeys()
	expected := []string{"keyA", "keyB", "keyC"}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("TestRecord_GetSortedDataMapKeys failed: expected = %v; got = %v", expected, got)
	}
}

func TestRecord_GetDataByKeys(t *testing.T) {
	log := logger.NewLogger("geniepipe", "info", true)
	ts := time.Unix(1700000000, 0).UTC()
	r := NewRecord()
	r.SetData("id", "M1")
	r.SetData("created", ts)
	r.SetData("author", nil)
	got := r.GetDataByKeys([]string{"author", "id", "created"})
	if !reflect.DeepEqual(got, []interface{}{nil, "M1", ts}) {
		t.Fatalf("unexpected values: %v", got)
	}
	s := r.GetDataKeysAsStringSlice(log, []string{"id", "created", "author"})
	if !reflect.DeepEqual(s, []string{"M1", "2023-11-14T22:13:20Z", ""}) {
		t.Fatalf("unexpected strings: %v", s)
	}
	if !r.HasData("author") || r.HasData("missing") {
		t.Fatal("HasData should report nil-valued fields as present")
	}
}

func TestRecord_GetDataPanicsOnMissingKey(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for a missing field")
		}
	}()
	NewRecord().GetData("missing")
}

func TestRecord_Clone(t *testing.T) {
	r := NewRecord()
	r.SetData("a", 1)
	c := r.Clone()
	c.SetData("a", 2)
	if r.GetData("a") != 1 {
		t.Fatal("clone must not share the underlying map")
	}
}
