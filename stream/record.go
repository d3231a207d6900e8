package stream

import (
	"fmt"
	"sort"

	h "github.com/relloyd/geniepipe/helper"
	"github.com/relloyd/geniepipe/logger"
)

// Record is a single flattened row passed between pipeline stages.
// Null column values are held as nil interfaces.
type Record struct {
	data map[string]interface{}
}

// NewRecord creates a new Record and returns it by value.
func NewRecord() Record {
	return Record{data: make(map[string]interface{})}
}

func NewNilRecord() Record {
	return Record{}
}

func (sr Record) RecordIsNil() bool {
	return sr.data == nil
}

func (sr Record) SetData(name string, value interface{}) {
	sr.data[name] = value
}

// GetData returns the value of field name.
// It panics if the field does not exist since that means a schema and its rows have drifted apart.
func (sr Record) GetData(name string) interface{} {
	val, ok := sr.data[name]
	if !ok {
		panic(fmt.Sprintf("Invalid key name %q supplied while trying to fetch value from record: %v", name, sr.data))
	}
	return val
}

// HasData reports whether field name exists in the record, even if its value is nil.
func (sr Record) HasData(name string) bool {
	_, ok := sr.data[name]
	return ok
}

func (sr Record) GetDataMap() map[string]interface{} {
	return sr.data
}

func (sr Record) GetDataLen() int {
	return len(sr.data)
}

// GetDataAsStringUseUtcTime will convert the value of field name to a string.
// Times will be converted to UTC.
func (sr Record) GetDataAsStringUseUtcTime(log logger.Logger, name string) string {
	v, ok := sr.data[name]
	if !ok {
		panic(fmt.Sprintf("unexpected field %q does not exist in the record", name))
	}
	return h.GetStringFromInterface(log, v, true)
}

// GetDataByKeys returns the values found for keys in key order.
func (sr Record) GetDataByKeys(keys []string) []interface{} {
	retval := make([]interface{}, len(keys))
	for idx, k := range keys {
		retval[idx] = sr.GetData(k)
	}
	return retval
}

// GetDataKeysAsStringSlice returns the string representation of the values found for keys in key order.
func (sr Record) GetDataKeysAsStringSlice(log logger.Logger, keys []string) []string {
	retval := make([]string, len(keys))
	for idx, k := range keys {
		retval[idx] = sr.GetDataAsStringUseUtcTime(log, k)
	}
	return retval
}

// GetSortedDataMapKeys will return a slice of the keys found in the record sorted alphabetically.
func (sr Record) GetSortedDataMapKeys() []string {
	retval := make([]string, 0, len(sr.data))
	for k := range sr.data {
		retval = append(retval, k)
	}
	sort.Strings(retval)
	return retval
}

func (sr Record) CopyTo(t Record) {
	for k, v := range sr.data {
		t.SetData(k, v)
	}
}

// Clone returns a shallow copy of the record.
func (sr Record) Clone() Record {
	retval := NewRecord()
	sr.CopyTo(retval)
	return retval
}
