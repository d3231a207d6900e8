package components

import (
	"fmt"

	"github.com/relloyd/geniepipe/helper"
	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/stream"
)

// Dedupe returns one row per value of key.
// The last occurrence of a key wins and keys keep the order in which they were first seen.
// Rows without the key field are skipped since they can't be merged.
func Dedupe(log logger.Logger, key string, rows []stream.Record) []stream.Record {
	positions := make(map[string]int, len(rows))
	retval := make([]stream.Record, 0, len(rows))
	for _, row := range rows {
		if row.RecordIsNil() || !row.HasData(key) {
			continue
		}
		k := helper.GetStringFromInterfaceUseUtcTime(log, row.GetData(key))
		if idx, ok := positions[k]; ok {
			retval[idx] = row
			continue
		}
		positions[k] = len(retval)
		retval = append(retval, row)
	}
	if n := len(rows) - len(retval); n > 0 {
		log.Debug(fmt.Sprintf("dedupe on %v removed %v rows", key, n))
	}
	return retval
}
