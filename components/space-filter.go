package components

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/diegoholiveira/jsonlogic"
	"github.com/pkg/errors"
	"github.com/relloyd/geniepipe/helper"
	"github.com/relloyd/geniepipe/logger"
	"github.com/relloyd/geniepipe/stream"
	td "github.com/relloyd/geniepipe/table-definition"
	"github.com/tidwall/gjson"
)

// SpaceFilter selects the spaces whose conversations are fetched.
// A space is selected when it is in the id allow list (if any) and matches the JSON Logic rule (if any).
type SpaceFilter struct {
	log  logger.Logger
	ids  map[string]struct{}
	rule string
}

// NewSpaceFilter validates the comma separated ids and the JSON Logic rule.
// Empty inputs select every space.
func NewSpaceFilter(log logger.Logger, spaceIds string, jsonLogicRule string) (*SpaceFilter, error) {
	f := &SpaceFilter{log: log, rule: strings.TrimSpace(jsonLogicRule)}
	if ids := helper.CsvToStringSliceTrimSpaces(spaceIds); len(ids) > 0 {
		f.ids = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			f.ids[id] = struct{}{}
		}
	}
	if f.rule != "" && !jsonlogic.IsValid(strings.NewReader(f.rule)) {
		return nil, fmt.Errorf("invalid space filter JSON Logic rule: %v", f.rule)
	}
	return f, nil
}

// Select returns the ids of the rows that pass the filter, in row order.
func (f *SpaceFilter) Select(rows []stream.Record) ([]string, error) {
	retval := make([]string, 0, len(rows))
	for _, row := range rows {
		ok, err := f.Match(row)
		if err != nil {
			return nil, err
		}
		if ok {
			retval = append(retval, helper.GetStringFromInterfaceUseUtcTime(f.log, row.GetData(td.ColSpaceId)))
		}
	}
	if len(retval) < len(rows) {
		f.log.Info("space filter selected ", len(retval), " of ", len(rows), " spaces")
	}
	return retval, nil
}

// Match returns true if row passes the filter.
func (f *SpaceFilter) Match(row stream.Record) (bool, error) {
	if f == nil {
		return true, nil
	}
	if f.ids != nil {
		id := helper.GetStringFromInterfaceUseUtcTime(f.log, row.GetData(td.ColSpaceId))
		if _, ok := f.ids[id]; !ok {
			return false, nil
		}
	}
	if f.rule == "" {
		return true, nil
	}
	var result bytes.Buffer
	if err := applyJsonLogic(row, f.rule, &result); err != nil {
		return false, err
	}
	return isTruthy(gjson.Parse(result.String())), nil
}

// isTruthy follows JsonLogic truthiness: false, null, 0, "" and [] are false, everything else is true.
func isTruthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null:
		return false
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	case gjson.JSON:
		if r.IsArray() {
			return len(r.Array()) > 0
		}
		return true
	}
	return false
}

// applyJsonLogic applies rule to the data of row and writes the JSON result.
// The rule must have been validated already.
func applyJsonLogic(row stream.Record, rule string, result *bytes.Buffer) error {
	data, err := json.Marshal(row.GetDataMap())
	if err != nil {
		return errors.Wrap(err, "error marshalling data before applying JSON logic")
	}
	if err = jsonlogic.Apply(strings.NewReader(rule), bytes.NewReader(data), result); err != nil {
		return errors.Wrap(err, "error applying JSON logic")
	}
	return nil
}
