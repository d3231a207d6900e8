package components

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/logger"
	s "github.com/relloyd/geniepipe/stats"
	"github.com/relloyd/geniepipe/stream"
	td "github.com/relloyd/geniepipe/table-definition"
	"github.com/tidwall/gjson"
)

// MissingKeyPolicy says what happens to a record whose key column is missing or empty.
type MissingKeyPolicy string

const (
	MissingKeyDrop       MissingKeyPolicy = constants.MissingKeyPolicyDrop
	MissingKeyFail       MissingKeyPolicy = constants.MissingKeyPolicyFail
	MissingKeyQuarantine MissingKeyPolicy = constants.MissingKeyPolicyQuarantine
)

// ErrKeyNotFound is wrapped by Flatten when the policy is MissingKeyFail.
var ErrKeyNotFound = errors.New("record key not found")

// ParseMissingKeyPolicy validates s. An empty string gives the default policy of quarantine.
func ParseMissingKeyPolicy(s string) (MissingKeyPolicy, error) {
	switch p := MissingKeyPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return MissingKeyQuarantine, nil
	case MissingKeyDrop, MissingKeyFail, MissingKeyQuarantine:
		return p, nil
	}
	return "", fmt.Errorf("unsupported missing key policy %q: choose one of %v, %v or %v", s, MissingKeyDrop, MissingKeyFail, MissingKeyQuarantine)
}

type FlattenerConfig struct {
	Log               logger.Logger
	Schema            *td.Schema
	MissingKeyPolicy  MissingKeyPolicy
	IngestedAt        time.Time
	StepWatcher       *s.StepWatcher // counts rows flattened
	QuarantineWatcher *s.StepWatcher // counts rows quarantined
}

// Flattener converts raw records into rows of its schema.
type Flattener struct {
	cfg FlattenerConfig
	key td.Column
}

// Flattened holds the output of one call to Flatten.
type Flattened struct {
	Rows       []stream.Record
	Quarantine []stream.Record // rows of the quarantine schema
	Dropped    int             // records whose key was missing, including those quarantined
}

func NewFlattener(cfg FlattenerConfig) (*Flattener, error) {
	if cfg.Schema == nil {
		return nil, errors.New("flattener requires a schema")
	}
	if cfg.IngestedAt.IsZero() {
		return nil, errors.New("flattener requires an ingested at timestamp")
	}
	if err := cfg.Schema.Validate(); err != nil {
		return nil, err
	}
	if cfg.MissingKeyPolicy == "" {
		cfg.MissingKeyPolicy = MissingKeyQuarantine
	}
	key, _ := cfg.Schema.Column(cfg.Schema.Key)
	return &Flattener{cfg: cfg, key: key}, nil
}

// Flatten maps each record to a row using the schema columns.
// parents supplies the values of context columns such as space_id.
func (f *Flattener) Flatten(records []json.RawMessage, parents map[string]string) (*Flattened, error) {
	retval := &Flattened{Rows: make([]stream.Record, 0, len(records))}
	for idx, raw := range records {
		row, err := f.flattenRecord(raw, parents)
		if err != nil {
			return nil, errors.Wrapf(err, "error flattening %v record %v", f.cfg.Schema.Entity, idx)
		}
		if keyIsMissing(row.GetData(f.key.Name)) {
			retval.Dropped++
			reason := fmt.Sprintf("missing key %v", f.key.Name)
			switch f.cfg.MissingKeyPolicy {
			case MissingKeyFail:
				return nil, errors.Wrapf(ErrKeyNotFound, "%v record %v has a %v", f.cfg.Schema.Entity, idx, reason)
			case MissingKeyQuarantine:
				retval.Quarantine = append(retval.Quarantine, f.quarantineRow(raw, parents, reason))
				f.cfg.Log.Warn(fmt.Sprintf("quarantined %v record %v with %v", f.cfg.Schema.Entity, idx, reason))
			default:
				f.cfg.Log.Warn(fmt.Sprintf("dropped %v record %v with %v", f.cfg.Schema.Entity, idx, reason))
			}
			continue
		}
		retval.Rows = append(retval.Rows, row)
	}
	if f.cfg.StepWatcher != nil {
		f.cfg.StepWatcher.AddRows(len(retval.Rows))
	}
	if f.cfg.QuarantineWatcher != nil {
		f.cfg.QuarantineWatcher.AddRows(len(retval.Quarantine))
	}
	return retval, nil
}

func (f *Flattener) flattenRecord(raw json.RawMessage, parents map[string]string) (stream.Record, error) {
	if !gjson.ValidBytes(raw) {
		return stream.NewNilRecord(), errors.New("record is not valid JSON")
	}
	rec := stream.NewRecord()
	for _, col := range f.cfg.Schema.Columns {
		var v interface{}
		var err error
		switch col.Source {
		case td.SourceJson:
			v, err = convertJsonValue(col, gjson.GetBytes(raw, col.JsonPath()))
		case td.SourceContext:
			if p, ok := parents[col.Path]; ok && p != "" {
				v = p
			}
		case td.SourcePayload:
			v = string(raw)
		case td.SourceIngestedAt:
			v = f.cfg.IngestedAt
		case td.SourceEnrichment:
			v = nil // filled in by a later join.
		}
		if err != nil {
			return stream.NewNilRecord(), errors.Wrapf(err, "column %v", col.Name)
		}
		rec.SetData(col.Name, v)
	}
	return rec, nil
}

func (f *Flattener) quarantineRow(raw json.RawMessage, parents map[string]string, reason string) stream.Record {
	rec := stream.NewRecord()
	rec.SetData(td.ColQuarantineId, QuarantineId(f.cfg.Schema.Entity, parents, raw))
	rec.SetData(td.ColEntity, f.cfg.Schema.Entity)
	rec.SetData(td.ColReason, reason)
	rec.SetData(td.ColPayloadJson, string(raw))
	rec.SetData(td.ColIngestedAt, f.cfg.IngestedAt)
	return rec
}

// QuarantineId is the hex SHA-256 of the entity, its parent ids and the raw payload.
// The same record always gets the same id so reruns upsert it instead of adding a copy.
func QuarantineId(entity string, parents map[string]string, raw json.RawMessage) string {
	keys := make([]string, 0, len(parents))
	for k := range parents {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	h := sha256.New()
	h.Write([]byte(entity))
	for _, k := range keys {
		h.Write([]byte("\x00" + k + "=" + parents[k]))
	}
	h.Write([]byte{0})
	h.Write(raw)
	return hex.EncodeToString(h.Sum(nil))
}

func keyIsMissing(v interface{}) bool {
	if v == nil {
		return true
	}
	if str, ok := v.(string); ok {
		return strings.TrimSpace(str) == ""
	}
	return false
}

// convertJsonValue converts r to the Go type of the column's logical type.
// Missing and null values give nil.
func convertJsonValue(col td.Column, r gjson.Result) (interface{}, error) {
	if !r.Exists() || r.Type == gjson.Null {
		return nil, nil
	}
	switch col.Type {
	case td.TypeString, td.TypeText:
		return r.String(), nil
	case td.TypeTimestampMs:
		return EpochMillisToTime(r)
	case td.TypeBoolean:
		switch r.Type {
		case gjson.True, gjson.False:
			return r.Bool(), nil
		case gjson.String:
			b, err := strconv.ParseBool(r.Str)
			if err != nil {
				return nil, fmt.Errorf("unable to convert %q to a boolean", r.Str)
			}
			return b, nil
		}
		return nil, fmt.Errorf("unable to convert %v to a boolean", r.Raw)
	case td.TypeBigint:
		i, err := strconv.ParseInt(strings.TrimSpace(r.String()), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unable to convert %v to a bigint", r.Raw)
		}
		return i, nil
	case td.TypeDouble:
		d, err := strconv.ParseFloat(strings.TrimSpace(r.String()), 64)
		if err != nil {
			return nil, fmt.Errorf("unable to convert %v to a double", r.Raw)
		}
		return d, nil
	}
	return nil, fmt.Errorf("unsupported logical type %q", col.Type)
}

// Epoch milliseconds of 0001-01-01 and 9999-12-31T23:59:59.999, the range every target can store.
const (
	minEpochMillis int64 = -62135596800000
	maxEpochMillis int64 = 253402300799999
)

// EpochMillisToTime converts epoch milliseconds held as a JSON number or numeric string to a UTC time.
// Missing, null, empty and zero values give nil. Values outside years 1 to 9999 are an error.
func EpochMillisToTime(r gjson.Result) (interface{}, error) {
	var ms int64
	switch r.Type {
	case gjson.Null:
		return nil, nil
	case gjson.Number:
		if r.Num != math.Trunc(r.Num) {
			fl, err := roundMillis(r.Num, r.Raw)
			if err != nil {
				return nil, err
			}
			ms = fl
		} else if i, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
			ms = i
		} else {
			fl, err := roundMillis(r.Num, r.Raw)
			if err != nil {
				return nil, err
			}
			ms = fl
		}
	case gjson.String:
		str := strings.TrimSpace(r.Str)
		if str == "" {
			return nil, nil
		}
		var err error
		if ms, err = strconv.ParseInt(str, 10, 64); err != nil {
			fl, ferr := strconv.ParseFloat(str, 64)
			if ferr != nil {
				return nil, fmt.Errorf("unable to convert %q to epoch milliseconds", r.Str)
			}
			if ms, err = roundMillis(fl, r.Str); err != nil {
				return nil, err
			}
		}
	default:
		if !r.Exists() {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to convert %v to epoch milliseconds", r.Raw)
	}
	if ms == 0 {
		return nil, nil
	}
	if ms < minEpochMillis || ms > maxEpochMillis {
		return nil, fmt.Errorf("epoch milliseconds %v are out of range", ms)
	}
	return time.UnixMilli(ms).UTC(), nil
}

func roundMillis(f float64, raw string) (int64, error) {
	f = math.Round(f)
	if math.IsNaN(f) || f < float64(minEpochMillis) || f > float64(maxEpochMillis) {
		return 0, fmt.Errorf("epoch milliseconds %v are out of range", raw)
	}
	return int64(f), nil
}
