package helper

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	om "github.com/cevaris/ordered_map"
	"github.com/relloyd/geniepipe/constants"
	"github.com/relloyd/geniepipe/logger"
)

// StringSliceToOrderedMap adds each value in s to an ordered map with key and value set to the value in s.
func StringSliceToOrderedMap(s []string) *om.OrderedMap {
	retval := om.NewOrderedMap()
	for _, v := range s {
		retval.Set(v, v)
	}
	return retval
}

// OrderedMapKeysToStringSlice returns the keys of o in insertion order.
func OrderedMapKeysToStringSlice(o *om.OrderedMap) []string {
	retval := make([]string, 0, o.Len())
	iter := o.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		retval = append(retval, kv.Key.(string))
	}
	return retval
}

// CsvToStringSliceTrimSpaces converts a string of the form 'f1, f2,f3' into a slice of string values.
// Empty tokens are dropped.
func CsvToStringSliceTrimSpaces(s string) []string {
	retval := make([]string, 0)
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			retval = append(retval, t)
		}
	}
	return retval
}

// GetStringFromInterfaceUseUtcTime will convert interface{} value to a string.
// Times will be converted to UTC.
func GetStringFromInterfaceUseUtcTime(log logger.Logger, input interface{}) (retval string) {
	return GetStringFromInterface(log, input, true)
}

// GetStringFromInterface will convert interface{} value to a string.
// Optionally return Times in UTC.
func GetStringFromInterface(log logger.Logger, input interface{}, useUTC bool) (retval string) {
	switch v := input.(type) {
	case int, int16, int32, int64, int8, uint8:
		retval = fmt.Sprintf("%d", v)
	case string:
		retval = v
	case *string:
		if v != nil {
			retval = *v
		}
	case float32:
		retval = strconv.FormatFloat(float64(v), 'f', -1, 32) // use 'f' to convert float to string without an exponent i.e. preserve all decimal points.
	case float64:
		retval = strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		if useUTC {
			retval = v.UTC().Format(time.RFC3339Nano)
		} else {
			retval = v.Format(time.RFC3339Nano)
		}
	case []uint8:
		retval = string(v)
	case bool:
		retval = strconv.FormatBool(v)
	case nil:
		retval = ""
	default:
		log.Panic("unhandled type while fetching string from interface: type = ", reflect.TypeOf(input), "; value = ", input)
	}
	return
}

// GetTrueFalseStringAsBool trims spaces from s and checks if it can regexp (case insensitive) match "true".
func GetTrueFalseStringAsBool(s string) bool {
	re := regexp.MustCompile("(?i)^true$")
	return re.MatchString(strings.TrimSpace(s))
}

// SplitRight splits s at the last occurrence of c.
// If c is not found, return s, "".
func SplitRight(s string, c string) (string, string) {
	i := strings.LastIndex(s, c)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+len(c):]
}

// Maybe s is of the form t c u.
// If so, return  t, u.
// If not, return s, "".
func Split(s string, c string) (string, string) {
	i := strings.Index(s, c)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+len(c):]
}

// StringsToCsv joins the strings by ","
func StringsToCsv(s []string) string {
	return strings.Join(s, ",")
}

// GenerateStringOfColsEqualsCols returns "tgt.col1 = src.col1, tgt.col2 = src.col2" using colList
// where the comma can be whatever separator you pass in.
// Supply an empty tgtAlias to leave the left hand side unqualified.
func GenerateStringOfColsEqualsCols(colList []string, tgtAlias string, srcAlias string, separator string) string {
	return strings.Join(GenerateSliceOfColsEqualCols(colList, tgtAlias, srcAlias), separator)
}

// GenerateSliceOfColsEqualCols is the slice form of GenerateStringOfColsEqualsCols.
func GenerateSliceOfColsEqualCols(colList []string, tgtAlias string, srcAlias string) []string {
	retval := make([]string, len(colList))
	for idx, col := range colList {
		if tgtAlias == "" {
			retval[idx] = fmt.Sprintf("%s = %s.%s", col, srcAlias, col)
		} else {
			retval[idx] = fmt.Sprintf("%s.%s = %s.%s", tgtAlias, col, srcAlias, col)
		}
	}
	return retval
}

// PrefixStrings returns a copy of s with prefix added to each element.
func PrefixStrings(s []string, prefix string) []string {
	retval := make([]string, len(s))
	for i, v := range s {
		retval[i] = prefix + v
	}
	return retval
}

// TimeStampForFileName returns t formatted for use in file and object names.
func TimeStampForFileName(t time.Time) string {
	return t.UTC().Format(constants.TimeFormatYearSeconds)
}
