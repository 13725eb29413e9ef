package gql

import (
	"math"
	"strconv"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// Date is a timestamp exchanged as integer epoch milliseconds.
//
// Input accepts an integer (literal or JSON number) as epoch milliseconds, or
// a string holding an RFC 3339 timestamp, a YYYY-MM-DD date taken as UTC
// midnight, or a decimal epoch-millisecond count. Parsed values are in UTC.
var Date = graphql.NewScalar(graphql.ScalarConfig{
	Name:         "Date",
	Description:  "Timestamp serialized as integer milliseconds since the Unix epoch.",
	Serialize:    serializeDate,
	ParseValue:   parseDateValue,
	ParseLiteral: parseDateLiteral,
})

func serializeDate(value interface{}) interface{} {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return v.UnixMilli()
	case *time.Time:
		if v == nil || v.IsZero() {
			return nil
		}
		return v.UnixMilli()
	}
	return nil
}

func parseDateValue(value interface{}) interface{} {
	switch v := value.(type) {
	case time.Time:
		return v.UTC()
	case int:
		return fromMillis(int64(v))
	case int32:
		return fromMillis(int64(v))
	case int64:
		return fromMillis(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return nil
		}
		return fromMillis(int64(v))
	case string:
		if t, ok := parseDateString(v); ok {
			return t
		}
	}
	return nil
}

func parseDateLiteral(valueAST ast.Value) interface{} {
	switch v := valueAST.(type) {
	case *ast.IntValue:
		ms, err := strconv.ParseInt(v.Value, 10, 64)
		if err != nil {
			return nil
		}
		return fromMillis(ms)
	case *ast.StringValue:
		if t, ok := parseDateString(v.Value); ok {
			return t
		}
	}
	return nil
}

func parseDateString(s string) (time.Time, bool) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromMillis(ms), true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
