// Package cleaning implements the investment dataset cleaning
// pipeline: header normalization, value coercion, missing-value
// handling and feature derivation, interpreted over the declarative
// column table in pkg/contracts/domain.
package cleaning

import (
	"strconv"
	"time"

	"vcpulse/pkg/contracts/domain"
)

// Value is one cell after coercion. A missing cell keeps its declared
// kind so downstream stages can substitute a correctly typed default.
type Value struct {
	Kind    domain.Kind
	Missing bool
	Str     string
	Float   float64
	Int     int64
	Date    time.Time
}

// MissingValue returns the reserved missing marker for a column kind.
func MissingValue(kind domain.Kind) Value {
	return Value{Kind: kind, Missing: true}
}

// StringValue wraps a scalar string cell.
func StringValue(s string) Value {
	return Value{Kind: domain.KindString, Str: s}
}

// FloatValue wraps a numeric cell.
func FloatValue(f float64) Value {
	return Value{Kind: domain.KindFloat, Float: f}
}

// IntValue wraps an integer cell.
func IntValue(i int64) Value {
	return Value{Kind: domain.KindInt, Int: i}
}

// DateValue wraps a parsed date cell.
func DateValue(t time.Time) Value {
	return Value{Kind: domain.KindDate, Date: t}
}

// Token serializes the value for the artifact. The missing sentinel
// serializes as the empty string; numerics carry no grouping
// separators; dates serialize as ISO dates (date columns are normally
// replaced by derived year columns before export).
func (v Value) Token() string {
	if v.Missing {
		return domain.MissingToken
	}
	switch v.Kind {
	case domain.KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case domain.KindInt:
		return strconv.FormatInt(v.Int, 10)
	case domain.KindDate:
		return v.Date.Format("2006-01-02")
	default:
		return v.Str
	}
}

// Table is the whole-table working set the pipeline stages transform
// in place. Columns holds canonical names in stable order; every row
// has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]Value
}

// ColumnIndex returns the position of a canonical column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}
