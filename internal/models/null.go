package models

import (
	"database/sql"
	"strconv"
	"strings"
)

// NullInt32 is a nullable integer column that also round-trips through CSV,
// where NULL is an empty cell.
type NullInt32 struct {
	sql.NullInt32
}

// Int32 returns a valid NullInt32 holding v.
func Int32(v int32) NullInt32 {
	return NullInt32{sql.NullInt32{Int32: v, Valid: true}}
}

// FromNull wraps n.
func FromNull(n sql.NullInt32) NullInt32 {
	return NullInt32{n}
}

// MarshalCSV is used by gocsv.
func (n NullInt32) MarshalCSV() (string, error) {
	if !n.Valid {
		return "", nil
	}
	return strconv.Itoa(int(n.Int32)), nil
}

// UnmarshalCSV is used by gocsv.
func (n *NullInt32) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		n.NullInt32 = sql.NullInt32{}
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return err
	}
	n.NullInt32 = sql.NullInt32{Int32: int32(v), Valid: true}
	return nil
}

// NullFloat64 is a nullable float column that also round-trips through CSV.
type NullFloat64 struct {
	sql.NullFloat64
}

// Float64 returns a valid NullFloat64 holding v.
func Float64(v float64) NullFloat64 {
	return NullFloat64{sql.NullFloat64{Float64: v, Valid: true}}
}

// MarshalCSV is used by gocsv.
func (n NullFloat64) MarshalCSV() (string, error) {
	if !n.Valid {
		return "", nil
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64), nil
}

// UnmarshalCSV is used by gocsv.
func (n *NullFloat64) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		n.NullFloat64 = sql.NullFloat64{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	n.NullFloat64 = sql.NullFloat64{Float64: v, Valid: true}
	return nil
}
