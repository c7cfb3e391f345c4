package ranking

import (
	"database/sql"
	"fmt"
	"strings"
)

// Mode selects whether a snapshot dated exactly on the query date is eligible.
type Mode int

const (
	// OnOrBefore accepts snapshots with effective_date <= query_date.
	OnOrBefore Mode = iota
	// StrictlyBefore accepts snapshots with effective_date < query_date.
	StrictlyBefore
)

// ParseMode accepts "on_or_before" and "strictly_before" (case-insensitive, '-' or '_').
func ParseMode(s string) (Mode, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "", "on_or_before":
		return OnOrBefore, nil
	case "strictly_before":
		return StrictlyBefore, nil
	default:
		return OnOrBefore, fmt.Errorf("unknown resolve mode: %s", s)
	}
}

func (m Mode) String() string {
	switch m {
	case OnOrBefore:
		return "on_or_before"
	case StrictlyBefore:
		return "strictly_before"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler (envconfig, gocsv).
func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// DuplicatePolicy decides which snapshot survives when an entity has more
// than one snapshot on the same effective date.
type DuplicatePolicy int

const (
	// KeepLast keeps the last row in input order.
	KeepLast DuplicatePolicy = iota
	// KeepBest keeps the numerically smallest rank; later rows win ties.
	KeepBest
	// KeepWorst keeps the numerically largest rank; later rows win ties.
	KeepWorst
)

// ParseDuplicatePolicy accepts "keep_last", "keep_best" and "keep_worst".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "", "keep_last", "last":
		return KeepLast, nil
	case "keep_best", "best", "min":
		return KeepBest, nil
	case "keep_worst", "worst", "max":
		return KeepWorst, nil
	default:
		return KeepLast, fmt.Errorf("unknown duplicate policy: %s", s)
	}
}

func (p DuplicatePolicy) String() string {
	switch p {
	case KeepLast:
		return "keep_last"
	case KeepBest:
		return "keep_best"
	case KeepWorst:
		return "keep_worst"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *DuplicatePolicy) UnmarshalText(b []byte) error {
	parsed, err := ParseDuplicatePolicy(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Snapshot is one recorded rank of one entity, effective from EffectiveDate.
// A snapshot without a valid Rank carries no information and is dropped on load.
type Snapshot struct {
	Entity        EntityID      `json:"entity_id"`
	EffectiveDate Date          `json:"effective_date"`
	Rank          sql.NullInt32 `json:"rank"`
}

// Query asks for the rank of Entity as of Date.
type Query struct {
	Entity EntityID
	Date   Date
	Mode   Mode
}

// Resolved is the answer to a Query. A Resolved with an invalid Rank is an
// unresolved lookup: the entity had no eligible snapshot.
type Resolved struct {
	Entity      EntityID
	QueryDate   Date
	Rank        sql.NullInt32
	MatchedDate Date
}

// Resolved reports whether a snapshot was found.
func (r Resolved) Resolved() bool { return r.Rank.Valid }

// Value returns the rank and whether it was resolved.
func (r Resolved) Value() (int, bool) {
	return int(r.Rank.Int32), r.Rank.Valid
}

// DuplicateNotice is reported once per entity whose same-day snapshots were
// collapsed during Load.
type DuplicateNotice struct {
	Entity    EntityID
	Dates     []Date
	Collapsed int
	Policy    DuplicatePolicy
}

// LoadReport summarizes a Load call.
type LoadReport struct {
	Rows       int
	Kept       int
	NullRanks  int
	Entities   int
	Duplicates []DuplicateNotice
}
