package tournament

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sportsviz/etl/internal/ranking"
)

var (
	errRangeFormat = errors.New("expected \"<day> [<month>] - <day> <month>\"")
	errRangeOrder  = errors.New("end date before start date")
)

// ParseDateRange parses tournament date text such as "03 - 08 June" or
// "28 Feb - 02 March" in the given year. A start without a month takes the
// end's month. Ranges that cross a year boundary are not supported and
// report an end-before-start error. Failures are *ranking.DataError values
// with Field "date"; callers fill in Row and Entity.
func ParseDateRange(text string, year int) (start, end ranking.Date, err error) {
	fail := func(cause error) (ranking.Date, ranking.Date, error) {
		return ranking.Date{}, ranking.Date{}, &ranking.DataError{Field: "date", Value: text, Err: cause}
	}

	parts := strings.Split(strings.TrimSpace(text), "-")
	if len(parts) != 2 {
		return fail(errRangeFormat)
	}
	startFields := strings.Fields(parts[0])
	endFields := strings.Fields(parts[1])
	if len(endFields) != 2 || len(startFields) < 1 || len(startFields) > 2 {
		return fail(errRangeFormat)
	}

	endMonth, err := parseMonth(endFields[1])
	if err != nil {
		return fail(err)
	}
	startMonth := endMonth
	if len(startFields) == 2 {
		if startMonth, err = parseMonth(startFields[1]); err != nil {
			return fail(err)
		}
	}

	start, err = dayOf(year, startMonth, startFields[0])
	if err != nil {
		return fail(err)
	}
	end, err = dayOf(year, endMonth, endFields[0])
	if err != nil {
		return fail(err)
	}
	if end.Before(start) {
		return fail(errRangeOrder)
	}
	return start, end, nil
}

// parseMonth accepts full and three-letter English month names in any case.
func parseMonth(s string) (time.Month, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if s == name || (len(s) >= 3 && strings.HasPrefix(name, s)) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", s)
}

func dayOf(year int, month time.Month, day string) (ranking.Date, error) {
	d, err := strconv.Atoi(day)
	if err != nil {
		return ranking.Date{}, fmt.Errorf("invalid day %q", day)
	}
	date := ranking.NewDate(year, month, d)
	// reject 31 June and friends instead of rolling into the next month
	if date.Month() != month || date.Day() != d {
		return ranking.Date{}, fmt.Errorf("day %d out of range for %s %d", d, month, year)
	}
	return date, nil
}
