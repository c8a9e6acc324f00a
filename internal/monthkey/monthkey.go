// Package monthkey handles canonical "YYYY-MM" month keys.
//
// All functions are total: malformed keys never panic, they degrade to a
// neutral value (false, 0, or the input unchanged).
package monthkey

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var keyPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// YearMonth is a parsed month key.
type YearMonth struct {
	Year  int
	Month int
}

// String formats the month as a zero-padded key.
func (ym YearMonth) String() string {
	return FromYearMonth(ym.Year, ym.Month)
}

// Prev returns the previous calendar month.
func (ym YearMonth) Prev() YearMonth {
	if ym.Month <= 1 {
		return YearMonth{Year: ym.Year - 1, Month: 12}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

// Next returns the following calendar month.
func (ym YearMonth) Next() YearMonth {
	if ym.Month >= 12 {
		return YearMonth{Year: ym.Year + 1, Month: 1}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// Sub returns the number of months from other to ym.
func (ym YearMonth) Sub(other YearMonth) int {
	return (ym.Year-other.Year)*12 + (ym.Month - other.Month)
}

// Of returns the UTC calendar month of t.
func Of(t time.Time) YearMonth {
	u := t.UTC()
	return YearMonth{Year: u.Year(), Month: int(u.Month())}
}

// Parse parses a strict YYYY-MM key. The month must be in [1,12].
func Parse(key string) (YearMonth, bool) {
	if !keyPattern.MatchString(key) {
		return YearMonth{}, false
	}
	year, err := strconv.Atoi(key[:4])
	if err != nil {
		return YearMonth{}, false
	}
	month, err := strconv.Atoi(key[5:])
	if err != nil || month < 1 || month > 12 {
		return YearMonth{}, false
	}
	return YearMonth{Year: year, Month: month}, true
}

// IsValid reports whether key parses.
func IsValid(key string) bool {
	_, ok := Parse(key)
	return ok
}

// FromYearMonth builds a key, zero-padding the year to 4 and the month to 2 digits.
func FromYearMonth(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// FromTime returns the UTC month key of t.
func FromTime(t time.Time) string {
	return Of(t).String()
}

// Prev returns the key of the month before key, or key itself if it does not parse.
func Prev(key string) string {
	ym, ok := Parse(key)
	if !ok {
		return key
	}
	return ym.Prev().String()
}

// Next returns the key of the month after key, or key itself if it does not parse.
func Next(key string) string {
	ym, ok := Parse(key)
	if !ok {
		return key
	}
	return ym.Next().String()
}

// Diff returns the months from fromKey to toKey, or 0 if either key is malformed.
func Diff(fromKey, toKey string) int {
	from, ok := Parse(fromKey)
	if !ok {
		return 0
	}
	to, ok := Parse(toKey)
	if !ok {
		return 0
	}
	return to.Sub(from)
}
