package facet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Dates are written as [-]YYYY-MM-DDThh:mm:ss[.fff]Z with astronomical
// year numbering, so "-0044-03-15T00:00:00Z" is a year before the common
// era. YYYY-MM-DD and YYYYMMDD are accepted as midnight UTC, and NOW
// stands for the request time. Any of them may be followed by date math:
// "+1DAY", "-2MONTHS", "/YEAR".

var (
	isoDate     = regexp.MustCompile(`^(-?\d{4,})-(\d{2})-(\d{2})(?:T(\d{2}):(\d{2}):(\d{2})(?:\.(\d{1,3}))?Z)?`)
	compactDate = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})`)
)

// parseDate reads a date expression relative to now.
func parseDate(s string, now time.Time) (time.Time, error) {
	var (
		t    time.Time
		rest string
	)
	switch {
	case strings.HasPrefix(s, "NOW"):
		t, rest = now.UTC(), s[len("NOW"):]
	case isoDate.MatchString(s):
		m := isoDate.FindStringSubmatch(s)
		var err error
		if t, err = dateFromParts(m[1], m[2], m[3], m[4], m[5], m[6], m[7]); err != nil {
			return time.Time{}, err
		}
		rest = s[len(m[0]):]
	case compactDate.MatchString(s):
		m := compactDate.FindStringSubmatch(s)
		var err error
		if t, err = dateFromParts(m[1], m[2], m[3], "", "", "", ""); err != nil {
			return time.Time{}, err
		}
		rest = s[len(m[0]):]
	default:
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	if rest == "" {
		return t, nil
	}
	out, err := applyDateMath(t, rest)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date math in %q: %w", s, err)
	}
	return out, nil
}

func dateFromParts(year, month, day, hour, min, sec, frac string) (time.Time, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year %q", year)
	}
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	h, mi, se, ms := atoiOr0(hour), atoiOr0(min), atoiOr0(sec), 0
	if frac != "" {
		ms = atoiOr0((frac + "00")[:3])
	}
	if mo < 1 || mo > 12 || d < 1 || d > daysIn(time.Month(mo), y) || h > 23 || mi > 59 || se > 59 {
		return time.Time{}, fmt.Errorf("date field out of range: %s-%s-%s", year, month, day)
	}
	return time.Date(y, time.Month(mo), d, h, mi, se, ms*int(time.Millisecond), time.UTC), nil
}

func atoiOr0(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// formatDate renders t in the canonical form. Milliseconds are written
// only when non-zero, without trailing zeros.
func formatDate(t time.Time) string {
	t = t.UTC()
	var b strings.Builder
	year := t.Year()
	if year < 0 {
		b.WriteByte('-')
		year = -year
	}
	fmt.Fprintf(&b, "%04d-%02d-%02dT%02d:%02d:%02d",
		year, int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
	if ms := t.Nanosecond() / int(time.Millisecond); ms != 0 {
		b.WriteString(strings.TrimRight(fmt.Sprintf(".%03d", ms), "0"))
	}
	b.WriteByte('Z')
	return b.String()
}

type dateUnit int

const (
	unitYear dateUnit = iota
	unitMonth
	unitDay
	unitHour
	unitMinute
	unitSecond
	unitMilli
)

var dateUnits = map[string]dateUnit{
	"YEAR":        unitYear,
	"MONTH":       unitMonth,
	"DAY":         unitDay,
	"DATE":        unitDay,
	"HOUR":        unitHour,
	"MINUTE":      unitMinute,
	"SECOND":      unitSecond,
	"MILLI":       unitMilli,
	"MILLISECOND": unitMilli,
}

func lookupUnit(s string) (dateUnit, bool) {
	if u, ok := dateUnits[s]; ok {
		return u, true
	}
	u, ok := dateUnits[strings.TrimSuffix(s, "S")]
	return u, ok
}

// applyDateMath applies a sequence of "+N UNIT", "-N UNIT" and "/UNIT"
// operations, left to right.
func applyDateMath(t time.Time, math string) (time.Time, error) {
	for i := 0; i < len(math); {
		op := math[i]
		i++
		switch op {
		case '/':
			unit, n := readUnit(math[i:])
			if n == 0 {
				return time.Time{}, fmt.Errorf("missing unit after '/'")
			}
			u, ok := lookupUnit(unit)
			if !ok {
				return time.Time{}, fmt.Errorf("unknown unit %q", unit)
			}
			t = roundDate(t, u)
			i += n
		case '+', '-':
			j := i
			for j < len(math) && math[j] >= '0' && math[j] <= '9' {
				j++
			}
			if j == i {
				return time.Time{}, fmt.Errorf("missing number after %q", op)
			}
			amount, err := strconv.Atoi(math[i:j])
			if err != nil {
				return time.Time{}, err
			}
			unit, n := readUnit(math[j:])
			u, ok := lookupUnit(unit)
			if n == 0 || !ok {
				return time.Time{}, fmt.Errorf("unknown unit %q", unit)
			}
			if op == '-' {
				amount = -amount
			}
			t = addDate(t, u, amount)
			i = j + n
		default:
			return time.Time{}, fmt.Errorf("unexpected %q", op)
		}
	}
	return t, nil
}

func readUnit(s string) (string, int) {
	n := 0
	for n < len(s) && s[n] >= 'A' && s[n] <= 'Z' {
		n++
	}
	return s[:n], n
}

func roundDate(t time.Time, u dateUnit) time.Time {
	y, mo, d := t.Date()
	switch u {
	case unitYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	case unitMonth:
		return time.Date(y, mo, 1, 0, 0, 0, 0, time.UTC)
	case unitDay:
		return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	case unitHour:
		return t.Truncate(time.Hour)
	case unitMinute:
		return t.Truncate(time.Minute)
	case unitSecond:
		return t.Truncate(time.Second)
	}
	return t.Truncate(time.Millisecond)
}

// addDate moves t by n units. Month and year steps keep the day of
// month, clamped to the length of the target month (Jan 31 + 1 month is
// Feb 28 or 29).
func addDate(t time.Time, u dateUnit, n int) time.Time {
	switch u {
	case unitYear:
		return addMonths(t, 12*n)
	case unitMonth:
		return addMonths(t, n)
	case unitDay:
		return t.AddDate(0, 0, n)
	case unitHour:
		return t.Add(time.Duration(n) * time.Hour)
	case unitMinute:
		return t.Add(time.Duration(n) * time.Minute)
	case unitSecond:
		return t.Add(time.Duration(n) * time.Second)
	}
	return t.Add(time.Duration(n) * time.Millisecond)
}

func addMonths(t time.Time, n int) time.Time {
	y, mo, d := t.Date()
	total := int(mo) - 1 + n
	y += total / 12
	total %= 12
	if total < 0 {
		total += 12
		y--
	}
	month := time.Month(total + 1)
	if dim := daysIn(month, y); d > dim {
		d = dim
	}
	return time.Date(y, month, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
