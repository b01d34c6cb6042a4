// Package schedule parses five-field schedule expressions and decides
// whether they fire at a given civil time.
//
// An expression has the fields minute, hour, day-of-month, month and
// day-of-week. Each field is a wildcard ("*"), a value ("5"), a closed range
// ("1-5"), a comma separated set ("0,15,30") or, for month and day-of-week
// only, a three letter name ("JAN", "MON"). Names are turned into numbers when
// the expression is parsed. Days of the week are numbered from Sunday = 0.
//
// Unlike classic cron, every field must match: "0 9 1 * MON" fires only on a
// Monday that is also the first of the month.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrFieldCount         = errors.New("schedule must have exactly five fields")
	ErrInvalidRange       = errors.New("invalid range")
	ErrInvalidAlternative = errors.New("named value not allowed in this field")
	ErrInvalidPart        = errors.New("invalid field value")
	ErrOutOfBounds        = errors.New("value out of bounds")
)

type kind int

const (
	wildcard kind = iota
	single
	span
	set
	alternative
)

// part is one parsed field, possibly nested inside a set.
type part struct {
	kind   kind
	value  int    // single
	lo, hi int    // span
	items  []part // set
	name   string // alternative
}

func (p part) matches(v int) bool {
	switch p.kind {
	case wildcard:
		return true
	case single:
		return v == p.value
	case span:
		return v >= p.lo && v <= p.hi
	case set:
		for _, item := range p.items {
			if item.matches(v) {
				return true
			}
		}
		return false
	default:
		// Names are resolved during validation; one left over never matches.
		return false
	}
}

func (p part) String() string {
	switch p.kind {
	case wildcard:
		return "*"
	case single:
		return strconv.Itoa(p.value)
	case span:
		return fmt.Sprintf("%d-%d", p.lo, p.hi)
	case set:
		items := make([]string, len(p.items))
		for i, item := range p.items {
			items[i] = item.String()
		}
		return strings.Join(items, ",")
	default:
		return p.name
	}
}

type fieldSpec struct {
	name     string
	min, max int
	names    map[string]int
}

var (
	monthNames = map[string]int{
		"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
		"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
	}
	weekdayNames = map[string]int{
		"SUN": 0, "MON": 1, "TUE": 2, "WED": 3, "THU": 4, "FRI": 5, "SAT": 6,
	}

	fields = [5]fieldSpec{
		{name: "minute", min: 0, max: 59},
		{name: "hour", min: 0, max: 23},
		{name: "day-of-month", min: 1, max: 31},
		{name: "month", min: 1, max: 12, names: monthNames},
		{name: "day-of-week", min: 0, max: 6, names: weekdayNames},
	}
)

// Expression is a parsed, validated schedule. It is immutable.
type Expression struct {
	source     string
	minute     part
	hour       part
	dayOfMonth part
	month      part
	dayOfWeek  part
}

// Parse parses and validates a five-field expression such as "30 21 * * *".
func Parse(expr string) (*Expression, error) {
	tokens := strings.Fields(expr)
	if len(tokens) != len(fields) {
		return nil, fmt.Errorf("%w: %q has %d", ErrFieldCount, expr, len(tokens))
	}

	var parts [5]part
	for i, token := range tokens {
		p, err := parsePart(token)
		if err != nil {
			return nil, fmt.Errorf("%s field %q: %w", fields[i].name, token, err)
		}
		parts[i] = p
	}

	out := &Expression{
		source:     expr,
		minute:     parts[0],
		hour:       parts[1],
		dayOfMonth: parts[2],
		month:      parts[3],
		dayOfWeek:  parts[4],
	}
	if err := out.validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// MustParse is like Parse but panics on error. Use it for literals only.
func MustParse(expr string) *Expression {
	e, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return e
}

func parsePart(token string) (part, error) {
	switch {
	case strings.Contains(token, ","):
		var items []part
		for _, item := range strings.Split(token, ",") {
			p, err := parsePart(item)
			if err != nil {
				return part{}, err
			}
			if p.kind == wildcard {
				return part{}, fmt.Errorf("%w: wildcard inside a set", ErrInvalidPart)
			}
			items = append(items, p)
		}
		return part{kind: set, items: items}, nil
	case strings.Contains(token, "-"):
		bounds := strings.Split(token, "-")
		if len(bounds) != 2 {
			return part{}, fmt.Errorf("%w: found %d values instead of 2", ErrInvalidRange, len(bounds))
		}
		lo, errLo := parseNumber(bounds[0])
		hi, errHi := parseNumber(bounds[1])
		if errLo != nil || errHi != nil {
			return part{}, fmt.Errorf("%w: bounds must be numbers", ErrInvalidRange)
		}
		if lo > hi {
			return part{}, fmt.Errorf("%w: %d is greater than %d", ErrInvalidRange, lo, hi)
		}
		return part{kind: span, lo: lo, hi: hi}, nil
	case token == "*":
		return part{kind: wildcard}, nil
	case isNumeric(token):
		v, err := parseNumber(token)
		if err != nil {
			return part{}, err
		}
		return part{kind: single, value: v}, nil
	case isAlpha(token):
		return part{kind: alternative, name: token}, nil
	default:
		return part{}, ErrInvalidPart
	}
}

func parseNumber(s string) (int, error) {
	if !isNumeric(s) {
		return 0, ErrInvalidPart
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPart, err)
	}
	return v, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// validate resolves month and weekday names to numbers and checks bounds.
// Month and day-of-week are normalized independently of each other.
func (e *Expression) validate() error {
	targets := [5]*part{&e.minute, &e.hour, &e.dayOfMonth, &e.month, &e.dayOfWeek}
	for i, p := range targets {
		spec := fields[i]
		resolved, err := resolve(*p, spec)
		if err != nil {
			return fmt.Errorf("%s field %q: %w", spec.name, p.String(), err)
		}
		*p = resolved
	}
	return nil
}

func resolve(p part, spec fieldSpec) (part, error) {
	switch p.kind {
	case alternative:
		if spec.names == nil {
			return part{}, ErrInvalidAlternative
		}
		v, ok := spec.names[strings.ToUpper(p.name)]
		if !ok {
			return part{}, fmt.Errorf("%w: unknown name %q", ErrInvalidPart, p.name)
		}
		return part{kind: single, value: v}, nil
	case single:
		if p.value < spec.min || p.value > spec.max {
			return part{}, fmt.Errorf("%w: %d not in %d-%d", ErrOutOfBounds, p.value, spec.min, spec.max)
		}
	case span:
		if p.lo < spec.min || p.hi > spec.max {
			return part{}, fmt.Errorf("%w: %d-%d not in %d-%d", ErrOutOfBounds, p.lo, p.hi, spec.min, spec.max)
		}
	case set:
		items := make([]part, len(p.items))
		for i, item := range p.items {
			r, err := resolve(item, spec)
			if err != nil {
				return part{}, err
			}
			items[i] = r
		}
		return part{kind: set, items: items}, nil
	}
	return p, nil
}

// Matches reports whether t falls on the expression. All five fields must
// match. t is evaluated in its own location; convert it to the schedule's
// time zone first.
func (e *Expression) Matches(t time.Time) bool {
	return e.minute.matches(t.Minute()) &&
		e.hour.matches(t.Hour()) &&
		e.dayOfMonth.matches(t.Day()) &&
		e.month.matches(int(t.Month())) &&
		e.dayOfWeek.matches(int(t.Weekday()))
}

// String returns the expression as it was written.
func (e *Expression) String() string {
	return e.source
}
