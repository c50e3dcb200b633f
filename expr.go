package cronsim

import (
	"slices"
	"strings"
	"time"
)

// daysIn is the longest each month can be.
var daysIn = [...]int{0, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Options configure parsing and iteration.
// The zero value walks standard five field expressions forward.
type Options struct {
	// Reverse walks toward the past.
	Reverse bool
	// Seconds accepts an optional sixth field selecting seconds.
	Seconds bool
	// Calendar enables the B, FB, LB and EB tokens.
	Calendar BusinessDays
}

// An Expression is a parsed cron expression. It is immutable and may be
// shared between goroutines.
type Expression struct {
	fields  []string
	sets    [6]Set
	dayAnd  bool
	seconds bool
	cal     BusinessDays
}

// Parse parses a cron expression of the form
// "minute hour day-of-month month day-of-week [second]".
func Parse(text string, opts Options) (*Expression, error) {
	parts := strings.Fields(strings.ToUpper(text))
	if opts.Seconds && len(parts) == 5 {
		parts = append(parts, "0")
	}
	want := 5
	if opts.Seconds {
		want = 6
	}
	if len(parts) != want {
		return nil, fail(wholeExpr, ErrFieldCount, text)
	}
	e := &Expression{
		fields:  parts,
		seconds: opts.Seconds,
		cal:     opts.Calendar,
		// Debian cron: a leading star on either day field means both
		// must match, otherwise either one is enough.
		dayAnd: strings.HasPrefix(parts[Day], "*") ||
			strings.HasPrefix(parts[Weekday], "*"),
	}
	for i, part := range parts {
		s, err := ParseField(Field(i), part, opts.Calendar)
		if err != nil {
			return nil, err
		}
		e.sets[i] = s
	}
	if !e.seconds {
		e.sets[Second] = Set{num(0): {}}
	}
	if err := e.checkEndOfDay(); err != nil {
		return nil, err
	}
	if err := e.checkDays(); err != nil {
		return nil, err
	}
	return e, nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string, opts Options) *Expression {
	e, err := Parse(text, opts)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Expression) checkEndOfDay() error {
	hourEB := e.sets[Hour].hasItem(sentinel(EndOfBusinessDay))
	minuteEB := e.sets[Minute].hasItem(sentinel(EndOfBusinessDay))
	if hourEB && len(e.sets[Hour]) > 1 {
		return fail(Hour, ErrEndOfDay, e.fields[Hour])
	}
	switch {
	case hourEB && e.fields[Minute] == "*":
		e.sets[Minute] = Set{sentinel(EndOfBusinessDay): {}}
	case hourEB && !e.sets[Minute].only(EndOfBusinessDay):
		return fail(Minute, ErrEndOfDay, e.fields[Minute])
	case minuteEB && !hourEB:
		return fail(Minute, ErrEndOfDay, e.fields[Minute])
	}
	return nil
}

func (e *Expression) checkDays() error {
	days := e.sets[Day]
	if !days.numeric() {
		return nil
	}
	first := days.Values()[0]
	longest := 0
	for _, m := range e.sets[Month].Values() {
		longest = max(longest, daysIn[m])
	}
	if first > longest {
		return fail(Day, ErrUnreachable, e.fields[Day])
	}
	return nil
}

// Fields returns the upper-cased text of each field. In seconds mode a
// missing sixth field is reported as "0".
func (e *Expression) Fields() []string { return slices.Clone(e.fields) }

func (e *Expression) Minutes() Set  { return e.sets[Minute] }
func (e *Expression) Hours() Set    { return e.sets[Hour] }
func (e *Expression) Days() Set     { return e.sets[Day] }
func (e *Expression) Months() Set   { return e.sets[Month] }
func (e *Expression) Weekdays() Set { return e.sets[Weekday] }
func (e *Expression) Seconds() Set  { return e.sets[Second] }

// DayAnd reports whether day-of-month and day-of-week must both match.
func (e *Expression) DayAnd() bool { return e.dayAnd }

// Iter starts walking e from t in the given direction.
func (e *Expression) Iter(t time.Time, dir Direction) *Iterator {
	return newIterator(e, t, dir)
}

// Next returns the first fire time after t truncated to the minute, or to
// the second when e has a seconds field.
func (e *Expression) Next(t time.Time) (time.Time, bool) {
	return e.Iter(t, Forward).Next()
}

// Prev returns the last fire time before t truncated to the minute, or to
// the second when e has a seconds field. A fire time earlier in the same
// minute as t is therefore not returned.
func (e *Expression) Prev(t time.Time) (time.Time, bool) {
	return e.Iter(t, Reverse).Next()
}

// New parses text and starts walking it from t.
func New(text string, t time.Time, opts Options) (*Iterator, error) {
	e, err := Parse(text, opts)
	if err != nil {
		return nil, err
	}
	dir := Forward
	if opts.Reverse {
		dir = Reverse
	}
	return e.Iter(t, dir), nil
}
