package cronsim

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// A Field is one position of a cron expression.
type Field int

const (
	Minute Field = iota
	Hour
	Day
	Month
	Weekday
	Second

	wholeExpr Field = -1
)

type domain struct {
	name     string
	min, max int
	names    []string // symbolic names, index is the value
}

var domains = [...]domain{
	Minute: {"minute", 0, 59, nil},
	Hour:   {"hour", 0, 23, nil},
	Day:    {"day-of-month", 1, 31, nil},
	Month: {"month", 1, 12, []string{
		"", "JAN", "FEB", "MAR", "APR", "MAY", "JUN",
		"JUL", "AUG", "SEP", "OCT", "NOV", "DEC",
	}},
	Weekday: {"day-of-week", 0, 7, []string{
		"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT",
	}},
	Second: {"second", 0, 59, nil},
}

func (f Field) String() string {
	if f < Minute || f > Second {
		return "expression"
	}
	return domains[f].name
}

// Min returns the smallest numeric value the field accepts.
func (f Field) Min() int { return domains[f].min }

// Max returns the largest numeric value the field accepts.
func (f Field) Max() int { return domains[f].max }

// A Kind tells what an Item selects.
type Kind uint8

const (
	Number               Kind = iota // Value
	Nth                              // the N-th Value weekday of the month
	LastOf                           // the last Value weekday of the month
	LastDay                          // L
	LastWeekday                      // LW
	FirstBusinessDay                 // FB, day-of-month
	LastBusinessDay                  // LB, day-of-month
	BusinessDay                      // B, day-of-week
	FirstWeekBusinessDay             // FB, day-of-week
	LastWeekBusinessDay              // LB, day-of-week
	EndOfBusinessDay                 // EB, hour and minute
)

// An Item is a single member of a Set.
type Item struct {
	Kind  Kind
	Value int
	N     int
}

// A Set holds the values a field accepts.
type Set map[Item]struct{}

func num(v int) Item { return Item{Kind: Number, Value: v} }

func sentinel(k Kind) Item { return Item{Kind: k} }

// Has reports whether the number v is in the set.
func (s Set) Has(v int) bool {
	_, ok := s[num(v)]
	return ok
}

func (s Set) hasItem(it Item) bool {
	_, ok := s[it]
	return ok
}

func (s Set) add(items ...Item) {
	for _, it := range items {
		s[it] = struct{}{}
	}
}

// Items returns the members of s sorted by kind, value and occurrence.
func (s Set) Items() []Item {
	items := make([]Item, 0, len(s))
	for it := range s {
		items = append(items, it)
	}
	slices.SortFunc(items, func(a, b Item) int {
		return cmp.Or(
			cmp.Compare(a.Kind, b.Kind),
			cmp.Compare(a.Value, b.Value),
			cmp.Compare(a.N, b.N),
		)
	})
	return items
}

// Values returns the plain numbers in s in ascending order.
func (s Set) Values() []int {
	var vals []int
	for it := range s {
		if it.Kind == Number {
			vals = append(vals, it.Value)
		}
	}
	slices.Sort(vals)
	return vals
}

func (s Set) numeric() bool {
	for it := range s {
		if it.Kind != Number {
			return false
		}
	}
	return true
}

func (s Set) only(k Kind) bool {
	return len(s) == 1 && s.hasItem(sentinel(k))
}

// ParseField parses the text of one field. Business day tokens are only
// accepted when cal is not nil. The text is matched case-insensitively.
func ParseField(f Field, text string, cal BusinessDays) (Set, error) {
	p := fieldParser{f: f, cal: cal}
	s := make(Set)
	for _, term := range strings.Split(strings.ToUpper(text), ",") {
		items, err := p.term(term)
		if err != nil {
			return nil, err
		}
		s.add(items...)
	}
	return s, nil
}

type fieldParser struct {
	f   Field
	cal BusinessDays
}

func (p fieldParser) fail(err error, text string) error {
	return fail(p.f, err, text)
}

func (p fieldParser) term(s string) ([]Item, error) {
	if s == "*" {
		return p.span(p.f.Min(), p.f.Max(), 1), nil
	}
	if it, ok := p.business(s); ok {
		if p.cal == nil {
			return nil, p.fail(ErrCalendar, s)
		}
		return []Item{it}, nil
	}
	if p.f == Weekday && strings.Contains(s, "L") {
		digits := strings.TrimSuffix(s, "L")
		if !isDigits(digits) {
			return nil, p.fail(ErrValue, s)
		}
		v, err := p.value(digits)
		if err != nil {
			return nil, err
		}
		return []Item{{Kind: LastOf, Value: v}}, nil
	}
	if p.f == Weekday && strings.Contains(s, "#") {
		day, nth, _ := strings.Cut(s, "#")
		n, err := p.number(nth)
		if err != nil {
			return nil, err
		}
		if n < 1 || n > 5 {
			return nil, p.fail(ErrNth, s)
		}
		v, err := p.value(day)
		if err != nil {
			return nil, err
		}
		return []Item{{Kind: Nth, Value: v, N: n}}, nil
	}
	if term, step, ok := strings.Cut(s, "/"); ok {
		return p.step(term, step)
	}
	if lo, hi, ok := strings.Cut(s, "-"); ok {
		start, err := p.value(lo)
		if err != nil {
			return nil, err
		}
		end, err := p.value(hi)
		if err != nil {
			return nil, err
		}
		if end < start {
			return nil, p.fail(ErrRange, s)
		}
		return p.span(start, end, 1), nil
	}
	if p.f == Day && s == "LW" {
		return []Item{sentinel(LastWeekday)}, nil
	}
	if p.f == Day && s == "L" {
		return []Item{sentinel(LastDay)}, nil
	}
	v, err := p.value(s)
	if err != nil {
		return nil, err
	}
	return []Item{num(v)}, nil
}

func (p fieldParser) step(term, step string) ([]Item, error) {
	n, err := p.number(step)
	if err != nil || n == 0 {
		return nil, p.fail(ErrStep, term+"/"+step)
	}
	items, err := p.term(term)
	if err != nil {
		return nil, err
	}
	if len(items) == 1 {
		switch it := items[0]; it.Kind {
		case LastDay, LastWeekday:
			return items, nil
		case Number:
			return p.span(it.Value, p.f.Max(), n), nil
		}
	}
	var vals []int
	for _, it := range items {
		if it.Kind != Number {
			return nil, p.fail(ErrValue, term)
		}
		vals = append(vals, it.Value)
	}
	slices.Sort(vals)
	var out []Item
	for i := 0; i < len(vals); i += n {
		out = append(out, num(vals[i]))
	}
	return out, nil
}

func (p fieldParser) business(s string) (Item, bool) {
	switch {
	case s == "B" && p.f == Weekday:
		return sentinel(BusinessDay), true
	case s == "FB" && p.f == Day:
		return sentinel(FirstBusinessDay), true
	case s == "LB" && p.f == Day:
		return sentinel(LastBusinessDay), true
	case s == "FB" && p.f == Weekday:
		return sentinel(FirstWeekBusinessDay), true
	case s == "LB" && p.f == Weekday:
		return sentinel(LastWeekBusinessDay), true
	case s == "EB" && (p.f == Hour || p.f == Minute):
		return sentinel(EndOfBusinessDay), true
	}
	return Item{}, false
}

func (p fieldParser) span(start, end, step int) []Item {
	items := make([]Item, 0, (end-start)/step+1)
	for v := start; v <= end; v += step {
		items = append(items, num(v))
	}
	return items
}

// value parses a number or symbolic name and checks it against the domain.
func (p fieldParser) value(s string) (int, error) {
	if i := slices.Index(domains[p.f].names, s); s != "" && i >= 0 {
		return i, nil
	}
	v, err := p.number(s)
	if err != nil {
		return 0, err
	}
	if v < p.f.Min() || v > p.f.Max() {
		return 0, p.fail(ErrValue, s)
	}
	return v, nil
}

func (p fieldParser) number(s string) (int, error) {
	if !isDigits(s) {
		return 0, p.fail(ErrValue, s)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, p.fail(ErrValue, s)
	}
	return v, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
