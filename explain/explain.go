// Package explain describes cron expressions in English.
package explain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"lesiw.io/cronsim"
)

// Explain returns an English description of a cron expression, such as
// "At 00:00 on the 15th day of month and on Monday in January".
//
// The expression is validated with cronsim.Parse first, so business day
// tokens need opts.Calendar. A seconds field is not described.
func Explain(text string, opts cronsim.Options) (string, error) {
	e, err := cronsim.Parse(text, opts)
	if err != nil {
		return "", err
	}
	f := e.Fields()
	t := translator{
		minute: newField(cronsim.Minute, f[cronsim.Minute]),
		hour:   newField(cronsim.Hour, f[cronsim.Hour]),
		day:    newField(cronsim.Day, f[cronsim.Day]),
		month:  newField(cronsim.Month, f[cronsim.Month]),
		dow:    newField(cronsim.Weekday, f[cronsim.Weekday]),
		dayAnd: e.DayAnd(),
	}
	s := t.translate()
	return strings.ToUpper(s[:1]) + s[1:], nil
}

var (
	monthNames = []string{"", "JAN", "FEB", "MAR", "APR", "MAY", "JUN",
		"JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}
	monthLabels = []string{"", "January", "February", "March", "April",
		"May", "June", "July", "August", "September", "October",
		"November", "December"}
	dayNames  = []string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}
	dayLabels = []string{"Sunday", "Monday", "Tuesday", "Wednesday",
		"Thursday", "Friday", "Saturday", "Sunday"}
)

// A seq is one comma separated term of a field. start and stop are -1
// when the term spans the whole field. tok holds a sentinel such as L,
// 5L or 1#2.
type seq struct {
	start, stop int
	step        int
	tok         string
}

func (s seq) every() bool { return s.tok == "" && s.start < 0 }
func (s seq) star() bool  { return s.every() && s.step == 1 }

func (s seq) single() bool {
	return s.tok == "" && s.start >= 0 && s.start == s.stop
}

func (s seq) span() bool {
	return s.tok == "" && s.start >= 0 && s.start != s.stop
}

type field struct {
	kind   cronsim.Field
	parsed []seq
}

func newField(kind cronsim.Field, text string) *field {
	f := &field{kind: kind}
	for _, term := range strings.Split(text, ",") {
		for _, s := range f.parse(term) {
			if !slices.Contains(f.parsed, s) {
				f.parsed = append(f.parsed, s)
			}
		}
	}
	return f
}

func (f *field) parse(term string) []seq {
	if term == "*" {
		return []seq{{start: -1, stop: -1, step: 1}}
	}
	base, step, stepped := strings.Cut(term, "/")
	if f.sentinel(base) {
		return []seq{{start: -1, stop: -1, step: 1, tok: base}}
	}
	n := 1
	if stepped {
		n, _ = strconv.Atoi(step)
	}
	start, stop := -1, -1
	switch lo, hi, ok := strings.Cut(base, "-"); {
	case base == "*":
	case ok:
		start, stop = f.int(lo), f.int(hi)
	case stepped:
		start, stop = f.int(base), f.kind.Max()
	default:
		v := f.int(base)
		return []seq{{start: v, stop: v, step: 1}}
	}
	if start <= f.kind.Min() && stop >= f.kind.Max() {
		start, stop = -1, -1
	}
	if !stepped && start >= 0 && start+1 == stop {
		// Two adjacent values read better as a list.
		return []seq{
			{start: start, stop: start, step: 1},
			{start: stop, stop: stop, step: 1},
		}
	}
	return []seq{{start: start, stop: stop, step: n}}
}

func (f *field) sentinel(term string) bool {
	switch f.kind {
	case cronsim.Minute, cronsim.Hour:
		return term == "EB"
	case cronsim.Day:
		return slices.Contains([]string{"L", "LW", "FB", "LB"}, term)
	case cronsim.Weekday:
		return term == "B" || term == "FB" || term == "LB" ||
			strings.HasSuffix(term, "L") || strings.Contains(term, "#")
	}
	return false
}

func (f *field) int(s string) int {
	switch f.kind {
	case cronsim.Month:
		if i := slices.Index(monthNames, s); s != "" && i >= 0 {
			return i
		}
	case cronsim.Weekday:
		if i := slices.Index(dayNames, s); i >= 0 {
			return i
		}
	}
	v, _ := strconv.Atoi(s)
	return v
}

func (f *field) star() bool {
	for _, s := range f.parsed {
		if !s.star() {
			return false
		}
	}
	return true
}

func (f *field) allSingles() bool {
	for _, s := range f.parsed {
		if !s.single() {
			return false
		}
	}
	return true
}

func (f *field) anySingles() bool {
	return slices.ContainsFunc(f.parsed, seq.single)
}

// value returns the only value of the field, or -1.
func (f *field) value() int {
	if len(f.parsed) == 1 && f.parsed[0].single() {
		return f.parsed[0].start
	}
	return -1
}

func (f *field) only(tok string) bool {
	return len(f.parsed) == 1 && f.parsed[0].tok == tok
}

func (f *field) noun() string {
	switch f.kind {
	case cronsim.Day:
		return "day of month"
	case cronsim.Weekday:
		return "day of week"
	}
	return f.kind.String()
}

func (f *field) label(v int) string {
	switch f.kind {
	case cronsim.Month:
		return monthLabels[v]
	case cronsim.Weekday:
		return dayLabels[v]
	}
	return strconv.Itoa(v)
}

func (f *field) every(step int) string {
	if step == 1 {
		return "every " + f.noun()
	}
	return "every " + ordinal(step) + " " + f.noun()
}

func (f *field) single(v int) string {
	switch f.kind {
	case cronsim.Day:
		return "the " + ordinal(v) + " day of month"
	case cronsim.Month, cronsim.Weekday:
		return f.label(v)
	}
	return f.noun() + " " + f.label(v)
}

func (f *field) phrase(tok string) string {
	switch f.kind {
	case cronsim.Minute, cronsim.Hour:
		return "the end of the business day"
	case cronsim.Day:
		return "the " + dayNoun(seq{tok: tok}) + " of the month"
	}
	switch {
	case tok == "B":
		return "business days"
	case tok == "FB":
		return "the first business day of the week"
	case tok == "LB":
		return "the last business day of the week"
	case strings.HasSuffix(tok, "L"):
		day := f.int(strings.TrimSuffix(tok, "L"))
		return "the last " + dayLabels[day] + " of the month"
	}
	day, nth, _ := strings.Cut(tok, "#")
	n, _ := strconv.Atoi(nth)
	return "the " + ordinal(n) + " " + dayLabels[f.int(day)] +
		" of the month"
}

func (f *field) part(s seq) string {
	switch {
	case s.tok != "":
		return f.phrase(s.tok)
	case s.single():
		return f.single(s.start)
	case s.every():
		return f.every(s.step)
	case f.kind == cronsim.Weekday && s.step == 1:
		return f.label(s.start) + " through " + f.label(s.stop)
	}
	return fmt.Sprintf("%s from %s through %s",
		f.every(s.step), f.label(s.start), f.label(s.stop))
}

func (f *field) list() string {
	if len(f.parsed) > 1 {
		switch f.kind {
		case cronsim.Minute, cronsim.Hour:
			if f.allSingles() {
				var labels []string
				for _, s := range f.parsed {
					labels = append(labels, f.label(s.start))
				}
				return f.noun() + "s " + join(labels)
			}
		case cronsim.Day:
			if ords, ok := f.ordinals(); ok {
				return join(ords) + " day of month"
			}
		}
	}
	var parts []string
	for _, s := range f.parsed {
		parts = append(parts, f.part(s))
	}
	return join(parts)
}

// ordinals lists days of month as "the first", "the last" and so on. It
// reports false if some term is not a single day.
func (f *field) ordinals() ([]string, bool) {
	var ords []string
	for _, s := range f.parsed {
		switch {
		case s.single():
			ords = append(ords, "the "+ordinal(s.start))
		case s.tok == "L":
			ords = append(ords, "the last")
		default:
			return nil, false
		}
	}
	return ords, true
}

func (f *field) String() string {
	switch f.kind {
	case cronsim.Minute:
		if f.anySingles() {
			return "at " + f.list()
		}
	case cronsim.Hour:
		return "past " + f.list()
	case cronsim.Day, cronsim.Weekday:
		return "on " + f.list()
	case cronsim.Month:
		return "in " + f.list()
	}
	return f.list()
}

// dayNoun names a single day of month without the month, as in
// "the last weekday of January".
func dayNoun(s seq) string {
	switch s.tok {
	case "L":
		return "last day"
	case "LW":
		return "last weekday"
	case "FB":
		return "first business day"
	case "LB":
		return "last business day"
	}
	return ordinal(s.start) + " day"
}

type translator struct {
	minute, hour, day, month, dow *field

	dayAnd bool
}

func (t translator) translate() string {
	if t.hour.only("EB") {
		if date := t.date(false); date != "" {
			return "at the end of the business day " + date
		}
		return "at the end of every business day"
	}
	time, everyDay := t.time()
	date := t.date(everyDay)
	switch {
	case date != "":
		return time + " " + date
	case everyDay:
		return time + " every day"
	}
	return time
}

// time describes the minute and hour fields. It reports whether the
// description names clock times that need "every day" when no date
// follows.
func (t translator) time() (string, bool) {
	if t.hour.star() {
		switch {
		case t.minute.star():
			return "every minute", false
		case t.minute.value() == 0:
			return "at the start of every hour", false
		}
		return t.minute.String() + " of every hour", false
	}
	if s := t.clocks(); s != "" {
		return s, true
	}
	if s := t.window(); s != "" {
		return s, false
	}
	return t.minute.String() + " " + t.hour.String(), false
}

// clocks lists up to four times of day, as in "at 13:00 and 13:30".
func (t translator) clocks() string {
	if !t.hour.allSingles() || !t.minute.allSingles() {
		return ""
	}
	if len(t.hour.parsed)*len(t.minute.parsed) > 4 {
		return ""
	}
	var hours, minutes []int
	for _, s := range t.hour.parsed {
		hours = append(hours, s.start)
	}
	for _, s := range t.minute.parsed {
		minutes = append(minutes, s.start)
	}
	slices.Sort(hours)
	slices.Sort(minutes)
	var times []string
	for _, h := range hours {
		for _, m := range minutes {
			times = append(times, clock(h, m))
		}
	}
	return "at " + join(times)
}

// window describes a run of minutes between two clock times, as in
// "every minute from 09:00 through 17:59".
func (t translator) window() string {
	if len(t.hour.parsed) != 1 || len(t.minute.parsed) != 1 {
		return ""
	}
	h, m := t.hour.parsed[0], t.minute.parsed[0]
	if h.tok != "" || h.every() || h.step != 1 {
		return ""
	}
	switch {
	case m.every():
		return fmt.Sprintf("%s from %s through %s", t.minute.every(m.step),
			clock(h.start, 0), clock(h.stop, 59))
	case m.span() && m.step == 1 && h.single():
		return fmt.Sprintf("every minute from %s through %s",
			clock(h.start, m.start), clock(h.start, m.stop))
	}
	return ""
}

func (t translator) date(everyDay bool) string {
	if s := t.monthDay(); s != "" {
		return s
	}
	var parts []string
	switch day, dow := !t.day.star(), !t.dow.star(); {
	case day && dow:
		sep := "and"
		if t.dayAnd {
			sep = "if it's"
		}
		parts = append(parts, t.day.String(), sep, t.dow.String())
	case day:
		parts = append(parts, t.day.String())
	case dow:
		parts = append(parts, t.dow.String())
	}
	if !t.month.star() {
		if len(parts) == 0 && everyDay && t.month.allSingles() {
			return "every day in " + t.month.list()
		}
		parts = append(parts, t.month.String())
	}
	return strings.Join(parts, " ")
}

// monthDay describes a single day of month together with the months, as
// in "on January 1" or "on the last day of every month".
func (t translator) monthDay() string {
	if !t.dow.star() || len(t.day.parsed) != 1 {
		return ""
	}
	d := t.day.parsed[0]
	if !d.single() && d.tok == "" {
		return ""
	}
	if m := t.month.value(); d.single() && m > 0 {
		return fmt.Sprintf("on %s %d", monthLabels[m], d.start)
	}
	months := "every month"
	if !t.month.star() {
		months = t.month.list()
	}
	return "on the " + dayNoun(d) + " of " + months
}

func join(l []string) string {
	switch len(l) {
	case 1:
		return l[0]
	case 2:
		return l[0] + " and " + l[1]
	}
	return strings.Join(l[:len(l)-1], ", ") + ", and " + l[len(l)-1]
}

var ordinals = []string{"", "first", "second", "third", "fourth", "fifth",
	"sixth", "seventh", "eighth", "ninth"}

func ordinal(x int) string {
	if x > 0 && x < len(ordinals) {
		return ordinals[x]
	}
	suffix := "th"
	switch x % 10 {
	case 1:
		suffix = "st"
	case 2:
		suffix = "nd"
	case 3:
		suffix = "rd"
	}
	if n := x % 100; n >= 11 && n <= 13 {
		suffix = "th"
	}
	return strconv.Itoa(x) + suffix
}

func clock(h, m int) string {
	return fmt.Sprintf("%02d:%02d", h, m)
}
