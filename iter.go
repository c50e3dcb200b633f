package cronsim

import (
	"iter"
	"strings"
	"time"
)

// A Direction selects which way an Iterator walks.
type Direction int

const (
	Forward Direction = 1
	Reverse Direction = -1
)

// horizon is how many years Next searches before giving up.
const horizon = 50

// An Iterator yields the fire times of an Expression one at a time.
// It is not safe for concurrent use.
type Iterator struct {
	e    *Expression
	dir  Direction
	unit time.Duration

	// dt is the cursor. When fixup is set it holds the wall clock in UTC
	// and fixup is the zone the results are reported in.
	dt    time.Time
	fixup *time.Location

	last time.Time
	done bool
}

func newIterator(e *Expression, t time.Time, dir Direction) *Iterator {
	it := &Iterator{e: e, dir: dir, unit: time.Minute}
	if e.seconds {
		it.unit = time.Second
	}
	it.dt = t.Add(-time.Duration(t.Nanosecond()))
	if !e.seconds {
		it.dt = it.dt.Add(-time.Duration(t.Second()) * time.Second)
	}
	it.last = it.dt
	loc := t.Location()
	if loc != time.UTC &&
		!strings.HasPrefix(e.fields[Minute], "*") &&
		!strings.HasPrefix(e.fields[Hour], "*") {
		// Jobs at specific times follow the wall clock and are fixed up
		// afterwards, like Debian cron.
		it.fixup = loc
		it.dt = wall(it.dt)
	}
	return it
}

// Next returns the next fire time. It returns false once no fire time
// exists within fifty years of the cursor.
func (it *Iterator) Next() (time.Time, bool) {
	if it.done {
		return time.Time{}, false
	}
	t, ok := it.advance()
	if !ok {
		it.done = true
		return time.Time{}, false
	}
	it.last = t
	return t, true
}

// All yields the remaining fire times.
func (it *Iterator) All() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for {
			t, ok := it.Next()
			if !ok || !yield(t) {
				return
			}
		}
	}
}

func (it *Iterator) advance() (time.Time, bool) {
	it.tick(it.unit)
	year := it.dt.Year()
	for {
		it.advanceMonth()
		if y := it.dt.Year(); y > year+horizon || y < year-horizon {
			return time.Time{}, false
		}
		if it.advanceDay() || it.advanceHour() || it.advanceMinute() ||
			it.advanceSecond() {
			continue
		}
		t := it.result()
		if it.dir.cmp(t, it.last) <= 0 {
			// Fixing up an imaginary or repeated wall clock reading
			// landed on or behind a time already passed.
			it.tick(it.unit)
			continue
		}
		return t, true
	}
}

func (d Direction) cmp(a, b time.Time) int {
	return a.Compare(b) * int(d)
}

// tick moves the cursor by d in the iterator's direction, in absolute time.
func (it *Iterator) tick(d time.Duration) {
	it.dt = it.dt.Add(d * time.Duration(it.dir))
}

// reset moves the cursor to the start (or, in reverse, the end) of day d.
func (it *Iterator) reset(d time.Time) {
	if it.dir == Forward {
		it.dt = it.at(d, 0, 0, 0)
	} else {
		it.dt = it.at(d, 23, 59, it.lastSecond())
	}
}

func (it *Iterator) lastSecond() int {
	if it.e.seconds {
		return 59
	}
	return 0
}

// alignSecond moves the cursor to the first second of its minute in the
// walking direction.
func (it *Iterator) alignSecond() {
	d := it.edge(it.lastSecond()) - it.dt.Second()
	it.dt = it.dt.Add(time.Duration(d) * time.Second)
}

func (it *Iterator) at(d time.Time, hour, minute, sec int) time.Time {
	y, m, day := d.Date()
	naive := time.Date(y, m, day, hour, minute, sec, 0, time.UTC)
	loc := it.dt.Location()
	if loc == time.UTC {
		return naive
	}
	if t, ok := localize(naive, loc); ok {
		return t
	}
	// The reading was skipped: land on the edge of the gap that lies in
	// the walking direction.
	t := afterGap(naive, loc)
	if it.dir == Reverse {
		t = t.Add(-it.unit)
	}
	return t
}

func (it *Iterator) advanceMonth() {
	if it.e.sets[Month].Has(int(it.dt.Month())) {
		return
	}
	y, m, _ := it.dt.Date()
	needle := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	for !it.e.sets[Month].Has(int(needle.Month())) {
		if it.dir == Forward {
			needle = needle.AddDate(0, 1, 0)
		} else {
			needle = needle.AddDate(0, -1, 0)
		}
	}
	if it.dir == Reverse {
		needle = needle.AddDate(0, 1, -1)
	}
	it.reset(needle)
}

func (it *Iterator) advanceDay() bool {
	y, m, d := it.dt.Date()
	needle := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if it.e.matchDay(needle) {
		return false
	}
	for !it.e.matchDay(needle) {
		needle = needle.AddDate(0, 0, int(it.dir))
		if needle.Month() != m {
			// Re-check the month.
			break
		}
	}
	it.reset(needle)
	return true
}

func (it *Iterator) advanceHour() bool {
	hours := it.e.hoursOn(it.date())
	if hours.Has(it.dt.Hour()) {
		return false
	}
	it.dt = it.dt.Add(time.Duration(it.edge(59)-it.dt.Minute()) * time.Minute)
	it.alignSecond()
	for !hours.Has(it.dt.Hour()) {
		it.tick(time.Hour)
		if it.dt.Hour() == it.edge(23) {
			// Midnight: re-check the day.
			break
		}
	}
	return true
}

func (it *Iterator) advanceMinute() bool {
	minutes := it.e.minutesOn(it.date())
	if minutes.Has(it.dt.Minute()) {
		return false
	}
	it.alignSecond()
	if vals := minutes.Values(); len(vals) == 1 {
		it.tick(time.Duration(it.distance(it.dt.Minute(), vals[0], 60)) *
			time.Minute)
	}
	for !minutes.Has(it.dt.Minute()) {
		it.tick(time.Minute)
		if it.dt.Minute() == it.edge(59) {
			// Top of the hour: re-check the hour.
			break
		}
	}
	return true
}

func (it *Iterator) advanceSecond() bool {
	seconds := it.e.sets[Second]
	if seconds.Has(it.dt.Second()) {
		return false
	}
	if vals := seconds.Values(); len(vals) == 1 {
		it.tick(time.Duration(it.distance(it.dt.Second(), vals[0], 60)) *
			time.Second)
	}
	for !seconds.Has(it.dt.Second()) {
		it.tick(time.Second)
		if it.dt.Second() == it.edge(59) {
			break
		}
	}
	return true
}

// edge returns the first value of a unit in the walking direction:
// zero going forward, hi going backward.
func (it *Iterator) edge(hi int) int {
	if it.dir == Forward {
		return 0
	}
	return hi
}

// distance counts the steps from v to target in the walking direction on a
// dial of size n.
func (it *Iterator) distance(v, target, n int) int {
	if it.dir == Forward {
		return ((target-v)%n + n) % n
	}
	return ((v-target)%n + n) % n
}

// date returns the calendar date under the cursor at midnight UTC.
func (it *Iterator) date() time.Time {
	y, m, d := it.dt.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// result turns a cursor that satisfies every field into a fire time.
func (it *Iterator) result() time.Time {
	if it.fixup == nil {
		return it.dt
	}
	naive := it.dt
	for {
		if t, ok := localize(naive, it.fixup); ok {
			return t
		}
		// The wall clock skipped this minute; take the next real one.
		naive = naive.Add(time.Minute)
		if it.dir == Forward {
			it.dt = naive
		}
	}
}
