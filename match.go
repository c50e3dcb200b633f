package cronsim

import "time"

// matchDay reports whether the date d, at midnight UTC, satisfies the
// day-of-month and day-of-week fields.
func (e *Expression) matchDay(d time.Time) bool {
	var ok bool
	if e.dayAnd {
		ok = e.matchDom(d) && e.matchDow(d)
	} else {
		ok = e.matchDom(d) || e.matchDow(d)
	}
	if ok && e.sets[Hour].only(EndOfBusinessDay) {
		return e.cal.IsBusinessDay(d)
	}
	return ok
}

func (e *Expression) matchDom(d time.Time) bool {
	days := e.sets[Day]
	if days.Has(d.Day()) {
		return true
	}
	// No month is shorter than 28 days, and when the 28th is a Sunday the
	// last weekday is the 26th.
	if d.Day() >= 26 && days.hasItem(sentinel(LastWeekday)) &&
		d.Day() == lastWeekday(d) {
		return true
	}
	if d.Day() >= 28 && days.hasItem(sentinel(LastDay)) &&
		d.Day() == lastDay(d) {
		return true
	}
	if e.cal == nil {
		return false
	}
	if days.hasItem(sentinel(FirstBusinessDay)) && e.cal.IsBusinessDay(d) &&
		!sameMonth(e.cal.PrevBusinessDay(d), d) {
		return true
	}
	if days.hasItem(sentinel(LastBusinessDay)) && e.cal.IsBusinessDay(d) &&
		!sameMonth(e.cal.NextBusinessDay(d), d) {
		return true
	}
	return false
}

func (e *Expression) matchDow(d time.Time) bool {
	dows := e.sets[Weekday]
	// Sunday is both 0 and 7.
	wds := []int{int(d.Weekday())}
	if wds[0] == 0 {
		wds = append(wds, 7)
	}
	nth := (d.Day() + 6) / 7
	last := d.Day()+7 > lastDay(d)
	for _, wd := range wds {
		if dows.Has(wd) {
			return true
		}
		if dows.hasItem(Item{Kind: Nth, Value: wd, N: nth}) {
			return true
		}
		if last && dows.hasItem(Item{Kind: LastOf, Value: wd}) {
			return true
		}
	}
	if e.cal == nil {
		return false
	}
	if dows.hasItem(sentinel(BusinessDay)) && e.cal.IsBusinessDay(d) {
		return true
	}
	if dows.hasItem(sentinel(FirstWeekBusinessDay)) &&
		e.cal.IsBusinessDay(d) && !sameWeek(e.cal.PrevBusinessDay(d), d) {
		return true
	}
	if dows.hasItem(sentinel(LastWeekBusinessDay)) &&
		e.cal.IsBusinessDay(d) && !sameWeek(e.cal.NextBusinessDay(d), d) {
		return true
	}
	return false
}

// hoursOn returns the hours accepted on date d.
func (e *Expression) hoursOn(d time.Time) Set {
	if e.sets[Hour].only(EndOfBusinessDay) {
		return Set{num(e.cal.EndOfDay(d).Hour()): {}}
	}
	return e.sets[Hour]
}

// minutesOn returns the minutes accepted on date d.
func (e *Expression) minutesOn(d time.Time) Set {
	if e.sets[Minute].only(EndOfBusinessDay) {
		return Set{num(e.cal.EndOfDay(d).Minute()): {}}
	}
	return e.sets[Minute]
}

// lastDay returns the number of days in the month of d.
func lastDay(d time.Time) int {
	y, m, _ := d.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// lastWeekday returns the last Monday to Friday in the month of d.
func lastWeekday(d time.Time) int {
	y, m, _ := d.Date()
	last := time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
	switch last.Weekday() {
	case time.Saturday:
		return last.Day() - 1
	case time.Sunday:
		return last.Day() - 2
	}
	return last.Day()
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func sameWeek(a, b time.Time) bool {
	ay, aw := a.ISOWeek()
	by, bw := b.ISOWeek()
	return ay == by && aw == bw
}
