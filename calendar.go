package cronsim

import (
	"maps"
	"slices"
	"time"
)

// BusinessDays answers the business day questions behind the B, FB, LB
// and EB tokens. Dates are passed as midnight UTC values; only their
// year, month and day are meaningful. Implementations must be pure and
// fast, as they are called while iterating.
type BusinessDays interface {
	IsBusinessDay(d time.Time) bool
	PrevBusinessDay(d time.Time) time.Time
	NextBusinessDay(d time.Time) time.Time
	// EndOfDay returns the close of business on d. Only its hour and
	// minute are used.
	EndOfDay(d time.Time) time.Time
}

// Holidays is a BusinessDays calendar in which Monday to Friday are
// business days unless they are listed in Closed.
//
// Keys of Closed and CutOffs must be DateOf values; other keys are never
// matched. Close and CloseEarly normalize their arguments, so prefer them
// to writing the maps directly.
type Holidays struct {
	// Closed holds the dates on which business is closed all day.
	Closed map[time.Time]bool
	// CutOff is the close of business as an offset from midnight.
	CutOff time.Duration
	// CutOffs overrides CutOff on particular dates, e.g. early closes.
	CutOffs map[time.Time]time.Duration
}

// DateOf returns the calendar date of t as a midnight UTC value, the form
// used for Holidays keys.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Close marks the given dates as holidays.
func (h *Holidays) Close(days ...time.Time) {
	if h.Closed == nil {
		h.Closed = make(map[time.Time]bool)
	}
	for _, d := range days {
		h.Closed[DateOf(d)] = true
	}
}

// CloseEarly sets the close of business on a single date.
func (h *Holidays) CloseEarly(d time.Time, cutOff time.Duration) {
	if h.CutOffs == nil {
		h.CutOffs = make(map[time.Time]time.Duration)
	}
	h.CutOffs[DateOf(d)] = cutOff
}

func (h *Holidays) IsBusinessDay(d time.Time) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !h.Closed[DateOf(d)]
}

func (h *Holidays) PrevBusinessDay(d time.Time) time.Time {
	return h.seek(d, -1)
}

func (h *Holidays) NextBusinessDay(d time.Time) time.Time {
	return h.seek(d, 1)
}

func (h *Holidays) seek(d time.Time, step int) time.Time {
	d = DateOf(d).AddDate(0, 0, step)
	for !h.IsBusinessDay(d) {
		d = d.AddDate(0, 0, step)
	}
	return d
}

func (h *Holidays) EndOfDay(d time.Time) time.Time {
	d = DateOf(d)
	if c, ok := h.CutOffs[d]; ok {
		return d.Add(c)
	}
	return d.Add(h.CutOff)
}

func sortedDays[V any](m map[time.Time]V) []time.Time {
	return slices.SortedFunc(maps.Keys(m), func(a, b time.Time) int {
		return a.Compare(b)
	})
}
