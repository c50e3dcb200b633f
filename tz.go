package cronsim

import "time"

// wall returns the wall clock reading of t as a UTC time.
func wall(t time.Time) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), time.UTC)
}

// localize returns the instant at which loc's clocks read naive.
// A reading that happens twice resolves to the earlier instant.
// ok is false for a reading skipped by a transition; t is then
// time.Date's normalization of it.
func localize(naive time.Time, loc *time.Location) (t time.Time, ok bool) {
	t = time.Date(naive.Year(), naive.Month(), naive.Day(),
		naive.Hour(), naive.Minute(), naive.Second(), naive.Nanosecond(), loc)
	if !wall(t).Equal(naive) {
		return t, false
	}
	// The offsets in effect half a day either side cover both readings
	// of a repeated hour.
	for _, shift := range []time.Duration{-12 * time.Hour, 12 * time.Hour} {
		_, off := t.Add(shift).Zone()
		c := naive.Add(-time.Duration(off) * time.Second).In(loc)
		if c.Before(t) && wall(c).Equal(naive) {
			t = c
		}
	}
	return t, true
}

// afterGap returns the first instant after the transition that skipped
// the wall clock reading naive in loc.
func afterGap(naive time.Time, loc *time.Location) time.Time {
	t := time.Date(naive.Year(), naive.Month(), naive.Day(),
		naive.Hour(), naive.Minute(), naive.Second(), naive.Nanosecond(), loc)
	_, before := t.Add(-24 * time.Hour).Zone()
	// Read with the old offset, naive falls past the transition.
	start, _ := naive.Add(-time.Duration(before) * time.Second).In(loc).
		ZoneBounds()
	return start
}
