package cronsim

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/adhocore/gronx"
	"github.com/google/go-cmp/cmp"
	"github.com/robfig/cron/v3"
)

var newYear = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func zone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%q) = _, %q, want <nil>", name, err)
	}
	return loc
}

// walk returns the first n fire times of text after start in RFC 3339.
func walk(
	t *testing.T, text string, start time.Time, opts Options, n int,
) []string {
	t.Helper()
	it, err := New(text, start, opts)
	if err != nil {
		t.Fatalf("New(%q) = _, %q, want <nil>", text, err)
	}
	var got []string
	for range n {
		next, ok := it.Next()
		if !ok {
			t.Fatalf("%q: iteration ended after %d results", text, len(got))
		}
		got = append(got, next.Format(time.RFC3339))
	}
	return got
}

func TestNext(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{{
		"1 1 L * *",
		[]string{"2020-01-31T01:01:00Z", "2020-02-29T01:01:00Z"},
	}, {
		"1 1 LW 5 *",
		[]string{"2020-05-29T01:01:00Z", "2021-05-31T01:01:00Z"},
	}, {
		"1 1 * * 5L",
		[]string{
			"2020-01-31T01:01:00Z",
			"2020-02-28T01:01:00Z",
			"2020-03-27T01:01:00Z",
			"2020-04-24T01:01:00Z",
			"2020-05-29T01:01:00Z",
			"2020-06-26T01:01:00Z",
			"2020-07-31T01:01:00Z",
			"2020-08-28T01:01:00Z",
			"2020-09-25T01:01:00Z",
			"2020-10-30T01:01:00Z",
			"2020-11-27T01:01:00Z",
			"2020-12-25T01:01:00Z",
		},
	}, {
		"1 1 * * 0L",
		[]string{"2020-01-26T01:01:00Z"},
	}, {
		"1 1 * * 7L",
		[]string{"2020-01-26T01:01:00Z"},
	}, {
		"1 1 * * 1#2",
		[]string{"2020-01-13T01:01:00Z", "2020-02-10T01:01:00Z"},
	}, {
		// First Sunday of the month.
		"1 1 1-7 * */7",
		[]string{
			"2020-01-05T01:01:00Z",
			"2020-02-02T01:01:00Z",
			"2020-03-01T01:01:00Z",
			"2020-04-05T01:01:00Z",
		},
	}, {
		// First Monday of the month.
		"1 1 */100,1-7 * MON",
		[]string{
			"2020-01-06T01:01:00Z",
			"2020-02-03T01:01:00Z",
			"2020-03-02T01:01:00Z",
			"2020-04-06T01:01:00Z",
		},
	}, {
		// Sundays, Wednesdays and Saturdays.
		"1 1 * * */3",
		[]string{
			"2020-01-01T01:01:00Z",
			"2020-01-04T01:01:00Z",
			"2020-01-05T01:01:00Z",
			"2020-01-08T01:01:00Z",
		},
	}, {
		// Either the 1st or a Friday.
		"0 0 1 * FRI",
		[]string{
			"2020-01-03T00:00:00Z",
			"2020-01-10T00:00:00Z",
			"2020-01-17T00:00:00Z",
			"2020-01-24T00:00:00Z",
			"2020-01-31T00:00:00Z",
			"2020-02-01T00:00:00Z",
		},
	}, {
		"0 12 29 2 *",
		[]string{"2020-02-29T12:00:00Z", "2024-02-29T12:00:00Z"},
	}}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := walk(t, tt.text, newYear, Options{}, len(tt.want))
			if !cmp.Equal(got, tt.want) {
				t.Errorf("-want +got\n%s", cmp.Diff(tt.want, got))
			}
		})
	}
}

func TestNextStrictlyAfter(t *testing.T) {
	e := MustParse("* * * * *", Options{})
	start := time.Date(2020, 1, 1, 10, 15, 0, 0, time.UTC)

	got, ok := e.Next(start)

	want := start.Add(time.Minute)
	if !ok || !got.Equal(want) {
		t.Errorf("Next(%v) = %v, %v, want %v, true", start, got, ok, want)
	}

	got, ok = e.Prev(start.Add(30 * time.Second))

	want = start.Add(-time.Minute)
	if !ok || !got.Equal(want) {
		t.Errorf("Prev(%v) = %v, %v, want %v, true", start, got, ok, want)
	}
}

func TestPrevTruncates(t *testing.T) {
	tests := []struct {
		text  string
		opts  Options
		start time.Time
		want  time.Time
	}{{
		text:  "0 10 * * *",
		start: time.Date(2020, 1, 2, 10, 0, 30, 0, time.UTC),
		want:  time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC),
	}, {
		text:  "0 10 * * * 15",
		opts:  Options{Seconds: true},
		start: time.Date(2020, 1, 2, 10, 0, 15, 500, time.UTC),
		want:  time.Date(2020, 1, 1, 10, 0, 15, 0, time.UTC),
	}, {
		text:  "0 10 * * * 15",
		opts:  Options{Seconds: true},
		start: time.Date(2020, 1, 2, 10, 0, 16, 0, time.UTC),
		want:  time.Date(2020, 1, 2, 10, 0, 15, 0, time.UTC),
	}}
	for _, tt := range tests {
		e := MustParse(tt.text, tt.opts)

		got, ok := e.Prev(tt.start)

		if !ok || !got.Equal(tt.want) {
			t.Errorf("%q Prev(%v) = %v, %v, want %v, true",
				tt.text, tt.start, got, ok, tt.want)
		}
	}
}

func TestNoMatches(t *testing.T) {
	// The 1st of the month that is also its fourth Monday.
	for _, dir := range []Direction{Forward, Reverse} {
		it := MustParse("1 1 */100 * MON#4", Options{}).Iter(newYear, dir)

		if got, ok := it.Next(); ok {
			t.Errorf("Next() = %v, true, want false", got)
		}
		if got, ok := it.Next(); ok {
			t.Errorf("Next() after exhaustion = %v, true, want false", got)
		}
	}
}

func TestAll(t *testing.T) {
	it, err := New("*/20 * * * *", newYear, Options{})
	if err != nil {
		t.Fatalf("New() = _, %q, want <nil>", err)
	}
	var got []string
	for next := range it.All() {
		got = append(got, next.Format(time.Kitchen))
		if len(got) == 4 {
			break
		}
	}
	want := []string{"12:20AM", "12:40AM", "1:00AM", "1:20AM"}
	if !cmp.Equal(got, want) {
		t.Errorf("All() -want +got\n%s", cmp.Diff(want, got))
	}
	if next, ok := it.Next(); !ok || next.Format(time.Kitchen) != "1:40AM" {
		t.Errorf("Next() after All() = %v, %v, want 1:40AM", next, ok)
	}
}

func TestNextSeconds(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{{
		"* * * * * */20",
		[]string{
			"2020-01-01T00:00:20Z",
			"2020-01-01T00:00:40Z",
			"2020-01-01T00:01:00Z",
		},
	}, {
		"0 0 * * * 30",
		[]string{"2020-01-01T00:00:30Z", "2020-01-02T00:00:30Z"},
	}, {
		"*/30 * * * *",
		[]string{"2020-01-01T00:30:00Z", "2020-01-01T01:00:00Z"},
	}}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := walk(t, tt.text, newYear, Options{Seconds: true},
				len(tt.want))
			if !cmp.Equal(got, tt.want) {
				t.Errorf("-want +got\n%s", cmp.Diff(tt.want, got))
			}
		})
	}
}

func TestDaylightSaving(t *testing.T) {
	// Europe/Riga in 2021: clocks go from 03:00 to 04:00 on March 28
	// and from 04:00 back to 03:00 on October 31.
	riga := zone(t, "Europe/Riga")
	mar := func(d, h, m int) time.Time {
		return time.Date(2021, 3, d, h, m, 0, 0, riga)
	}
	oct := func(d, h, m int) time.Time {
		return time.Date(2021, 10, d, h, m, 0, 0, riga)
	}
	// 03:58 on October 31 before the clocks go back.
	octFirst358 := time.Date(2021, 10, 31, 0, 58, 0, 0, time.UTC).In(riga)
	tests := []struct {
		text  string
		start time.Time
		want  []string
	}{{
		"0 * * * *", mar(28, 1, 30),
		[]string{"2021-03-28T02:00:00+02:00", "2021-03-28T04:00:00+03:00"},
	}, {
		"0 * * * *", oct(31, 1, 30),
		[]string{
			"2021-10-31T02:00:00+03:00",
			"2021-10-31T03:00:00+03:00",
			"2021-10-31T03:00:00+02:00",
			"2021-10-31T04:00:00+02:00",
		},
	}, {
		"*/30 * * * *", mar(28, 2, 10),
		[]string{
			"2021-03-28T02:30:00+02:00",
			"2021-03-28T04:00:00+03:00",
			"2021-03-28T04:30:00+03:00",
		},
	}, {
		"*/30 * * * *", oct(31, 2, 10),
		[]string{
			"2021-10-31T02:30:00+03:00",
			"2021-10-31T03:00:00+03:00",
			"2021-10-31T03:30:00+03:00",
			"2021-10-31T03:00:00+02:00",
			"2021-10-31T03:30:00+02:00",
			"2021-10-31T04:00:00+02:00",
		},
	}, {
		"*/15 * * * *", mar(28, 2, 40),
		[]string{"2021-03-28T02:45:00+02:00", "2021-03-28T04:00:00+03:00"},
	}, {
		"0 */2 * * *", mar(28, 1, 30),
		[]string{
			"2021-03-28T02:00:00+02:00",
			"2021-03-28T04:00:00+03:00",
			"2021-03-28T06:00:00+03:00",
		},
	}, {
		"0 */2 * * *", oct(31, 1, 30),
		[]string{
			"2021-10-31T02:00:00+03:00",
			"2021-10-31T04:00:00+02:00",
			"2021-10-31T06:00:00+02:00",
		},
	}, {
		"30 */2 * * *", oct(31, 1, 30),
		[]string{"2021-10-31T02:30:00+03:00", "2021-10-31T04:30:00+02:00"},
	}, {
		"0 */3 * * *", oct(31, 1, 30),
		[]string{
			"2021-10-31T03:00:00+03:00",
			"2021-10-31T03:00:00+02:00",
			"2021-10-31T06:00:00+02:00",
		},
	}, {
		"0 1,2,3,4,5 * * *", mar(28, 1, 30),
		[]string{
			"2021-03-28T02:00:00+02:00",
			"2021-03-28T04:00:00+03:00",
			"2021-03-28T05:00:00+03:00",
		},
	}, {
		"0 1,2,3,4,5 * * *", oct(31, 1, 30),
		[]string{
			"2021-10-31T02:00:00+03:00",
			"2021-10-31T03:00:00+03:00",
			"2021-10-31T04:00:00+02:00",
		},
	}, {
		"30 1,2,3,4,5 * * *", mar(28, 1, 30),
		[]string{
			"2021-03-28T02:30:00+02:00",
			"2021-03-28T04:00:00+03:00",
			"2021-03-28T04:30:00+03:00",
		},
	}, {
		"30 1,2,3,4,5 * * *", oct(31, 1, 30),
		[]string{
			"2021-10-31T02:30:00+03:00",
			"2021-10-31T03:30:00+03:00",
			"2021-10-31T04:30:00+02:00",
		},
	}, {
		"0 2 * * *", oct(31, 1, 30),
		[]string{"2021-10-31T02:00:00+03:00", "2021-11-01T02:00:00+02:00"},
	}, {
		"0 3 * * *", mar(27, 1, 30),
		[]string{
			"2021-03-27T03:00:00+02:00",
			"2021-03-28T04:00:00+03:00",
			"2021-03-29T03:00:00+03:00",
		},
	}, {
		"0 3 * * *", oct(31, 1, 30),
		[]string{"2021-10-31T03:00:00+03:00", "2021-11-01T03:00:00+02:00"},
	}, {
		"0 4 * * *", oct(30, 1, 30),
		[]string{
			"2021-10-30T04:00:00+03:00",
			"2021-10-31T04:00:00+02:00",
			"2021-11-01T04:00:00+02:00",
		},
	}, {
		"0 1,3,5,7,9,11,13,15,17,19,21,23 * * *", mar(28, 0, 30),
		[]string{
			"2021-03-28T01:00:00+02:00",
			"2021-03-28T04:00:00+03:00",
			"2021-03-28T05:00:00+03:00",
		},
	}, {
		"0 1-5 * * *", oct(31, 1, 30),
		[]string{
			"2021-10-31T02:00:00+03:00",
			"2021-10-31T03:00:00+03:00",
			"2021-10-31T04:00:00+02:00",
		},
	}, {
		"15 3 * * *", mar(27, 0, 0),
		[]string{
			"2021-03-27T03:15:00+02:00",
			"2021-03-28T04:00:00+03:00",
			"2021-03-29T03:15:00+03:00",
		},
	}, {
		"15 3 * * *", oct(30, 0, 0),
		[]string{
			"2021-10-30T03:15:00+03:00",
			"2021-10-31T03:15:00+03:00",
			"2021-11-01T03:15:00+02:00",
		},
	}, {
		"* * * * *", mar(28, 2, 58),
		[]string{"2021-03-28T02:59:00+02:00", "2021-03-28T04:00:00+03:00"},
	}, {
		"* * * * *", octFirst358,
		[]string{
			"2021-10-31T03:59:00+03:00",
			"2021-10-31T03:00:00+02:00",
			"2021-10-31T03:01:00+02:00",
		},
	}, {
		"* 1-6 * * *", octFirst358,
		[]string{
			"2021-10-31T03:59:00+03:00",
			"2021-10-31T03:00:00+02:00",
			"2021-10-31T03:01:00+02:00",
		},
	}}
	for _, tt := range tests {
		name := tt.text + " from " + tt.start.Format(time.RFC3339)
		t.Run(name, func(t *testing.T) {
			got := walk(t, tt.text, tt.start, Options{}, len(tt.want))
			if !cmp.Equal(got, tt.want) {
				t.Errorf("-want +got\n%s", cmp.Diff(tt.want, got))
			}
		})
	}
}

func TestSkippedMidnight(t *testing.T) {
	// Santiago and Havana move from 00:00 to 01:00 when daylight saving
	// starts. Apia skipped December 30, 2011 entirely.
	santiago := zone(t, "America/Santiago")
	havana := zone(t, "America/Havana")
	apia := zone(t, "Pacific/Apia")
	tests := []struct {
		name  string
		text  string
		start time.Time
		opts  Options
		want  []string
	}{{
		name:  "santiago sunday",
		text:  "0 * * * SUN",
		start: time.Date(2022, 9, 9, 8, 0, 0, 0, santiago),
		want: []string{
			"2022-09-11T01:00:00-03:00",
			"2022-09-11T02:00:00-03:00",
		},
	}, {
		name:  "santiago date",
		text:  "*/15 * 11 9 *",
		start: time.Date(2022, 9, 9, 8, 0, 0, 0, santiago),
		want: []string{
			"2022-09-11T01:00:00-03:00",
			"2022-09-11T01:15:00-03:00",
		},
	}, {
		name:  "santiago reverse",
		text:  "0 * * * SUN",
		start: time.Date(2022, 9, 11, 3, 0, 0, 0, santiago),
		opts:  Options{Reverse: true},
		want: []string{
			"2022-09-11T02:00:00-03:00",
			"2022-09-11T01:00:00-03:00",
			"2022-09-04T23:00:00-04:00",
		},
	}, {
		name:  "havana sunday",
		text:  "0 * * * SUN",
		start: time.Date(2022, 3, 11, 8, 0, 0, 0, havana),
		want: []string{
			"2022-03-13T01:00:00-04:00",
			"2022-03-13T02:00:00-04:00",
		},
	}, {
		name:  "apia missing day",
		text:  "* * 30 12 *",
		start: time.Date(2011, 12, 29, 12, 0, 0, 0, apia),
		want: []string{
			"2012-12-30T00:00:00+14:00",
			"2012-12-30T00:01:00+14:00",
		},
	}, {
		name:  "apia across the missing day",
		text:  "0 * * * *",
		start: time.Date(2011, 12, 29, 22, 30, 0, 0, apia),
		want: []string{
			"2011-12-29T23:00:00-10:00",
			"2011-12-31T00:00:00+14:00",
			"2011-12-31T01:00:00+14:00",
		},
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := walk(t, tt.text, tt.start, tt.opts, len(tt.want))
			if !cmp.Equal(got, tt.want) {
				t.Errorf("-want +got\n%s", cmp.Diff(tt.want, got))
			}
		})
	}
}

func TestFixupMode(t *testing.T) {
	riga := zone(t, "Europe/Riga")
	tests := []struct {
		text  string
		start time.Time
		fixup bool
	}{
		{"1 1 L * *", newYear, false},
		{"1 1 L * *", newYear.In(riga), true},
		{"* 1 * * *", newYear.In(riga), false},
		{"1 * * * *", newYear.In(riga), false},
		{"*/5 1 * * *", newYear.In(riga), false},
	}
	for _, tt := range tests {
		it := MustParse(tt.text, Options{}).Iter(tt.start, Forward)
		if got := it.fixup != nil; got != tt.fixup {
			t.Errorf("%q from %v: fixup = %v, want %v",
				tt.text, tt.start, got, tt.fixup)
		}
	}
}

var reverseSamples = []string{
	"* * * * *",
	"0 * * * *",
	"*/30 * * * *",
	"*/15 * * * *",
	"0 */2 * * *",
	"30 */2 * * *",
	"0 */3 * * *",
	"0 1,2,3,4,5 * * *",
	"30 1,2,3,4,5 * * *",
	"0 2 * * *",
	"0 3 * * *",
	"0 4 * * *",
	"0 0,1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16,17,18,19,20,21,22,23 * * *",
	"0 1,3,5,7,9,11,13,15,17,19,21,23 * * *",
	"0 1-5 * * *",
	"15 3 * * *",
	"* 1-6 * * *",
	"1 1 L * *",
	"1 1 LW 5 *",
	"1 1 * * 5L",
	"1 1 * * 0L",
	"1 1 * * 7L",
	"1 1 * * 1#2",
	"1 1 1-7 * */7",
	"1 1 */100,1-7 * MON",
	"1 1 * * */3",
}

func TestReverse(t *testing.T) {
	riga := zone(t, "Europe/Riga")
	santiago := zone(t, "America/Santiago")
	apia := zone(t, "Pacific/Apia")
	starts := map[string]time.Time{
		"utc":      newYear,
		"riga":     newYear.In(riga),
		"dst mar":  time.Date(2021, 3, 28, 1, 30, 0, 0, riga),
		"dst oct":  time.Date(2021, 10, 31, 1, 30, 0, 0, riga),
		"santiago": time.Date(2022, 9, 10, 21, 30, 0, 0, santiago),
		"apia":     time.Date(2011, 12, 29, 21, 30, 0, 0, apia),
	}
	for name, start := range starts {
		for _, text := range reverseSamples {
			e := MustParse(text, Options{})
			var crumbs []time.Time
			for next := range e.Iter(start, Forward).All() {
				crumbs = append(crumbs, next)
				if len(crumbs) == 5 {
					break
				}
			}
			last := crumbs[len(crumbs)-1]

			var got []time.Time
			for prev := range e.Iter(last, Reverse).All() {
				got = append(got, prev)
				if len(got) == 4 {
					break
				}
			}

			var want []time.Time
			for i := len(crumbs) - 2; i >= 0; i-- {
				want = append(want, crumbs[i])
			}
			if !cmp.Equal(got, want) {
				t.Errorf("%s: %q reversed -want +got\n%s",
					name, text, cmp.Diff(want, got))
			}
		}
	}
}

func TestReverseOption(t *testing.T) {
	start := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	got := walk(t, "0 12 L * *", start, Options{Reverse: true}, 3)
	want := []string{
		"2020-02-29T12:00:00Z",
		"2020-01-31T12:00:00Z",
		"2019-12-31T12:00:00Z",
	}
	if !cmp.Equal(got, want) {
		t.Errorf("-want +got\n%s", cmp.Diff(want, got))
	}
}

func TestAgainstRobfigCron(t *testing.T) {
	parser := cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
	)
	exprs := []string{
		"*/7 * * * *",
		"5 */3 * * *",
		"15 10 * * 1-5",
		"0 0 1,15 * 3",
		"30 6 * 2 *",
		"0 22 * * mon-fri",
		"23 0-20/2 * * *",
		"0 0 31 * *",
		"10,20 9-17 * * 0,6",
		"0 12 29 2 *",
	}
	for _, expr := range exprs {
		sched, err := parser.Parse(expr)
		if err != nil {
			t.Fatalf("cron.Parse(%q) = _, %q, want <nil>", expr, err)
		}
		it := MustParse(expr, Options{}).Iter(newYear, Forward)
		want := newYear
		for range 10 {
			want = sched.Next(want)
			got, ok := it.Next()
			if !ok || !got.Equal(want) {
				t.Errorf("%q: Next() = %v, %v, want %v, true",
					expr, got, ok, want)
				break
			}
		}
	}
}

func TestAgainstGronx(t *testing.T) {
	exprs := []string{
		"*/7 * * * *",
		"5 */3 * * *",
		"15 10 * * 1-5",
		"0 0 1 * *",
	}
	ref := time.Date(2021, 6, 15, 12, 0, 0, 0, time.UTC)
	for _, expr := range exprs {
		e := MustParse(expr, Options{})

		want, err := gronx.NextTickAfter(expr, ref, false)
		if err != nil {
			t.Fatalf("gronx.NextTickAfter(%q) = _, %q", expr, err)
		}
		if got, ok := e.Next(ref); !ok || !got.Equal(want) {
			t.Errorf("%q: Next() = %v, %v, want %v, true",
				expr, got, ok, want)
		}

		want, err = gronx.PrevTickBefore(expr, ref, false)
		if err != nil {
			t.Fatalf("gronx.PrevTickBefore(%q) = _, %q", expr, err)
		}
		if got, ok := e.Prev(ref); !ok || !got.Equal(want) {
			t.Errorf("%q: Prev() = %v, %v, want %v, true",
				expr, got, ok, want)
		}
	}
}
