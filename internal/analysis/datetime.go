package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/KaramelBytes/autoeda/internal/dataset"
)

func analyzeDatetime(in columnInput) *DatetimeStats {
	s := &DatetimeStats{}
	var ts []time.Time
	for _, v := range in.values {
		if dataset.IsMissing(v) {
			s.Missing++
			continue
		}
		t, ok := in.parsers.Time(v)
		if !ok {
			s.Invalid++
			continue
		}
		ts = append(ts, t)
	}
	s.Count = len(ts)
	if len(ts) == 0 {
		in.warn("range", "no parseable timestamps")
		in.warn("granularity", "no parseable timestamps")
		return s
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
	lo, hi := ts[0], ts[len(ts)-1]
	s.Min, s.Max = &lo, &hi
	s.RangeDays = defined(hi.Sub(lo).Hours() / 24)
	s.Granularity = granularity(ts)
	intervals(ts, s, in.warn)

	years := map[string]int{}
	months := make([]int, 13)
	weekdays := make([]int, 7)
	hours := make([]int, 24)
	withClock := false
	for _, t := range ts {
		years[fmt.Sprint(t.Year())]++
		months[t.Month()]++
		weekdays[t.Weekday()]++
		hours[t.Hour()]++
		if hasClock(t) {
			withClock = true
		}
	}
	n := len(ts)
	s.Years = sortedKeysAsc(years, n)
	for m := time.January; m <= time.December; m++ {
		if months[m] > 0 {
			s.Months = append(s.Months, Frequency{Value: m.String(), Count: months[m], Pct: pct(months[m], n)})
		}
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if weekdays[d] > 0 {
			s.Weekdays = append(s.Weekdays, Frequency{Value: d.String(), Count: weekdays[d], Pct: pct(weekdays[d], n)})
		}
	}
	if withClock {
		for h, c := range hours {
			if c > 0 {
				s.Hours = append(s.Hours, Frequency{Value: fmt.Sprintf("%02d", h), Count: c, Pct: pct(c, n)})
			}
		}
	}
	return s
}

func hasClock(t time.Time) bool {
	return t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0
}

// granularity names the largest unit that every gap between sorted distinct
// timestamps is a whole multiple of. A clock component forces
// second/minute/hour; date-only values resolve to year, month, week or day.
// Calendar months and years are compared by calendar, not by day count.
func granularity(sorted []time.Time) string {
	distinct := distinctTimes(sorted)
	clock, sub, minute := false, false, false
	for _, t := range distinct {
		if hasClock(t) {
			clock = true
		}
		if t.Second() != 0 || t.Nanosecond() != 0 {
			sub = true
		}
		if t.Minute() != 0 {
			minute = true
		}
	}
	if clock {
		switch {
		case sub:
			return "second"
		case minute:
			return "minute"
		default:
			return "hour"
		}
	}
	if len(distinct) < 2 {
		return "day"
	}
	years, months, weeks := true, true, true
	for i := 1; i < len(distinct); i++ {
		a, b := distinct[i-1], distinct[i]
		n, ok := wholeMonths(a, b)
		if !ok {
			months, years = false, false
		} else if n%12 != 0 {
			years = false
		}
		days := b.Sub(a).Hours() / 24
		if days != math.Trunc(days) || int64(days)%7 != 0 {
			weeks = false
		}
	}
	switch {
	case years:
		return "year"
	case months:
		return "month"
	case weeks:
		return "week"
	}
	return "day"
}

func distinctTimes(sorted []time.Time) []time.Time {
	var out []time.Time
	for i, t := range sorted {
		if i == 0 || !t.Equal(sorted[i-1]) {
			out = append(out, t)
		}
	}
	return out
}

// wholeMonths reports whether b is a whole number of calendar months after a.
// Month ends match each other, so Jan 31 to Feb 29 is one month.
func wholeMonths(a, b time.Time) (int, bool) {
	n := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if n <= 0 {
		return 0, false
	}
	if a.Day() == b.Day() || (isMonthEnd(a) && isMonthEnd(b)) {
		return n, true
	}
	return 0, false
}

func isMonthEnd(t time.Time) bool {
	return t.AddDate(0, 0, 1).Day() == 1
}

// intervals summarizes the gaps in days between consecutive sorted
// timestamps, duplicates included.
func intervals(sorted []time.Time, s *DatetimeStats, warn func(stat, reason string)) {
	if len(sorted) < 2 {
		warn("intervals", "need at least 2 timestamps")
		return
	}
	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, sorted[i].Sub(sorted[i-1]).Hours()/24)
	}
	var m moments
	for _, g := range gaps {
		m.add(g)
	}
	sort.Float64s(gaps)
	s.Intervals = &IntervalStats{
		Count:      len(gaps),
		MinDays:    defined(gaps[0]),
		MedianDays: defined(quantile(gaps, 0.5)),
		MeanDays:   defined(m.mean),
		MaxDays:    defined(gaps[len(gaps)-1]),
		StdDays:    m.std(),
	}
}

func sortedKeysAsc(counts map[string]int, total int) []Frequency {
	out := make([]Frequency, 0, len(counts))
	for k, c := range counts {
		out = append(out, Frequency{Value: k, Count: c, Pct: pct(c, total)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}
