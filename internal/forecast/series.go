package forecast

import (
	"math/rand"
	"sort"
	"strings"
	"time"
)

// Frequency is the spacing of projected dates.
type Frequency int

const (
	Daily Frequency = iota
	// MonthEnd places dates on the last calendar day of each month.
	MonthEnd
)

func (f Frequency) String() string {
	switch f {
	case Daily:
		return "daily"
	case MonthEnd:
		return "month-end"
	default:
		return "unknown"
	}
}

// FutureDates returns periods dates strictly after last.
func FutureDates(last time.Time, periods int, freq Frequency) []time.Time {
	dates := make([]time.Time, 0, periods)
	switch freq {
	case MonthEnd:
		next := monthEnd(last)
		if !next.After(last) {
			next = monthEnd(next.AddDate(0, 0, 1))
		}
		for len(dates) < periods {
			dates = append(dates, next)
			next = monthEnd(next.AddDate(0, 0, 1))
		}
	default:
		for i := 1; i <= periods; i++ {
			dates = append(dates, last.AddDate(0, 0, i))
		}
	}
	return dates
}

// monthEnd returns midnight of the last day of t's month, in t's location.
func monthEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
}

// SimulationStart is the first date of the simulated demand series.
var SimulationStart = time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)

// Simulate returns days daily points from start with integer values in [100, 1000).
func Simulate(start time.Time, days int, rnd *rand.Rand) []Point {
	pts := make([]Point, 0, days)
	for i := 0; i < days; i++ {
		pts = append(pts, Point{
			DS: start.AddDate(0, 0, i),
			Y:  float64(100 + rnd.Intn(900)),
		})
	}
	return pts
}

// Observation is an unparsed dated amount, such as one order row.
type Observation struct {
	Date   string
	Amount float64
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.DateTime,
	"2006-01-02T15:04:05",
	time.DateOnly,
	"2006/01/02",
	"01/02/2006",
}

// ParseDate accepts the date formats commonly stored in SQL text columns.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Aggregate sums amounts per calendar day and returns the days in order.
// Observations with an unparseable date are dropped.
func Aggregate(obs []Observation) []Point {
	sums := make(map[time.Time]float64)
	for _, o := range obs {
		t, ok := ParseDate(o.Date)
		if !ok {
			continue
		}
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		sums[d] += o.Amount
	}
	pts := make([]Point, 0, len(sums))
	for d, y := range sums {
		pts = append(pts, Point{DS: d, Y: y})
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].DS.Before(pts[j].DS) })
	return pts
}
