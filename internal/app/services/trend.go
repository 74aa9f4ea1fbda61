package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
)

// Window is a trailing trend window in days.
type Window int

const (
	Window7   Window = 7
	Window30  Window = 30
	Window90  Window = 90
	Window365 Window = 365
)

// Granularity is the bucket size used for a window.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ParseWindow accepts "7d", "30d", "90d", "365d", "1y" or a bare day count.
// An empty string selects the 30 day window.
func ParseWindow(s string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "7d", "7":
		return Window7, nil
	case "", "30d", "30":
		return Window30, nil
	case "90d", "90":
		return Window90, nil
	case "365d", "365", "1y":
		return Window365, nil
	}
	return 0, apperrors.NewValidationError(fmt.Sprintf("unsupported trend window %q", s)).
		WithDetails(map[string]interface{}{"allowed": []string{"7d", "30d", "90d", "1y"}})
}

// Granularity returns day buckets up to 30 days, weeks for 90 and calendar
// months for a year.
func (w Window) Granularity() Granularity {
	switch {
	case w <= Window30:
		return GranularityDay
	case w <= Window90:
		return GranularityWeek
	}
	return GranularityMonth
}

// Bucket is the half-open interval [Start, End).
type Bucket struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls in the bucket.
func (b Bucket) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

// TrendPoint is one labelled value of a trend series.
type TrendPoint struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	Value int       `json:"value"`
}

// Buckets splits the window ending at the close of now's UTC day into
// consecutive buckets. Month windows cover the current calendar month and
// the eleven before it.
func Buckets(w Window, now time.Time) []Bucket {
	now = now.UTC()
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	var buckets []Bucket
	switch w.Granularity() {
	case GranularityDay:
		start := endOfDay.AddDate(0, 0, -int(w))
		for d := start; d.Before(endOfDay); d = d.AddDate(0, 0, 1) {
			buckets = append(buckets, Bucket{Label: d.Format("Jan 2"), Start: d, End: d.AddDate(0, 0, 1)})
		}

	case GranularityWeek:
		start := endOfDay.AddDate(0, 0, -int(w))
		for d := start; d.Before(endOfDay); d = d.AddDate(0, 0, 7) {
			end := d.AddDate(0, 0, 7)
			if end.After(endOfDay) {
				end = endOfDay
			}
			buckets = append(buckets, Bucket{Label: d.Format("Jan 2"), Start: d, End: end})
		}

	case GranularityMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		for i := 11; i >= 0; i-- {
			m := first.AddDate(0, -i, 0)
			buckets = append(buckets, Bucket{Label: m.Format("Jan 06"), Start: m, End: m.AddDate(0, 1, 0)})
		}
	}
	return buckets
}

// Trend counts events per bucket. Events outside the window are ignored and
// every in-window event lands in exactly one bucket. With cumulative set each
// point carries the running total.
func Trend(w Window, now time.Time, events []time.Time, cumulative bool) []TrendPoint {
	buckets := Buckets(w, now)
	points := make([]TrendPoint, len(buckets))
	for i, b := range buckets {
		points[i] = TrendPoint{Label: b.Label, Start: b.Start}
	}
	if len(buckets) == 0 {
		return points
	}

	windowStart, windowEnd := buckets[0].Start, buckets[len(buckets)-1].End
	for _, t := range events {
		t = t.UTC()
		if t.Before(windowStart) || !t.Before(windowEnd) {
			continue
		}
		for i := range buckets {
			if buckets[i].Contains(t) {
				points[i].Value++
				break
			}
		}
	}

	if cumulative {
		Cumulative(points)
	}
	return points
}

// Cumulative rewrites points in place as a running total.
func Cumulative(points []TrendPoint) {
	for i := 1; i < len(points); i++ {
		points[i].Value += points[i-1].Value
	}
}
