package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
)

var trendNow = time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)

func TestParseWindow(t *testing.T) {
	cases := map[string]Window{
		"":     Window30,
		"7d":   Window7,
		"30":   Window30,
		"90D":  Window90,
		"1y":   Window365,
		"365d": Window365,
	}
	for in, want := range cases {
		got, err := ParseWindow(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseWindow("14d")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestBucketsByDay(t *testing.T) {
	buckets := Buckets(Window7, trendNow)
	require.Len(t, buckets, 7)
	assert.Equal(t, time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC), buckets[0].Start)
	assert.Equal(t, "Mar 9", buckets[0].Label)
	assert.Equal(t, "Mar 15", buckets[6].Label)
	assert.Equal(t, time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC), buckets[6].End)

	assert.Len(t, Buckets(Window30, trendNow), 30)
	assert.Equal(t, GranularityDay, Window30.Granularity())
}

func TestBucketsByWeekTruncatesLast(t *testing.T) {
	buckets := Buckets(Window90, trendNow)
	require.Len(t, buckets, 13)
	assert.Equal(t, time.Date(2024, time.December, 16, 0, 0, 0, 0, time.UTC), buckets[0].Start)

	last := buckets[len(buckets)-1]
	assert.Equal(t, time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC), last.End)
	assert.Equal(t, 6*24*time.Hour, last.End.Sub(last.Start))

	for i := 1; i < len(buckets); i++ {
		assert.Equal(t, buckets[i-1].End, buckets[i].Start)
	}
}

func TestBucketsByMonth(t *testing.T) {
	buckets := Buckets(Window365, trendNow)
	require.Len(t, buckets, 12)
	assert.Equal(t, "Apr 24", buckets[0].Label)
	assert.Equal(t, "Mar 25", buckets[11].Label)
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), buckets[11].End)
	assert.Equal(t, GranularityMonth, Window365.Granularity())
}

func TestTrendCountsEachEventOnce(t *testing.T) {
	events := []time.Time{
		time.Date(2025, time.March, 8, 23, 59, 59, 0, time.UTC), // before the window
		time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 9, 23, 59, 59, 0, time.UTC),
		time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC), // end is exclusive
	}

	points := Trend(Window7, trendNow, events, false)
	require.Len(t, points, 7)
	assert.Equal(t, 2, points[0].Value)
	assert.Equal(t, 1, points[1].Value)
	assert.Equal(t, 1, points[6].Value)

	total := 0
	for _, p := range points {
		total += p.Value
	}
	assert.Equal(t, 4, total)

	cumulative := Trend(Window7, trendNow, events, true)
	assert.Equal(t, 2, cumulative[0].Value)
	assert.Equal(t, 3, cumulative[1].Value)
	assert.Equal(t, 4, cumulative[6].Value)
}

func TestTrendConvertsToUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 2025-03-15 02:00 IST is 2025-03-14 20:30 UTC
	points := Trend(Window7, trendNow, []time.Time{time.Date(2025, time.March, 15, 2, 0, 0, 0, ist)}, false)
	assert.Equal(t, 1, points[5].Value)
	assert.Equal(t, 0, points[6].Value)
}
