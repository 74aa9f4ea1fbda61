package services

import (
	"math"
	"sort"
	"time"

	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
)

const (
	// MonthlyGoalTarget is the default number of submissions a student aims
	// for each month.
	MonthlyGoalTarget = 5

	// ActivePeriod is the trailing period in which a submission makes a
	// student count as active.
	ActivePeriod = 30 * 24 * time.Hour

	topPerformerLimit = 5
)

// StatusCounts tallies achievements by status.
type StatusCounts struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
}

func (c *StatusCounts) add(a models.Achievement) {
	c.Total++
	switch a.Status {
	case models.AchievementApproved:
		c.Approved++
	case models.AchievementRejected:
		c.Rejected++
	default:
		c.Pending++
	}
}

func (c *StatusCounts) merge(o StatusCounts) {
	c.Total += o.Total
	c.Approved += o.Approved
	c.Pending += o.Pending
	c.Rejected += o.Rejected
}

// ApprovalRate is approved over reviewed achievements as an integer
// percentage. With nothing reviewed it is 0.
func (c StatusCounts) ApprovalRate() int {
	reviewed := c.Approved + c.Rejected
	if reviewed == 0 {
		return 0
	}
	return int(math.Round(float64(c.Approved) * 100 / float64(reviewed)))
}

// Distribution is the share of each status over all achievements, in
// percent with one decimal.
type Distribution struct {
	Approved float64 `json:"approved"`
	Pending  float64 `json:"pending"`
	Rejected float64 `json:"rejected"`
}

// Distribution returns the status shares of c.
func (c StatusCounts) Distribution() Distribution {
	return Distribution{
		Approved: percent(c.Approved, c.Total),
		Pending:  percent(c.Pending, c.Total),
		Rejected: percent(c.Rejected, c.Total),
	}
}

// CategoryCount is the number of achievements in one category.
type CategoryCount struct {
	Category models.Category `json:"category"`
	Count    int             `json:"count"`
	Approved int             `json:"approved"`
}

// Growth compares this calendar month's submissions with last month's.
type Growth struct {
	ThisMonth int    `json:"thisMonth"`
	LastMonth int    `json:"lastMonth"`
	Rate      int    `json:"rate"`
	Trend     string `json:"trend"`
}

// MonthlyGoal tracks this month's submissions against the target.
type MonthlyGoal struct {
	Target     int `json:"target"`
	Achieved   int `json:"achieved"`
	Percentage int `json:"percentage"`
}

// Performer is a ranked student in a faculty roster.
type Performer struct {
	StudentID    string   `json:"studentId"`
	Name         string   `json:"name"`
	Achievements int      `json:"achievements"`
	GPA          *float64 `json:"gpa,omitempty"`
	Attendance   *float64 `json:"attendance,omitempty"`
	Score        int      `json:"score"`
}

func percent(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return round1(float64(n) * 100 / float64(d))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// average of the defined values only, two decimals; 0 when none are defined.
func average(values []*float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return round2(sum / float64(n))
}

func countStatuses(students []*models.Student) StatusCounts {
	var c StatusCounts
	for _, st := range students {
		for _, a := range st.Achievements {
			c.add(a)
		}
	}
	return c
}

func categoryBreakdown(students []*models.Student) []CategoryCount {
	counts := make(map[models.Category]*CategoryCount, len(models.Categories))
	out := make([]CategoryCount, len(models.Categories))
	for i, c := range models.Categories {
		out[i] = CategoryCount{Category: c}
		counts[c] = &out[i]
	}
	for _, st := range students {
		for _, a := range st.Achievements {
			cc, ok := counts[a.Category]
			if !ok {
				continue
			}
			cc.Count++
			if a.Status == models.AchievementApproved {
				cc.Approved++
			}
		}
	}
	return out
}

func monthStart(t time.Time, offset int) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, offset, 0)
}

func countUploadsBetween(achievements []models.Achievement, from, to time.Time) int {
	n := 0
	for _, a := range achievements {
		if !a.UploadedAt.Before(from) && a.UploadedAt.Before(to) {
			n++
		}
	}
	return n
}

func growthOf(achievements []models.Achievement, now time.Time) Growth {
	this := countUploadsBetween(achievements, monthStart(now, 0), monthStart(now, 1))
	last := countUploadsBetween(achievements, monthStart(now, -1), monthStart(now, 0))

	var rate float64
	switch {
	case last > 0:
		rate = float64(this-last) * 100 / float64(last)
	case this > 0:
		rate = 100
	}

	g := Growth{ThisMonth: this, LastMonth: last, Rate: int(math.Round(rate)), Trend: "stable"}
	if rate > 0 {
		g.Trend = "up"
	} else if rate < 0 {
		g.Trend = "down"
	}
	return g
}

func monthlyGoalOf(achievements []models.Achievement, now time.Time) MonthlyGoal {
	achieved := countUploadsBetween(achievements, monthStart(now, 0), monthStart(now, 1))
	return MonthlyGoal{
		Target:     MonthlyGoalTarget,
		Achieved:   achieved,
		Percentage: int(math.Round(float64(achieved) * 100 / MonthlyGoalTarget)),
	}
}

// performerScore weights achievements 50%, GPA 30% and attendance 20%.
// Ten or more achievements earn the full achievement share.
func performerScore(st *models.Student) int {
	achievementScore := math.Min(float64(len(st.Achievements))/10*50, 50)
	var gpaScore, attendanceScore float64
	if st.GPA != nil {
		gpaScore = *st.GPA / 10 * 30
	}
	if st.Attendance != nil {
		attendanceScore = *st.Attendance / 100 * 20
	}
	return int(math.Round(achievementScore + gpaScore + attendanceScore))
}

func topPerformers(students []*models.Student, limit int) []Performer {
	out := make([]Performer, 0, len(students))
	for _, st := range students {
		out = append(out, Performer{
			StudentID:    st.ID,
			Name:         st.FullName(),
			Achievements: len(st.Achievements),
			GPA:          st.GPA,
			Attendance:   st.Attendance,
			Score:        performerScore(st),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].StudentID < out[j].StudentID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func activeStudents(students []*models.Student, now time.Time) int {
	since := now.Add(-ActivePeriod)
	n := 0
	for _, st := range students {
		for _, a := range st.Achievements {
			if !a.UploadedAt.Before(since) && !a.UploadedAt.After(now) {
				n++
				break
			}
		}
	}
	return n
}

func uploadTimes(students []*models.Student) []time.Time {
	var out []time.Time
	for _, st := range students {
		for _, a := range st.Achievements {
			out = append(out, a.UploadedAt)
		}
	}
	return out
}
