package models

import "time"

// ReviewEventType names a change in an achievement's lifecycle.
type ReviewEventType string

const (
	EventAchievementSubmitted ReviewEventType = "achievement.submitted"
	EventAchievementReviewed  ReviewEventType = "achievement.reviewed"
)

// ReviewEvent is pushed to the live feed of every recipient.
type ReviewEvent struct {
	Type          ReviewEventType   `json:"type"`
	Recipients    []string          `json:"-"`
	StudentID     string            `json:"studentId"`
	DepartmentID  string            `json:"departmentId"`
	FacultyID     string            `json:"facultyId,omitempty"`
	AchievementID string            `json:"achievementId"`
	Title         string            `json:"title"`
	Category      Category          `json:"category"`
	Status        AchievementStatus `json:"status"`
	Comment       string            `json:"comment,omitempty"`
	OccurredAt    time.Time         `json:"occurredAt"`
}
