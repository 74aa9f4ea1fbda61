package models

import "time"

// Category is the fixed enumeration of achievement kinds.
type Category string

const (
	CategoryWorkshop         Category = "Workshop"
	CategoryConference       Category = "Conference"
	CategoryHackathon        Category = "Hackathon"
	CategoryInternship       Category = "Internship"
	CategoryCourse           Category = "Course"
	CategoryCompetition      Category = "Competition"
	CategoryCommunityService Category = "CommunityService"
	CategoryLeadership       Category = "Leadership"
	CategoryClubs            Category = "Clubs"
	CategoryVolunteering     Category = "Volunteering"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryWorkshop,
	CategoryConference,
	CategoryHackathon,
	CategoryInternship,
	CategoryCourse,
	CategoryCompetition,
	CategoryCommunityService,
	CategoryLeadership,
	CategoryClubs,
	CategoryVolunteering,
}

// IsValid reports whether c belongs to the enumeration.
func (c Category) IsValid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// AchievementStatus is the review state of an achievement.
type AchievementStatus string

const (
	AchievementPending  AchievementStatus = "Pending"
	AchievementApproved AchievementStatus = "Approved"
	AchievementRejected AchievementStatus = "Rejected"
)

// IsDecision reports whether s is a valid outcome of a review.
func (s AchievementStatus) IsDecision() bool {
	return s == AchievementApproved || s == AchievementRejected
}

// Achievement is embedded in its Student. ReviewedAt is set iff Status is not
// Pending.
type Achievement struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Category       Category          `json:"category"`
	Organization   string            `json:"organization,omitempty"`
	Description    string            `json:"description,omitempty"`
	DateCompleted  *time.Time        `json:"dateCompleted,omitempty"`
	UploadedAt     time.Time         `json:"uploadedAt"`
	Status         AchievementStatus `json:"status"`
	ReviewedAt     *time.Time        `json:"reviewedAt,omitempty"`
	Comment        string            `json:"comment,omitempty"`
	ReviewedBy     string            `json:"reviewedBy,omitempty"`
	CertificateURL string            `json:"certificateUrl,omitempty"`
}
