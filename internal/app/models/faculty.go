package models

import "time"

// Faculty is a staff member of a Department. Students lists the students the
// faculty coordinates.
type Faculty struct {
	ID            string           `json:"id"`
	FirstName     string           `json:"firstName"`
	LastName      string           `json:"lastName"`
	FacultyCode   string           `json:"facultyCode"`
	Email         string           `json:"email"`
	Designation   string           `json:"designation,omitempty"`
	DepartmentID  string           `json:"departmentId"`
	IsCoordinator bool             `json:"isCoordinator"`
	Students      IDSet            `json:"students"`
	ReviewLog     []ReviewLogEntry `json:"reviewLog"`
	Status        EntityStatus     `json:"status"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// FullName returns "First Last".
func (f *Faculty) FullName() string {
	return f.FirstName + " " + f.LastName
}

// ReviewLogEntry records one review decision made by a faculty member.
type ReviewLogEntry struct {
	AchievementID string            `json:"achievementId"`
	StudentID     string            `json:"studentId"`
	Decision      AchievementStatus `json:"decision"`
	Comment       string            `json:"comment,omitempty"`
	ReviewedAt    time.Time         `json:"reviewedAt"`
}
