package models

import "time"

// Student belongs to a Department and is optionally coordinated by a Faculty
// of the same department.
type Student struct {
	ID             string        `json:"id"`
	FirstName      string        `json:"firstName"`
	LastName       string        `json:"lastName"`
	StudentCode    string        `json:"studentCode"`
	Email          string        `json:"email"`
	DepartmentID   string        `json:"departmentId"`
	CoordinatorID  string        `json:"coordinatorId,omitempty"`
	EnrollmentYear int           `json:"enrollmentYear,omitempty"`
	Batch          string        `json:"batch,omitempty"`
	GPA            *float64      `json:"gpa,omitempty"`
	Attendance     *float64      `json:"attendance,omitempty"`
	Achievements   []Achievement `json:"achievements"`
	Status         EntityStatus  `json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// FullName returns "First Last".
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Achievement returns the embedded achievement with the given id.
func (s *Student) Achievement(id string) (*Achievement, bool) {
	for i := range s.Achievements {
		if s.Achievements[i].ID == id {
			return &s.Achievements[i], true
		}
	}
	return nil, false
}
