package models

import "time"

// Department belongs to a College. InstituteID is a denormalized copy of the
// college's institute and must always agree with it.
type Department struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Code        string       `json:"code"`
	CollegeID   string       `json:"collegeId"`
	InstituteID string       `json:"instituteId"`
	HODID       string       `json:"hodId,omitempty"`
	Faculties   IDSet        `json:"faculties"`
	Status      EntityStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
