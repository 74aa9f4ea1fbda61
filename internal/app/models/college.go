package models

import "time"

// College belongs to exactly one Institute.
type College struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Code        string       `json:"code"`
	InstituteID string       `json:"instituteId"`
	Departments IDSet        `json:"departments"`
	Status      EntityStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
