package models

import "time"

// InstituteRequest is a registration application. Approving it creates the
// Institute.
type InstituteRequest struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	AisheCode     string         `json:"aisheCode"`
	Type          string         `json:"type"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone,omitempty"`
	Address       string         `json:"address,omitempty"`
	State         string         `json:"state,omitempty"`
	District      string         `json:"district,omitempty"`
	HeadName      string         `json:"headName,omitempty"`
	Status        ApprovalStatus `json:"status"`
	ReviewComment string         `json:"reviewComment,omitempty"`
	ReviewedAt    *time.Time     `json:"reviewedAt,omitempty"`
	InstituteID   string         `json:"instituteId,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}
